package sddl

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Metadata field names.
const (
	fieldDescription = "description"
	fieldMinValue    = "min-value"
	fieldMaxValue    = "max-value"
	fieldDisplayHint = "numeric-display-hint"
	fieldRegex       = "regex"
	fieldUnits       = "units"
)

// Document-level field names.
const (
	fieldAuthors = "authors"
)

// DeclString returns the canonical declaration of n, e.g.
// "required out int32[10] samples".
func (n *VarNode) DeclString() string { return n.decl }

// DefinitionObject returns the metadata object of n in canonical order:
// struct members first, then min-value, max-value, description, regex,
// units and numeric-display-hint, each only when set. The returned map is
// shared with n and must not be modified.
func (n *VarNode) DefinitionObject() *orderedmap.OrderedMap[string, any] { return n.def }

// MarshalJSON encodes the definition object of n.
func (n *VarNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.def)
}

// refresh recomputes the cached serialization of n from its fields and the
// cached serialization of its members.
func (n *VarNode) refresh() {
	n.decl = declText(n.optionality, n.direction, n.datatype, n.name)

	def := orderedmap.New[string, any]()
	if n.members != nil {
		for pair := n.members.Oldest(); pair != nil; pair = pair.Next() {
			m := pair.Value
			def.Set(m.decl, m.def)
		}
	}
	if n.minValue != nil {
		def.Set(fieldMinValue, *n.minValue)
	}
	if n.maxValue != nil {
		def.Set(fieldMaxValue, *n.maxValue)
	}
	if n.description != "" {
		def.Set(fieldDescription, n.description)
	}
	if n.regex != nil {
		def.Set(fieldRegex, *n.regex)
	}
	if n.units != "" {
		def.Set(fieldUnits, n.units)
	}
	if n.displayHint != HintNormal {
		def.Set(fieldDisplayHint, n.displayHint.String())
	}
	n.def = def
}

// touch propagates a change of n: the array element picks up the numeric
// metadata and the cached serialization of n and every ancestor is rebuilt.
func (n *VarNode) touch() {
	n.syncElement()
	for cur := n; cur != nil; cur = cur.parent {
		cur.refresh()
	}
}

// syncElement mirrors the numeric metadata of an array onto its element.
func (n *VarNode) syncElement() {
	e := n.element
	if e == nil {
		return
	}
	e.minValue = n.minValue
	e.maxValue = n.maxValue
	e.displayHint = n.displayHint
	e.regex = n.regex
	e.units = n.units
	e.refresh()
}
