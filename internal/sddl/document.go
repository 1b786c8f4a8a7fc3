package sddl

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is a parsed SDDL document: an ordered list of root variables plus
// optional authorship metadata. A Document starts with one reference; when
// the last reference is dropped with Unref the variable tree is released.
type Document struct {
	refs        atomic.Int32
	vars        []*VarNode
	authors     []string
	description string
}

// NewDocument returns an empty document holding one reference.
func NewDocument() *Document {
	d := &Document{}
	d.refs.Store(1)
	return d
}

// Ref adds a reference and returns d.
func (d *Document) Ref() *Document {
	d.refs.Add(1)
	return d
}

// Unref drops a reference. The last one releases the tree. Calling Unref on
// a released document is a no-op.
func (d *Document) Unref() {
	for {
		cur := d.refs.Load()
		if cur <= 0 {
			return
		}
		if d.refs.CompareAndSwap(cur, cur-1) {
			if cur == 1 {
				d.release()
			}
			return
		}
	}
}

// Released reports whether the last reference has been dropped.
func (d *Document) Released() bool {
	return d.refs.Load() <= 0
}

func (d *Document) release() {
	for _, v := range d.vars {
		v.release()
	}
	d.vars = nil
	d.authors = nil
}

// NumVars returns the number of root variables.
func (d *Document) NumVars() int { return len(d.vars) }

// Var returns the i-th root variable, or nil.
func (d *Document) Var(i int) *VarNode {
	if i < 0 || i >= len(d.vars) {
		return nil
	}
	return d.vars[i]
}

// VarByName returns the first root variable called name, or nil.
func (d *Document) VarByName(name string) *VarNode {
	for _, v := range d.vars {
		if v.name == name {
			return v
		}
	}
	return nil
}

// Vars returns the root variables in declaration order.
func (d *Document) Vars() []*VarNode {
	return append([]*VarNode(nil), d.vars...)
}

// Lookup resolves a dotted path such as "telemetry.inner.x" from the roots.
func (d *Document) Lookup(path string) *VarNode {
	head, rest, _ := strings.Cut(path, ".")
	root := d.VarByName(head)
	if root == nil {
		return nil
	}
	return root.Lookup(rest)
}

func (d *Document) Authors() []string {
	return append([]string(nil), d.authors...)
}

func (d *Document) SetAuthors(authors []string) {
	d.authors = append([]string(nil), authors...)
}

func (d *Document) Description() string { return d.description }

func (d *Document) SetDescription(s string) { d.description = s }

// AddVar appends a root variable. The variable must not already belong to
// a document or struct and its name must be unused.
func (d *Document) AddVar(v *VarNode) error {
	if v == nil || v.attached {
		return &DeclError{Kind: ErrStructure, Msg: "variable already attached"}
	}
	if d.VarByName(v.name) != nil {
		return &DeclError{Kind: ErrDuplicate, Decl: v.decl, Msg: "Variable name already declared"}
	}
	v.attached = true
	d.vars = append(d.vars, v)
	return nil
}

// Walk visits every variable of every root in pre-order.
func (d *Document) Walk(fn func(path string, depth int, v *VarNode) error) error {
	for _, v := range d.vars {
		if err := v.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// DefinitionObject returns the whole document in canonical form: the
// description and authors when present, then each root variable keyed by
// its declaration.
func (d *Document) DefinitionObject() *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	if d.description != "" {
		out.Set(fieldDescription, d.description)
	}
	if len(d.authors) > 0 {
		out.Set(fieldAuthors, d.Authors())
	}
	for _, v := range d.vars {
		out.Set(v.decl, v.def)
	}
	return out
}

// MarshalJSON encodes the canonical form of d.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.DefinitionObject())
}
