package sddl

import (
	"fmt"
	"math"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var namePattern = regexp.MustCompile(`^[^\s\[\]]+$`)

func validateName(name string) error {
	reserved := reservedWords()
	in := make([]interface{}, len(reserved))
	for i, w := range reserved {
		in[i] = w
	}
	err := validation.Validate(name,
		validation.Required,
		validation.Match(namePattern).Error("must not contain spaces or brackets"),
		validation.NotIn(in...).Error("must not be a datatype or qualifier keyword"),
	)
	if err != nil {
		return &DeclError{Kind: ErrGrammar, Decl: name, Msg: "invalid variable name: " + err.Error()}
	}
	return nil
}

// NewBasicVar creates a scalar variable.
func NewBasicVar(k Kind, dir Direction, name string) (*VarNode, error) {
	if !k.IsBasic() {
		return nil, &DeclError{Kind: ErrUnknownEnum, Decl: name, Msg: fmt.Sprintf("%s is not a basic datatype", k)}
	}
	return newVar(Basic(k), dir, name)
}

// NewArrayVar creates an array of length elements of kind elem.
func NewArrayVar(elem Kind, length int, dir Direction, name string) (*VarNode, error) {
	if !elem.IsBasic() {
		return nil, &DeclError{Kind: ErrUnknownEnum, Decl: name, Msg: fmt.Sprintf("%s is not a basic datatype", elem)}
	}
	if length <= 0 {
		return nil, &DeclError{Kind: ErrGrammar, Decl: name, Msg: "Malformed array length: must be positive"}
	}
	return newVar(ArrayOf(Basic(elem), length), dir, name)
}

// NewStructVar creates an empty struct variable.
func NewStructVar(dir Direction, name string) (*VarNode, error) {
	return newVar(StructType(), dir, name)
}

func newVar(dt Datatype, dir Direction, name string) (*VarNode, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if dir > Inbound {
		return nil, &DeclError{Kind: ErrUnknownEnum, Decl: name, Msg: "unknown direction"}
	}
	n := newNode(name, dt, dir)
	n.refresh()
	return n, nil
}

// AddMember appends m to the struct n. m must not be owned by a document or
// another struct and its name must not be in use among n's members.
func (n *VarNode) AddMember(m *VarNode) error {
	if n.datatype.Kind != Struct {
		return &DeclError{Kind: ErrStructure, Decl: n.decl, Msg: "members can only be added to a struct"}
	}
	if m == nil || m.attached {
		return &DeclError{Kind: ErrStructure, Decl: n.decl, Msg: "member already attached"}
	}
	for cur := n; cur != nil; cur = cur.parent {
		if cur == m {
			return &DeclError{Kind: ErrStructure, Decl: n.decl, Msg: "a struct cannot contain itself"}
		}
	}
	if _, dup := n.members.Get(m.name); dup {
		return &DeclError{Kind: ErrDuplicate, Decl: m.decl, Msg: "Variable name already declared"}
	}
	m.parent = n
	m.attached = true
	n.members.Set(m.name, m)
	n.touch()
	return nil
}

// errElement is returned by the setters of array element nodes, whose
// metadata is always that of the array.
func (n *VarNode) errElement(field string) error {
	return fieldError(ErrStructure, n.parent.decl, field, "array elements take their metadata from the array")
}

func (n *VarNode) SetDescription(s string) error {
	if n.isElement() {
		return n.errElement(fieldDescription)
	}
	n.description = s
	n.touch()
	return nil
}

func (n *VarNode) SetUnits(s string) error {
	if n.isElement() {
		return n.errElement(fieldUnits)
	}
	n.units = s
	n.touch()
	return nil
}

func (n *VarNode) SetOptionality(o Optionality) error {
	if n.isElement() {
		return n.errElement("optionality")
	}
	if o > Required {
		return &DeclError{Kind: ErrUnknownEnum, Decl: n.decl, Msg: "unknown optionality"}
	}
	n.optionality = o
	n.touch()
	return nil
}

// SetDirection sets the declared direction. Inherit clears it.
func (n *VarNode) SetDirection(d Direction) error {
	if n.isElement() {
		return n.errElement("direction")
	}
	if d > Inbound {
		return &DeclError{Kind: ErrUnknownEnum, Decl: n.decl, Msg: "unknown direction"}
	}
	n.direction = d
	n.touch()
	return nil
}

// SetBounds sets or clears (nil) the numeric range. Bounds must be finite
// and lo must not exceed hi.
func (n *VarNode) SetBounds(lo, hi *float64) error {
	if n.isElement() {
		return n.errElement(fieldMinValue)
	}
	if !finite(lo) {
		return fieldError(ErrConstraint, n.decl, fieldMinValue, "min-value must be finite")
	}
	if !finite(hi) {
		return fieldError(ErrConstraint, n.decl, fieldMaxValue, "max-value must be finite")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return fieldError(ErrConstraint, n.decl, fieldMinValue, "min-value exceeds max-value")
	}
	n.minValue = copyFloat(lo)
	n.maxValue = copyFloat(hi)
	n.touch()
	return nil
}

// SetRegex sets or clears (nil) the validation pattern.
func (n *VarNode) SetRegex(pattern *string) error {
	if n.isElement() {
		return n.errElement(fieldRegex)
	}
	if pattern == nil {
		n.regex = nil
		n.touch()
		return nil
	}
	if _, err := regexp.Compile(*pattern); err != nil {
		return fieldError(ErrTypeMismatch, n.decl, fieldRegex, "invalid regex: "+err.Error())
	}
	p := *pattern
	n.regex = &p
	n.touch()
	return nil
}

func (n *VarNode) SetDisplayHint(h DisplayHint) error {
	if n.isElement() {
		return n.errElement(fieldDisplayHint)
	}
	if _, ok := hintNames[h]; !ok {
		return fieldError(ErrUnknownEnum, n.decl, fieldDisplayHint, "Unknown numeric-display-hint")
	}
	n.displayHint = h
	n.touch()
	return nil
}

func finite(f *float64) bool {
	return f == nil || !(math.IsNaN(*f) || math.IsInf(*f, 0))
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
