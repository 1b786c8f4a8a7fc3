package sddl

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// VarNode is one declared variable: a scalar, a struct with ordered members,
// or an array with a synthesized element node.
type VarNode struct {
	name        string
	datatype    Datatype
	description string
	direction   Direction
	optionality Optionality
	minValue    *float64
	maxValue    *float64
	displayHint DisplayHint
	regex       *string
	units       string

	members *orderedmap.OrderedMap[string, *VarNode]
	element *VarNode
	parent  *VarNode // not owned
	extra   any

	// attached is set once the node has an owner: a document, a struct
	// or, for element nodes, their array. It is never cleared.
	attached bool

	decl string
	def  *orderedmap.OrderedMap[string, any]
}

func newNode(name string, dt Datatype, dir Direction) *VarNode {
	n := &VarNode{
		name:        name,
		datatype:    dt,
		direction:   dir,
		displayHint: HintNormal,
	}
	switch dt.Kind {
	case Struct:
		n.members = orderedmap.New[string, *VarNode]()
	case Array:
		n.element = &VarNode{
			datatype:    *dt.Elem,
			displayHint: HintNormal,
			parent:      n,
			attached:    true,
		}
		n.element.refresh()
	}
	return n
}

func (n *VarNode) Name() string { return n.name }
func (n *VarNode) Datatype() Datatype { return n.datatype }
func (n *VarNode) Description() string { return n.description }
func (n *VarNode) Optionality() Optionality { return n.optionality }
func (n *VarNode) DisplayHint() DisplayHint { return n.displayHint }
func (n *VarNode) Units() string { return n.units }
func (n *VarNode) DeclaredDirection() Direction { return n.direction }

// Parent returns the enclosing struct or array node, nil for a root.
func (n *VarNode) Parent() *VarNode { return n.parent }

// MinValue returns the lower bound and whether one is set.
func (n *VarNode) MinValue() (float64, bool) {
	if n.minValue == nil {
		return 0, false
	}
	return *n.minValue, true
}

// MaxValue returns the upper bound and whether one is set.
func (n *VarNode) MaxValue() (float64, bool) {
	if n.maxValue == nil {
		return 0, false
	}
	return *n.maxValue, true
}

// Regex returns the validation pattern and whether one is set.
func (n *VarNode) Regex() (string, bool) {
	if n.regex == nil {
		return "", false
	}
	return *n.regex, true
}

// Direction resolves the effective direction: the declared one, else the
// nearest ancestor's, else Bidirectional.
func (n *VarNode) Direction() Direction {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.direction != Inherit {
			return cur.direction
		}
	}
	return Bidirectional
}

// NumMembers returns the number of struct members.
func (n *VarNode) NumMembers() int {
	if n.members == nil {
		return 0
	}
	return n.members.Len()
}

// Member returns the i-th struct member in declaration order, or nil.
// Members are kept in a linked map, so the lookup is linear in i; use
// Members or Walk to visit all of them.
func (n *VarNode) Member(i int) *VarNode {
	if n.members == nil || i < 0 {
		return nil
	}
	for pair := n.members.Oldest(); pair != nil; pair = pair.Next() {
		if i == 0 {
			return pair.Value
		}
		i--
	}
	return nil
}

// MemberByName returns the struct member called name, or nil.
func (n *VarNode) MemberByName(name string) *VarNode {
	if n.members == nil {
		return nil
	}
	m, _ := n.members.Get(name)
	return m
}

// Members returns the struct members in declaration order.
func (n *VarNode) Members() []*VarNode {
	if n.members == nil {
		return nil
	}
	out := make([]*VarNode, 0, n.members.Len())
	for pair := n.members.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Element returns the element node of an array, nil otherwise.
func (n *VarNode) Element() *VarNode { return n.element }

// Length returns the element count of an array, 0 otherwise.
func (n *VarNode) Length() int {
	if n.datatype.Kind != Array {
		return 0
	}
	return n.datatype.Length
}

// SetExtra attaches a caller-owned value to the node.
func (n *VarNode) SetExtra(v any) { n.extra = v }

// Extra returns the value attached with SetExtra.
func (n *VarNode) Extra() any { return n.extra }

// ExtraAs returns the attached value as a T.
func ExtraAs[T any](n *VarNode) (T, bool) {
	v, ok := n.extra.(T)
	return v, ok
}

// Walk visits n and its descendants in pre-order. Member paths are joined
// with '.', array elements are addressed as "name[]". Returning a non-nil
// error from fn stops the walk.
func (n *VarNode) Walk(fn func(path string, depth int, v *VarNode) error) error {
	return n.walk(n.name, 0, fn)
}

func (n *VarNode) walk(path string, depth int, fn func(string, int, *VarNode) error) error {
	if err := fn(path, depth, n); err != nil {
		return err
	}
	if n.element != nil {
		if err := n.element.walk(path+"[]", depth+1, fn); err != nil {
			return err
		}
	}
	if n.members == nil {
		return nil
	}
	for pair := n.members.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.walk(path+"."+pair.Key, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves a dotted member path relative to n, such as "inner.x".
// An empty path returns n itself.
func (n *VarNode) Lookup(path string) *VarNode {
	cur := n
	for path != "" && cur != nil {
		head, rest, _ := strings.Cut(path, ".")
		cur = cur.MemberByName(head)
		path = rest
	}
	return cur
}

// isElement reports whether n is the synthesized element of an array.
func (n *VarNode) isElement() bool {
	return n.parent != nil && n.parent.element == n
}

// release drops all links below n so the tree can be collected even while
// callers still hold stale pointers into it.
func (n *VarNode) release() {
	n.parent = nil
	if n.members != nil {
		for pair := n.members.Oldest(); pair != nil; pair = pair.Next() {
			pair.Value.release()
		}
		n.members = nil
	}
	if n.element != nil {
		n.element.release()
		n.element = nil
	}
	n.extra = nil
	n.def = nil
}
