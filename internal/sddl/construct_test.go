package sddl

import (
	"errors"
	"math"
	"testing"
)

func TestNewVar_Validation(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*VarNode, error)
		kind error
	}{
		{"empty name", func() (*VarNode, error) { return NewBasicVar(Int32, Inherit, "") }, ErrGrammar},
		{"space", func() (*VarNode, error) { return NewBasicVar(Int32, Inherit, "a b") }, ErrGrammar},
		{"bracket", func() (*VarNode, error) { return NewBasicVar(Int32, Inherit, "a[1]") }, ErrGrammar},
		{"keyword", func() (*VarNode, error) { return NewStructVar(Inherit, "out") }, ErrGrammar},
		{"datatype keyword", func() (*VarNode, error) { return NewBasicVar(Bool, Inherit, "int32") }, ErrGrammar},
		{"struct as basic", func() (*VarNode, error) { return NewBasicVar(Struct, Inherit, "x") }, ErrUnknownEnum},
		{"array of struct", func() (*VarNode, error) { return NewArrayVar(Struct, 2, Inherit, "x") }, ErrUnknownEnum},
		{"zero length", func() (*VarNode, error) { return NewArrayVar(Int8, 0, Inherit, "x") }, ErrGrammar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if !errors.Is(err, tt.kind) {
				t.Errorf("err = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	s, _ := NewStructVar(Outbound, "s")
	x, _ := NewBasicVar(Int32, Inherit, "x")
	if err := s.AddMember(x); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if x.Parent() != s {
		t.Error("member parent not set")
	}
	if x.Direction() != Outbound {
		t.Errorf("member direction = %s, want out", x.Direction())
	}

	again, _ := NewBasicVar(Float32, Inherit, "x")
	if err := s.AddMember(again); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v, want ErrDuplicate", err)
	}
	if err := s.AddMember(x); !errors.Is(err, ErrStructure) {
		t.Errorf("reattach err = %v, want ErrStructure", err)
	}
	if err := s.AddMember(s); !errors.Is(err, ErrStructure) {
		t.Errorf("self err = %v, want ErrStructure", err)
	}
	scalar, _ := NewBasicVar(Int32, Inherit, "scalar")
	y, _ := NewBasicVar(Int32, Inherit, "y")
	if err := scalar.AddMember(y); !errors.Is(err, ErrStructure) {
		t.Errorf("scalar err = %v, want ErrStructure", err)
	}
}

func TestSetters(t *testing.T) {
	v, _ := NewArrayVar(UInt8, 4, Inherit, "bytes")

	lo, hi := 10.0, 1.0
	if err := v.SetBounds(&lo, &hi); !errors.Is(err, ErrConstraint) {
		t.Errorf("SetBounds err = %v, want ErrConstraint", err)
	}
	if err := v.SetBounds(&hi, &lo); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	hi = 99
	if got, _ := v.MinValue(); got != 1 {
		t.Errorf("MinValue = %v, want 1 (bounds must be copied)", got)
	}
	if got, _ := v.Element().MaxValue(); got != 10 {
		t.Errorf("element MaxValue = %v, want 10", got)
	}

	bad := "(["
	if err := v.SetRegex(&bad); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("SetRegex err = %v, want ErrTypeMismatch", err)
	}
	if err := v.SetDisplayHint(HintInvalid); !errors.Is(err, ErrUnknownEnum) {
		t.Errorf("SetDisplayHint err = %v, want ErrUnknownEnum", err)
	}
	if err := v.SetRegex(nil); err != nil {
		t.Errorf("SetRegex(nil): %v", err)
	}

	v.SetDirection(Inbound)
	if got, want := v.DeclString(), "in uint8[4] bytes"; got != want {
		t.Errorf("DeclString = %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	a, _ := NewBasicVar(Int32, Inherit, "x")
	b, _ := NewBasicVar(Int32, Inherit, "x")
	if !Equal(a, b) {
		t.Error("identical nodes should be equal")
	}
	b.SetUnits("m")
	if Equal(a, b) {
		t.Error("nodes with different units should differ")
	}
	if Equal(a, nil) || !Equal(nil, nil) {
		t.Error("nil handling wrong")
	}
}

func TestElementSettersRejected(t *testing.T) {
	buf, _ := NewArrayVar(Int32, 4, Outbound, "buf")
	lo, hi := 0.0, 10.0
	if err := buf.SetBounds(&lo, &hi); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	elem := buf.Element()
	re := "[0-9]+"

	tests := []struct {
		name string
		set  func() error
	}{
		{"description", func() error { return elem.SetDescription("each sample") }},
		{"units", func() error { return elem.SetUnits("V") }},
		{"optionality", func() error { return elem.SetOptionality(Required) }},
		{"direction", func() error { return elem.SetDirection(Inbound) }},
		{"bounds", func() error { return elem.SetBounds(nil, nil) }},
		{"regex", func() error { return elem.SetRegex(&re) }},
		{"display hint", func() error { return elem.SetDisplayHint(HintHex) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(); !errors.Is(err, ErrStructure) {
				t.Errorf("err = %v, want ErrStructure", err)
			}
		})
	}

	if elem.Description() != "" || elem.Units() != "" {
		t.Errorf("element changed: description %q, units %q", elem.Description(), elem.Units())
	}
	if got, _ := elem.MaxValue(); got != 10 {
		t.Errorf("element MaxValue = %v, want 10", got)
	}
	if !Equal(buf, rebuild(t, buf)) {
		t.Error("array no longer round-trips")
	}
}

func TestSingleOwner(t *testing.T) {
	doc := NewDocument()
	defer doc.Unref()
	other := NewDocument()
	defer other.Unref()

	x, _ := NewBasicVar(Int32, Inherit, "x")
	if err := doc.AddVar(x); err != nil {
		t.Fatalf("AddVar: %v", err)
	}

	s, _ := NewStructVar(Inherit, "s")
	if err := s.AddMember(x); !errors.Is(err, ErrStructure) {
		t.Errorf("AddMember(root) err = %v, want ErrStructure", err)
	}
	if err := other.AddVar(x); !errors.Is(err, ErrStructure) {
		t.Errorf("AddVar(other document) err = %v, want ErrStructure", err)
	}
	if s.NumMembers() != 0 || other.NumVars() != 0 {
		t.Errorf("members = %d, other vars = %d, want 0 and 0", s.NumMembers(), other.NumVars())
	}

	arr, _ := NewArrayVar(UInt8, 2, Inherit, "arr")
	if err := s.AddMember(arr.Element()); !errors.Is(err, ErrStructure) {
		t.Errorf("AddMember(element) err = %v, want ErrStructure", err)
	}

	res := Parse([]byte(`{"struct p": {"int32 q": {}}}`))
	defer res.Release()
	parsed := res.Document().Var(0)
	if err := other.AddVar(parsed); !errors.Is(err, ErrStructure) {
		t.Errorf("AddVar(parsed root) err = %v, want ErrStructure", err)
	}
	if err := s.AddMember(parsed.Member(0)); !errors.Is(err, ErrStructure) {
		t.Errorf("AddMember(parsed member) err = %v, want ErrStructure", err)
	}
}

func TestSetBounds_NonFinite(t *testing.T) {
	v, _ := NewBasicVar(Float64, Inherit, "v")
	nan, inf, one := math.NaN(), math.Inf(1), 1.0
	if err := v.SetBounds(&nan, nil); !errors.Is(err, ErrConstraint) {
		t.Errorf("SetBounds(NaN) err = %v, want ErrConstraint", err)
	}
	if err := v.SetBounds(&one, &inf); !errors.Is(err, ErrConstraint) {
		t.Errorf("SetBounds(+Inf) err = %v, want ErrConstraint", err)
	}
	if _, ok := v.MinValue(); ok {
		t.Error("rejected bounds must not be stored")
	}
	if _, err := v.MarshalJSON(); err != nil {
		t.Errorf("MarshalJSON: %v", err)
	}
}
