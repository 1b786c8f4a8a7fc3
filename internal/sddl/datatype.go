package sddl

import (
	"fmt"
	"strconv"
)

// Kind is the datatype kind of a variable.
type Kind uint8

const (
	Invalid Kind = iota
	Void
	String
	Bool
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
	Float64
	DateTime
	Struct
	Array
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Void:     "void",
	String:   "string",
	Bool:     "bool",
	Int8:     "int8",
	UInt8:    "uint8",
	Int16:    "int16",
	UInt16:   "uint16",
	Int32:    "int32",
	UInt32:   "uint32",
	Float32:  "float32",
	Float64:  "float64",
	DateTime: "datetime",
	Struct:   "struct",
	Array:    "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsBasic reports whether k is a scalar kind usable as an array element.
func (k Kind) IsBasic() bool {
	return k >= Void && k <= DateTime
}

// basicKind maps a basic datatype name to its kind.
func basicKind(name string) (Kind, bool) {
	for k := Void; k <= DateTime; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return Invalid, false
}

// Datatype describes the type of a variable. Elem and Length are set only
// for arrays.
type Datatype struct {
	Kind   Kind
	Elem   *Datatype
	Length int
}

// Basic returns the scalar datatype k.
func Basic(k Kind) Datatype {
	return Datatype{Kind: k}
}

// StructType returns the struct datatype.
func StructType() Datatype {
	return Datatype{Kind: Struct}
}

// ArrayOf returns an array of n elements of type elem.
func ArrayOf(elem Datatype, n int) Datatype {
	e := elem
	return Datatype{Kind: Array, Elem: &e, Length: n}
}

// IsBasic reports whether d is a scalar datatype.
func (d Datatype) IsBasic() bool {
	return d.Kind.IsBasic()
}

// String renders d the way it is written in a declaration.
func (d Datatype) String() string {
	if d.Kind == Array {
		if d.Elem == nil {
			return fmt.Sprintf("invalid[%d]", d.Length)
		}
		return fmt.Sprintf("%s[%d]", d.Elem, d.Length)
	}
	return d.Kind.String()
}

// Equal reports whether d and o describe the same type.
func (d Datatype) Equal(o Datatype) bool {
	if d.Kind != o.Kind || d.Length != o.Length {
		return false
	}
	if d.Elem == nil || o.Elem == nil {
		return d.Elem == nil && o.Elem == nil
	}
	return d.Elem.Equal(*o.Elem)
}
