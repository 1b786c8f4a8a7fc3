// Package sddl parses and serializes SDDL, a JSON-based schema language for
// describing device and service variables.
//
// A document is a JSON object whose keys are compound declarations:
//
//	[optional|required] [in|out|inout] <datatype> <name>
//
// where datatype is one of the basic types (void string bool int8 uint8
// int16 uint16 int32 uint32 float32 float64 datetime), struct, or a fixed
// length array of a basic type such as int32[10]. Each value is an object of
// metadata fields: description, min-value, max-value, numeric-display-hint,
// regex and units. Struct metadata may also hold nested declarations, which
// become the struct's members in the order they appear.
//
// Variables without a direction qualifier inherit the direction of their
// enclosing struct; root variables default to inout.
package sddl
