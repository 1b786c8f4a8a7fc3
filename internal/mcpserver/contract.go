package mcpserver

// GrammarURI is the resource URI of the grammar reference.
const GrammarURI = "sddl://grammar"

// Grammar describes the SDDL document format that LLM consumers should
// follow when writing or reviewing schemas.
const Grammar = `# SDDL Grammar Reference

An SDDL document is a JSON (or YAML) object. Key order is significant and is
preserved everywhere.

## Top level

- ` + "`description`" + ` (string, optional): free text about the document.
- ` + "`authors`" + ` (list of strings, optional).
- Every other key is a **declaration** whose value is the variable's metadata object.

## Declarations

A declaration is a space-separated list of tokens:

` + "```" + `
[required|optional] [in|out|inout] <datatype> <name>
` + "```" + `

- The datatype is one of: void, bool, int8, uint8, int16, uint16, int32, uint32,
  int64, uint64, float32, float64, string, datetime, struct.
- Fixed-size arrays of basic types: ` + "`int32[10]`" + `. Arrays of struct are not allowed.
- Qualifiers may appear before or after the datatype; each at most once.
- The name must follow the datatype. Single spaces only; no empty tokens.
- A variable without a direction inherits its parent's; top level defaults to inout.

## Metadata fields

| Field | Type | Notes |
|---|---|---|
| description | string | |
| min-value | number or null | must not exceed max-value |
| max-value | number or null | |
| numeric-display-hint | string | normal, percentage, scientific, hex |
| regex | string | must compile |
| units | string | |

Inside a ` + "`struct`" + ` variable, keys containing a space declare members, in order.
Unknown fields produce warnings, not errors.

## Example

` + "```" + `json
{
  "description": "thermostat",
  "authors": ["ops@example.com"],
  "out struct reading": {
    "float64 temperature": {"units": "celsius"},
    "float32 humidity": {"units": "percent", "min-value": 0, "max-value": 100,
                         "numeric-display-hint": "percentage"}
  },
  "required in float64 setpoint": {"units": "celsius"}
}
` + "```" + `

## Canonical form

Serialization writes declarations as ` + "`[optionality] [direction] datatype name`" + `
and metadata in the order: members, min-value, max-value, description, regex,
units, numeric-display-hint (omitted when normal).
`
