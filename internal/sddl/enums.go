package sddl

// Direction is the data-flow direction of a variable.
type Direction uint8

const (
	// Inherit takes the direction of the enclosing variable.
	Inherit Direction = iota
	Bidirectional
	Outbound
	Inbound
)

func (d Direction) String() string {
	switch d {
	case Bidirectional:
		return "inout"
	case Outbound:
		return "out"
	case Inbound:
		return "in"
	}
	return "inherit"
}

var directionKeywords = map[string]Direction{
	"inout": Bidirectional,
	"out":   Outbound,
	"in":    Inbound,
}

// Optionality marks whether a variable must be present.
type Optionality uint8

const (
	Unspecified Optionality = iota
	Optional
	Required
)

func (o Optionality) String() string {
	switch o {
	case Optional:
		return "optional"
	case Required:
		return "required"
	}
	return "unspecified"
}

var optionalityKeywords = map[string]Optionality{
	"optional": Optional,
	"required": Required,
}

// DisplayHint suggests how a numeric value should be rendered.
type DisplayHint uint8

const (
	HintInvalid DisplayHint = iota
	HintNormal
	HintPercentage
	HintScientific
	HintHex
)

var hintNames = map[DisplayHint]string{
	HintNormal:     "normal",
	HintPercentage: "percentage",
	HintScientific: "scientific",
	HintHex:        "hex",
}

func (h DisplayHint) String() string {
	if s, ok := hintNames[h]; ok {
		return s
	}
	return "invalid"
}

// ParseDisplayHint maps a hint name to its value.
func ParseDisplayHint(s string) (DisplayHint, bool) {
	for h, name := range hintNames {
		if name == s {
			return h, true
		}
	}
	return HintInvalid, false
}

// reservedWords cannot be used as variable names since the tokenizer would
// classify them as datatypes or qualifiers.
func reservedWords() []string {
	words := []string{"struct"}
	for k := Void; k <= DateTime; k++ {
		words = append(words, kindNames[k])
	}
	for w := range directionKeywords {
		words = append(words, w)
	}
	for w := range optionalityKeywords {
		words = append(words, w)
	}
	return words
}
