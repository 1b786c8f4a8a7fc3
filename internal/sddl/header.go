package sddl

import "strings"

// DeclarationHeader is the parsed form of a declaration string such as
// "required out int32[10] samples".
type DeclarationHeader struct {
	Direction   Direction
	Optionality Optionality
	Datatype    Datatype
	Name        string
}

// String returns the canonical declaration text.
func (h DeclarationHeader) String() string {
	return declText(h.Optionality, h.Direction, h.Datatype, h.Name)
}

func declText(o Optionality, d Direction, dt Datatype, name string) string {
	parts := make([]string, 0, 4)
	if o != Unspecified {
		parts = append(parts, o.String())
	}
	if d != Inherit {
		parts = append(parts, d.String())
	}
	parts = append(parts, dt.String())
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

// ParseDeclaration parses a declaration string. The datatype and each
// qualifier may appear at most once, in any order, but the name is only
// accepted once a datatype has been seen.
func ParseDeclaration(decl string) (DeclarationHeader, error) {
	if strings.Count(decl, " ") < 1 {
		return DeclarationHeader{}, grammarError(decl, "Too few tokens in declaration")
	}
	toks, err := tokenize(decl)
	if err != nil {
		return DeclarationHeader{}, err
	}

	var h DeclarationHeader
	var haveType, haveDir, haveOpt, haveName bool
	for _, t := range toks {
		switch t.kind {
		case tokDatatype:
			if haveType {
				return DeclarationHeader{}, grammarError(decl, "Datatype already specified")
			}
			h.Datatype, haveType = t.datatype, true
		case tokDirection:
			if haveDir {
				return DeclarationHeader{}, grammarError(decl, "Direction already specified")
			}
			h.Direction, haveDir = t.direction, true
		case tokOptionality:
			if haveOpt {
				return DeclarationHeader{}, grammarError(decl, "Optionality already specified")
			}
			h.Optionality, haveOpt = t.optionality, true
		case tokName:
			if !haveType {
				return DeclarationHeader{}, grammarError(decl, "Datatype or qualifier expected")
			}
			if haveName {
				return DeclarationHeader{}, grammarError(decl, "Variable name already specified")
			}
			h.Name, haveName = t.text, true
		}
	}
	if !haveType {
		return DeclarationHeader{}, grammarError(decl, "Datatype missing")
	}
	if !haveName {
		return DeclarationHeader{}, grammarError(decl, "Variable name missing")
	}
	return h, nil
}
