package sddl

import (
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokName tokenKind = iota
	tokDatatype
	tokDirection
	tokOptionality
)

type token struct {
	kind        tokenKind
	text        string
	datatype    Datatype
	direction   Direction
	optionality Optionality
}

// tokenize splits a declaration on single spaces and classifies each token.
func tokenize(decl string) ([]token, error) {
	parts := strings.Split(decl, " ")
	toks := make([]token, 0, len(parts))
	for _, p := range parts {
		t, err := classify(decl, p)
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
	}
	return toks, nil
}

func classify(decl, text string) (token, error) {
	if text == "" {
		return token{}, grammarError(decl, "Empty token in declaration")
	}
	if k, ok := basicKind(text); ok {
		return token{kind: tokDatatype, text: text, datatype: Basic(k)}, nil
	}
	if i := strings.IndexByte(text, '['); i >= 0 {
		return arrayToken(decl, text, i)
	}
	if text == "struct" {
		return token{kind: tokDatatype, text: text, datatype: StructType()}, nil
	}
	if d, ok := directionKeywords[text]; ok {
		return token{kind: tokDirection, text: text, direction: d}, nil
	}
	if o, ok := optionalityKeywords[text]; ok {
		return token{kind: tokOptionality, text: text, optionality: o}, nil
	}
	if strings.IndexByte(text, ']') >= 0 {
		return token{}, grammarError(decl, "Unbalanced ']' in declaration")
	}
	return token{kind: tokName, text: text}, nil
}

// arrayToken parses "<basic>[<count>]". open is the index of '['.
func arrayToken(decl, text string, open int) (token, error) {
	base := text[:open]
	k, ok := basicKind(base)
	if !ok {
		return token{}, &DeclError{Kind: ErrUnknownEnum, Decl: decl, Msg: "Unknown datatype " + strconv.Quote(base)}
	}
	rest := text[open+1:]
	end := strings.IndexByte(rest, ']')
	switch {
	case end < 0:
		return token{}, grammarError(decl, "Malformed array length: missing ']'")
	case end != len(rest)-1:
		return token{}, grammarError(decl, "Malformed array length: unexpected text after ']'")
	case end == 0:
		return token{}, grammarError(decl, "Malformed array length: missing count")
	}
	digits := rest[:end]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return token{}, grammarError(decl, "Malformed array length: "+strconv.Quote(digits)+" is not a number")
		}
	}
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return token{}, grammarError(decl, "Malformed array length: "+digits+" out of range")
	}
	if n == 0 {
		return token{}, grammarError(decl, "Malformed array length: must be positive")
	}
	return token{kind: tokDatatype, text: text, datatype: ArrayOf(Basic(k), int(n))}, nil
}
