package sddl

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/sddl/internal/docval"
)

type builder struct {
	opts     *options
	warnings []string
}

// BuildVar builds a single variable from a declaration and its metadata
// value. It is the inverse of DeclString and DefinitionObject.
func BuildVar(decl string, meta docval.Value, opts ...Option) (*VarNode, []string, error) {
	b := &builder{opts: newOptions(opts)}
	n, err := b.buildVar(decl, meta, nil)
	return n, b.warnings, err
}

func (b *builder) warn(msg string) {
	b.warnings = append(b.warnings, msg)
	b.opts.logger.Warn("sddl: "+msg)
}

func (b *builder) buildVar(decl string, meta docval.Value, parent *VarNode) (*VarNode, error) {
	h, err := ParseDeclaration(decl)
	if err != nil {
		return nil, err
	}
	obj, ok := meta.AsObject()
	if !ok {
		return nil, &DeclError{Kind: ErrStructure, Decl: decl, Msg: "expected object for variable metadata"}
	}

	n := newNode(h.Name, h.Datatype, h.Direction)
	n.optionality = h.Optionality
	n.parent = parent
	n.attached = parent != nil

	err = obj.Each(func(key string, v docval.Value) error {
		return b.applyField(n, decl, key, v)
	})
	if err != nil {
		return nil, err
	}
	if n.minValue != nil && n.maxValue != nil && *n.minValue > *n.maxValue {
		return nil, fieldError(ErrConstraint, decl, fieldMinValue, "min-value exceeds max-value")
	}

	n.syncElement()
	n.refresh()
	b.opts.logger.Debug("sddl: declared variable",
		slog.String("decl", n.decl),
		slog.String("direction", n.Direction().String()),
	)
	return n, nil
}

func (b *builder) applyField(n *VarNode, decl, key string, v docval.Value) error {
	switch key {
	case fieldDescription:
		s, ok := v.AsString()
		if !ok {
			return fieldError(ErrTypeMismatch, decl, key, "description must be string")
		}
		n.description = s
	case fieldMinValue:
		bound, err := boundValue(decl, key, v)
		if err != nil {
			return err
		}
		n.minValue = bound
	case fieldMaxValue:
		bound, err := boundValue(decl, key, v)
		if err != nil {
			return err
		}
		n.maxValue = bound
	case fieldDisplayHint:
		s, ok := v.AsString()
		if !ok {
			return fieldError(ErrTypeMismatch, decl, key, "numeric-display-hint must be string")
		}
		h, ok := ParseDisplayHint(s)
		if !ok {
			return fieldError(ErrUnknownEnum, decl, key, fmt.Sprintf("Unknown numeric-display-hint %q", s))
		}
		n.displayHint = h
	case fieldRegex:
		s, ok := v.AsString()
		if !ok {
			return fieldError(ErrTypeMismatch, decl, key, "regex must be string")
		}
		if _, err := regexp.Compile(s); err != nil {
			return fieldError(ErrTypeMismatch, decl, key, "invalid regex: "+err.Error())
		}
		n.regex = &s
	case fieldUnits:
		s, ok := v.AsString()
		if !ok {
			return fieldError(ErrTypeMismatch, decl, key, "units must be string")
		}
		n.units = s
	default:
		if n.datatype.Kind == Struct && strings.Contains(key, " ") {
			return b.addMember(n, key, v)
		}
		b.warn(fmt.Sprintf("Unexpected field %q in %q", key, decl))
	}
	return nil
}

func (b *builder) addMember(n *VarNode, decl string, v docval.Value) error {
	m, err := b.buildVar(decl, v, n)
	if err != nil {
		return err
	}
	if _, dup := n.members.Get(m.name); dup {
		return &DeclError{Kind: ErrDuplicate, Decl: decl, Msg: "Variable name already declared"}
	}
	n.members.Set(m.name, m)
	return nil
}

func boundValue(decl, key string, v docval.Value) (*float64, error) {
	if v.IsNull() {
		return nil, nil
	}
	f, ok := v.AsNumber()
	if !ok {
		return nil, fieldError(ErrTypeMismatch, decl, key, key+" must be number or null")
	}
	if !finite(&f) {
		return nil, fieldError(ErrConstraint, decl, key, key+" must be finite")
	}
	return &f, nil
}
