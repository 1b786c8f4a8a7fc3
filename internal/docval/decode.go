package docval

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"gopkg.in/yaml.v3"
)

// ErrSyntax reports input that is not well-formed JSON or YAML.
var ErrSyntax = errors.New("docval: syntax error")

// ParseJSON decodes a JSON text, preserving object key order.
func ParseJSON(data []byte) (Value, error) {
	// jsonparser is lenient about trailing garbage and some malformed
	// input, so the text is checked for well-formedness first.
	if !json.Valid(data) {
		return Value{}, fmt.Errorf("%w: invalid JSON", ErrSyntax)
	}
	raw, dt, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return decodeJSON(raw, dt)
}

func decodeJSON(raw []byte, dt jsonparser.ValueType) (Value, error) {
	switch dt {
	case jsonparser.Null:
		return NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return BoolValue(b), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return NumberValue(f), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return StringValue(s), nil
	case jsonparser.Array:
		items := []Value{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := decodeJSON(value, vt)
			if err != nil {
				inner = err
				return
			}
			items = append(items, v)
		})
		if inner != nil {
			return Value{}, inner
		}
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return ArrayValue(items), nil
	case jsonparser.Object:
		obj := NewMap()
		err := jsonparser.ObjectEach(raw, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			// ObjectEach hands over keys already unescaped.
			k := string(key)
			if _, dup := obj.Get(k); dup {
				return fmt.Errorf("%w: duplicate key %q", ErrSyntax, k)
			}
			v, err := decodeJSON(value, vt)
			if err != nil {
				return err
			}
			obj.Set(k, v)
			return nil
		})
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(obj), nil
	}
	return Value{}, fmt.Errorf("%w: unexpected value type %s", ErrSyntax, dt)
}

// ParseYAML decodes a YAML document, preserving mapping key order.
func ParseYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if root.Kind == 0 {
		// Empty input decodes to a zero node.
		return NullValue(), nil
	}
	return decodeYAML(&root)
}

func decodeYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue(), nil
		}
		return decodeYAML(n.Content[0])
	case yaml.AliasNode:
		return decodeYAML(n.Alias)
	case yaml.MappingNode:
		obj := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: line %d: mapping key must be a scalar", ErrSyntax, k.Line)
			}
			if _, dup := obj.Get(k.Value); dup {
				return Value{}, fmt.Errorf("%w: line %d: duplicate key %q", ErrSyntax, k.Line, k.Value)
			}
			val, err := decodeYAML(v)
			if err != nil {
				return Value{}, err
			}
			obj.Set(k.Value, val)
		}
		return ObjectValue(obj), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeYAML(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return ArrayValue(items), nil
	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return Value{}, fmt.Errorf("%w: line %d: unsupported node", ErrSyntax, n.Line)
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NullValue(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return NumberValue(f), nil
	}
	return StringValue(n.Value), nil
}
