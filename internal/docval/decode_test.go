package docval

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseJSON_PreservesKeyOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	obj, ok := v.AsObject()
	if !ok {
		t.Fatalf("kind = %s, want object", v.Kind())
	}
	want := []string{"zeta", "alpha", "mid"}
	if got := obj.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestParseJSON_Kinds(t *testing.T) {
	v, err := ParseJSON([]byte(`{"s": "a\"b", "n": -1.5, "t": true, "z": null, "a": [1, "x"], "o": {}}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	obj, _ := v.AsObject()

	s, _ := obj.Get("s")
	if got, ok := s.AsString(); !ok || got != `a"b` {
		t.Errorf("s = %q, want %q", got, `a"b`)
	}
	n, _ := obj.Get("n")
	if got, ok := n.AsNumber(); !ok || got != -1.5 {
		t.Errorf("n = %v, want -1.5", got)
	}
	b, _ := obj.Get("t")
	if got, ok := b.AsBool(); !ok || !got {
		t.Errorf("t = %v, want true", got)
	}
	z, _ := obj.Get("z")
	if !z.IsNull() {
		t.Errorf("z kind = %s, want null", z.Kind())
	}
	a, _ := obj.Get("a")
	items, ok := a.AsArray()
	if !ok || len(items) != 2 || items[0].Kind() != Number || items[1].Kind() != String {
		t.Errorf("a = %+v, want [number string]", items)
	}
	o, _ := obj.Get("o")
	if m, ok := o.AsObject(); !ok || m.Len() != 0 {
		t.Errorf("o should be an empty object")
	}
}

func TestParseJSON_EscapedKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"out\u0020int32 x": {}}`, "out int32 x"},
		{`{"w\\x": 1}`, `w\x`},
		{`{"k\\n": 1}`, `k\n`},
		{`{"q\"t": 1}`, `q"t`},
	}
	for _, tt := range tests {
		v, err := ParseJSON([]byte(tt.in))
		if err != nil {
			t.Fatalf("ParseJSON(%s): %v", tt.in, err)
		}
		obj, _ := v.AsObject()
		if got := obj.Keys(); len(got) != 1 || got[0] != tt.want {
			t.Errorf("ParseJSON(%s) keys = %q, want [%q]", tt.in, got, tt.want)
		}
	}
}

func TestParseJSON_EmptyArray(t *testing.T) {
	v, err := ParseJSON([]byte(`{"authors": []}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	obj, _ := v.AsObject()
	a, _ := obj.Get("authors")
	items, ok := a.AsArray()
	if !ok || len(items) != 0 {
		t.Errorf("authors = %v, want empty array", items)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a": 1} trailing`, `{'a': 1}`} {
		if _, err := ParseJSON([]byte(in)); !errors.Is(err, ErrSyntax) {
			t.Errorf("ParseJSON(%q) err = %v, want ErrSyntax", in, err)
		}
	}
}

func TestParseYAML(t *testing.T) {
	src := `
description: demo
authors:
  - a@example.com
required int32 count:
  min-value: 0
  max-value: 10.5
  units: "items"
flag: true
nothing: ~
`
	v, err := ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	obj, ok := v.AsObject()
	if !ok {
		t.Fatalf("kind = %s, want object", v.Kind())
	}
	want := []string{"description", "authors", "required int32 count", "flag", "nothing"}
	if got := obj.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	decl, _ := obj.Get("required int32 count")
	meta, _ := decl.AsObject()
	minV, _ := meta.Get("min-value")
	if f, ok := minV.AsNumber(); !ok || f != 0 {
		t.Errorf("min-value = %v, want 0", f)
	}
	maxV, _ := meta.Get("max-value")
	if f, ok := maxV.AsNumber(); !ok || f != 10.5 {
		t.Errorf("max-value = %v, want 10.5", f)
	}
	units, _ := meta.Get("units")
	if s, ok := units.AsString(); !ok || s != "items" {
		t.Errorf("units = %q, want %q", s, "items")
	}
	flag, _ := obj.Get("flag")
	if b, ok := flag.AsBool(); !ok || !b {
		t.Errorf("flag = %v, want true", b)
	}
	nothing, _ := obj.Get("nothing")
	if !nothing.IsNull() {
		t.Errorf("nothing kind = %s, want null", nothing.Kind())
	}
}

func TestParseYAML_Empty(t *testing.T) {
	v, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("kind = %s, want null", v.Kind())
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	if _, err := ParseYAML([]byte("a: [1, 2")); !errors.Is(err, ErrSyntax) {
		t.Errorf("err = %v, want ErrSyntax", err)
	}
}

func TestMapEach_StopsOnError(t *testing.T) {
	m := NewMap()
	m.Set("a", NumberValue(1))
	m.Set("b", NumberValue(2))
	stop := errors.New("stop")
	var seen []string
	err := m.Each(func(k string, _ Value) error {
		seen = append(seen, k)
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if len(seen) != 1 || seen[0] != "a" {
		t.Errorf("seen = %v, want [a]", seen)
	}
}

func TestDuplicateKeys(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"int32 a": {}, "int32 a": {"units": "m"}}`)); !errors.Is(err, ErrSyntax) {
		t.Errorf("JSON err = %v, want ErrSyntax", err)
	}
	if _, err := ParseYAML([]byte("a: 1\na: 2\n")); !errors.Is(err, ErrSyntax) {
		t.Errorf("YAML err = %v, want ErrSyntax", err)
	}
}
