package sddl

import (
	"encoding/json"
	"testing"

	"github.com/starford/sddl/internal/docval"
)

func rebuild(t *testing.T, n *VarNode) *VarNode {
	t.Helper()
	data, err := json.Marshal(n.DefinitionObject())
	if err != nil {
		t.Fatalf("marshal definition: %v", err)
	}
	meta, err := docval.ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON(%s): %v", data, err)
	}
	got, warnings, err := BuildVar(n.DeclString(), meta)
	if err != nil {
		t.Fatalf("BuildVar(%q, %s): %v", n.DeclString(), data, err)
	}
	if len(warnings) != 0 {
		t.Errorf("rebuild warnings = %v", warnings)
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	doc := mustParse(t, `{
		"required out struct telemetry": {
			"description": "periodic report",
			"in optional int32 interval": {"min-value": 1, "max-value": 3600, "units": "s"},
			"float64 load": {"numeric-display-hint": "percentage", "min-value": 0, "max-value": 1},
			"uint8[6] mac": {"numeric-display-hint": "hex"},
			"struct location": {
				"float64 lat": {"min-value": -90, "max-value": 90},
				"float64 lon": {"min-value": -180.5, "max-value": 180.25}
			}
		},
		"string serial": {"regex": "^[A-Z]{2}[0-9]{6}$", "description": "serial number"},
		"void ping": {},
		"bool enabled": {"description": "on/off"},
		"datetime updated": {}
	}`)
	for i := 0; i < doc.NumVars(); i++ {
		v := doc.Var(i)
		t.Run(v.Name(), func(t *testing.T) {
			if got := rebuild(t, v); !Equal(v, got) {
				t.Errorf("rebuilt %q differs from original", v.DeclString())
			}
		})
	}
}

func TestRoundTrip_ConstructedTree(t *testing.T) {
	s, err := NewStructVar(Inbound, "config")
	if err != nil {
		t.Fatalf("NewStructVar: %v", err)
	}
	gain, _ := NewBasicVar(Float32, Inherit, "gain")
	lo, hi := 0.5, 2.0
	if err := gain.SetBounds(&lo, &hi); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	gain.SetUnits("dB")
	taps, _ := NewArrayVar(Int16, 32, Outbound, "taps")
	if err := taps.SetDisplayHint(HintHex); err != nil {
		t.Fatalf("SetDisplayHint: %v", err)
	}
	if err := s.AddMember(gain); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := s.AddMember(taps); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	s.SetOptionality(Optional)

	if got := rebuild(t, s); !Equal(s, got) {
		t.Errorf("rebuilt %q differs from original", s.DeclString())
	}
}

func TestDeclString(t *testing.T) {
	doc := mustParse(t, `{"out required int32[10] samples": {}, "int32 x": {}, "inout struct s": {}}`)
	want := []string{"required out int32[10] samples", "int32 x", "inout struct s"}
	for i, w := range want {
		if got := doc.Var(i).DeclString(); got != w {
			t.Errorf("DeclString(%d) = %q, want %q", i, got, w)
		}
	}
	if got := doc.Var(0).Element().DeclString(); got != "int32" {
		t.Errorf("element DeclString = %q, want %q", got, "int32")
	}
}

func TestDefinitionObject_CanonicalOrder(t *testing.T) {
	doc := mustParse(t, `{"required int32 count": {"description": "item count", "min-value": 0}}`)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"required int32 count":{"min-value":0,"description":"item count"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestDefinitionObject_MembersFirst(t *testing.T) {
	doc := mustParse(t, `{"struct s": {"units": "u", "description": "d", "int32 a": {}, "max-value": 9}}`)
	data, err := json.Marshal(doc.Var(0))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"int32 a":{},"max-value":9,"description":"d","units":"u"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestDocumentMarshal_Metadata(t *testing.T) {
	doc := mustParse(t, `{"int32 x": {}, "authors": ["me"], "description": "demo"}`)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"description":"demo","authors":["me"],"int32 x":{}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	again := mustParse(t, string(data))
	if again.Description() != "demo" || again.NumVars() != 1 || !Equal(again.Var(0), doc.Var(0)) {
		t.Error("canonical document did not reparse to the same content")
	}
}

func TestSetterRefreshesAncestors(t *testing.T) {
	doc := mustParse(t, `{"struct outer": {"struct inner": {"int32 x": {}}}}`)
	x := doc.Lookup("outer.inner.x")
	x.SetDescription("deep")
	x.SetOptionality(Required)

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"struct outer":{"struct inner":{"required int32 x":{"description":"deep"}}}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
