package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/sddl/internal/checksum"
	"github.com/starford/sddl/internal/models"
	"github.com/starford/sddl/internal/schemaservice"
	"github.com/starford/sddl/internal/testutil"
)

// testEnv sets up a temp schema dir, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*schemaservice.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*schemaservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestSchemaDir(t)
	db := testutil.TestDB(t)
	svc := schemaservice.NewService(store, db)
	return svc, NewRouter(svc, authEnabled, authToken, sseHandler)
}

func do(t *testing.T, h http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createThermostat(t *testing.T, router http.Handler) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/schemas", CreateSchemaRequest{Path: "devices/thermo.sddl", Content: testutil.Thermostat})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateAndGetSchema(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)

	w := do(t, router, http.MethodGet, "/schemas/devices/thermo.sddl", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	want := checksum.ETag(checksum.Sum([]byte(testutil.Thermostat)))
	if got := w.Header().Get("ETag"); got != want {
		t.Errorf("ETag = %q, want %q", got, want)
	}
	var schema SchemaDetail
	if err := json.NewDecoder(w.Body).Decode(&schema); err != nil {
		t.Fatal(err)
	}
	if !schema.OK || schema.Description != "thermostat" {
		t.Errorf("schema = %+v", schema)
	}
	if schema.Source != testutil.Thermostat {
		t.Error("source not returned verbatim")
	}

	// Encoded slashes resolve to the same schema.
	w = do(t, router, http.MethodGet, "/schemas/devices%2Fthermo.sddl", nil)
	if w.Code != http.StatusOK {
		t.Errorf("encoded path status = %d", w.Code)
	}
}

func TestCreateInvalidSchema(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/schemas", CreateSchemaRequest{Path: "bad.json", Content: `{"int32 x": {"min-value": 5, "max-value": 1}}`})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid schema status = %d, want 422", w.Code)
	}
	var resp errResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "min-value exceeds max-value") {
		t.Errorf("errors = %v", resp.Errors)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing content", map[string]string{"path": "a.json"}, http.StatusBadRequest},
		{"missing path", map[string]string{"content": "{}"}, http.StatusBadRequest},
		{"unsupported extension", CreateSchemaRequest{Path: "a.txt", Content: "{}"}, http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/schemas", tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/schemas", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", w.Code)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)

	w := do(t, router, http.MethodPost, "/schemas", CreateSchemaRequest{Path: "devices/thermo.sddl", Content: `{"int32 x": {}}`})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)
	etag := checksum.ETag(checksum.Sum([]byte(testutil.Thermostat)))

	next := UpdateSchemaRequest{Content: `{"bool on": {}}`}
	w := do(t, router, http.MethodPut, "/schemas/devices/thermo.sddl", next, "If-Match", `"deadbeef"`)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale update = %d, want 409", w.Code)
	}

	w = do(t, router, http.MethodPut, "/schemas/devices/thermo.sddl", next, "If-Match", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("ETag"); got == etag {
		t.Error("ETag should change after update")
	}

	w = do(t, router, http.MethodPut, "/schemas/devices/thermo.sddl", UpdateSchemaRequest{Content: `{"bool": {}}`})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid update = %d, want 422", w.Code)
	}
}

func TestUpdateSchema_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/schemas/ghost.json", UpdateSchemaRequest{Content: `{"int8 x": {}}`})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteSchema(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)

	if w := do(t, router, http.MethodDelete, "/schemas/devices/thermo.sddl", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/schemas/devices/thermo.sddl", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/schemas/devices/thermo.sddl", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListSchemas(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)
	do(t, router, http.MethodPost, "/schemas", CreateSchemaRequest{Path: "a.yaml", Content: "int8 x: {}\n"})

	w := do(t, router, http.MethodGet, "/schemas", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp SchemaListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Schemas[0].Path != "a.yaml" {
		t.Errorf("list = %+v", resp)
	}
	if resp.Schemas[1].NumVars != 3 {
		t.Errorf("thermostat NumVars = %d, want 3", resp.Schemas[1].NumVars)
	}
}

func TestCanonicalEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/schemas", CreateSchemaRequest{
		Path:    "c.json",
		Content: `{"int32 count required": {"description": "item count", "min-value": 0}}`,
	})

	w := do(t, router, http.MethodGet, "/canonical/c.json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("canonical = %d", w.Code)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, w.Body.Bytes()); err != nil {
		t.Fatal(err)
	}
	want := `{"required int32 count":{"min-value":0,"description":"item count"}}`
	if compact.String() != want {
		t.Errorf("canonical = %s, want %s", compact.String(), want)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)

	w := do(t, router, http.MethodGet, "/variables?q=humidity", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp VariableSearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].FullName != "reading.humidity" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := do(t, router, http.MethodGet, "/variables", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestGetVariableEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createThermostat(t, router)

	w := do(t, router, http.MethodGet, "/variable/devices/thermo.sddl?name=reading.temperature", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("variable = %d, body = %s", w.Code, w.Body.String())
	}
	var v models.Variable
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.Units != "celsius" || v.Direction != "out" {
		t.Errorf("variable = %+v", v)
	}

	if w := do(t, router, http.MethodGet, "/variable/devices/thermo.sddl?name=nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing variable = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/variable/devices/thermo.sddl", nil); w.Code != http.StatusBadRequest {
		t.Errorf("no name = %d, want 400", w.Code)
	}
}

func TestParseEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/parse", ParseRequest{Content: "out struct s:\n  int8 a: {}\n", Format: "yaml"})
	if w.Code != http.StatusOK {
		t.Fatalf("parse = %d, body = %s", w.Code, w.Body.String())
	}
	var schema SchemaDetail
	if err := json.NewDecoder(w.Body).Decode(&schema); err != nil {
		t.Fatal(err)
	}
	if !schema.OK || len(schema.Variables) != 2 {
		t.Errorf("parse = %+v", schema)
	}

	w = do(t, router, http.MethodPost, "/parse", ParseRequest{Content: `{"int32 a b": {}}`})
	if w.Code != http.StatusOK {
		t.Fatalf("parse failure status = %d", w.Code)
	}
	schema = SchemaDetail{}
	_ = json.NewDecoder(w.Body).Decode(&schema)
	if schema.OK || len(schema.Errors) == 0 {
		t.Errorf("expected diagnostics, got %+v", schema)
	}

	if w := do(t, router, http.MethodPost, "/parse", ParseRequest{Content: "{}", Format: "toml"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format = %d, want 400", w.Code)
	}
}

func TestDeclarationEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/declarations", DeclarationRequest{Declaration: "int32[10] samples out required"})
	if w.Code != http.StatusOK {
		t.Fatalf("declaration = %d, body = %s", w.Code, w.Body.String())
	}
	var resp DeclarationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Canonical != "required out int32[10] samples" {
		t.Errorf("Canonical = %q, want %q", resp.Canonical, "required out int32[10] samples")
	}
	if resp.Datatype != "int32[10]" || resp.Direction != "out" || resp.Optionality != "required" {
		t.Errorf("resp = %+v", resp)
	}

	w = do(t, router, http.MethodPost, "/declarations", DeclarationRequest{Declaration: "int32"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad declaration = %d, want 422", w.Code)
	}
	var er errResponse
	_ = json.NewDecoder(w.Body).Decode(&er)
	if len(er.Errors) != 1 || er.Errors[0] != "Too few tokens in declaration" {
		t.Errorf("errors = %v", er.Errors)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/schemas", nil, "Authorization", "Bearer secret123"); w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/schemas", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/schemas", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/schemas", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", blockingSSE)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvFull(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
