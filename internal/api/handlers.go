package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sddl/internal/checksum"
	"github.com/starford/sddl/internal/schemaservice"
	"github.com/starford/sddl/internal/sddl"
)

// Handler holds API route handlers.
type Handler struct {
	svc *schemaservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *schemaservice.Service) *Handler {
	return &Handler{svc: svc}
}

// schemaPath extracts the schema path from the wildcard URL segment.
// Supports encoded slashes from OpenAPI clients (e.g. devices%2Fthermo.sddl).
func schemaPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListSchemas handles GET /schemas.
//
//	@Summary		List indexed schemas
//	@Tags			schemas
//	@Produce		json
//	@Success		200		{object}	SchemaListResponse
//	@Security		BearerAuth
//	@Router			/schemas [get]
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListSchemas(r.Context())
	if err != nil {
		writeServiceError(w, "list schemas", "", err)
		return
	}
	writeJSON(w, http.StatusOK, SchemaListResponse{Schemas: items, Total: len(items)})
}

// GetSchema handles GET /schemas/*.
//
//	@Summary		Get a schema with its diagnostics and flattened variables
//	@Tags			schemas
//	@Produce		json
//	@Param			path	path		string	true	"Schema path"
//	@Success		200		{object}	SchemaDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/schemas/{path} [get]
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	path := schemaPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	schema, err := h.svc.GetSchema(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get schema", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(schema.Checksum))
	writeJSON(w, http.StatusOK, schema)
}

// CreateSchema handles POST /schemas.
//
//	@Summary		Create a new schema
//	@Tags			schemas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSchemaRequest	true	"Schema to create"
//	@Success		201		{object}	SchemaDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/schemas [post]
func (h *Handler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req CreateSchemaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	schema, err := h.svc.CreateSchema(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeServiceError(w, "create schema", req.Path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(schema.Checksum))
	writeJSON(w, http.StatusCreated, schema)
}

// UpdateSchema handles PUT /schemas/*.
//
//	@Summary		Update a schema with optimistic concurrency
//	@Tags			schemas
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string				true	"Schema path"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateSchemaRequest	true	"Updated content"
//	@Success		200			{object}	SchemaDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/schemas/{path} [put]
func (h *Handler) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	path := schemaPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateSchemaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	schema, err := h.svc.UpdateSchema(r.Context(), path, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeServiceError(w, "update schema", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(schema.Checksum))
	writeJSON(w, http.StatusOK, schema)
}

// DeleteSchema handles DELETE /schemas/*.
//
//	@Summary		Delete a schema
//	@Tags			schemas
//	@Param			path	path	string	true	"Schema path"
//	@Success		204		"Schema deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/schemas/{path} [delete]
func (h *Handler) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	path := schemaPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteSchema(r.Context(), path); err != nil {
		writeServiceError(w, "delete schema", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Canonical handles GET /canonical/*.
//
//	@Summary		Get the canonical JSON form of a schema
//	@Tags			schemas
//	@Produce		json
//	@Param			path	path		string	true	"Schema path"
//	@Success		200		{object}	object
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/canonical/{path} [get]
func (h *Handler) Canonical(w http.ResponseWriter, r *http.Request) {
	path := schemaPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	out, err := h.svc.Canonicalize(r.Context(), path)
	if err != nil {
		writeServiceError(w, "canonicalize", path, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(out, '\n')); err != nil {
		slog.Error("write canonical failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// SearchVariables handles GET /variables.
//
//	@Summary		Full-text search across declared variables
//	@Tags			variables
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	VariableSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/variables [get]
func (h *Handler) SearchVariables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchVariables(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search variables", "", err)
		return
	}
	writeJSON(w, http.StatusOK, VariableSearchResponse{Results: results})
}

// GetVariable handles GET /variable/*.
//
//	@Summary		Resolve one variable of a schema by dotted name
//	@Tags			variables
//	@Produce		json
//	@Param			path	path		string	true	"Schema path"
//	@Param			name	query		string	true	"Dotted variable name, e.g. reading.humidity"
//	@Success		200		{object}	models.Variable
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/variable/{path} [get]
func (h *Handler) GetVariable(w http.ResponseWriter, r *http.Request) {
	path := schemaPath(r)
	name := r.URL.Query().Get("name")
	if path == "" || name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and name are required"))
		return
	}
	v, err := h.svc.GetVariable(r.Context(), path, name)
	if err != nil {
		writeServiceError(w, "get variable", path, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Parse handles POST /parse.
//
//	@Summary		Parse a document without storing it
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Document to parse"
//	@Success		200		{object}	SchemaDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	schema, err := h.svc.ParseText([]byte(req.Content), req.Format)
	if err != nil {
		writeServiceError(w, "parse", "", err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// ParseDeclaration handles POST /declarations.
//
//	@Summary		Parse a single declaration string
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DeclarationRequest	true	"Declaration"
//	@Success		200		{object}	DeclarationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/declarations [post]
func (h *Handler) ParseDeclaration(w http.ResponseWriter, r *http.Request) {
	var req DeclarationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hdr, err := sddl.ParseDeclaration(req.Declaration)
	if err != nil {
		var de *sddl.DeclError
		msg := err.Error()
		if errors.As(err, &de) {
			msg = de.Msg
		}
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{Error: "invalid declaration", Errors: []string{msg}})
		return
	}
	writeJSON(w, http.StatusOK, newDeclarationResponse(hdr))
}

func newDeclarationResponse(h sddl.DeclarationHeader) DeclarationResponse {
	resp := DeclarationResponse{
		Canonical: h.String(),
		Datatype:  h.Datatype.String(),
		Name:      h.Name,
	}
	if h.Optionality != sddl.Unspecified {
		resp.Optionality = h.Optionality.String()
	}
	if h.Direction != sddl.Inherit {
		resp.Direction = h.Direction.String()
	}
	return resp
}
