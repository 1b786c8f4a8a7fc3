package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sddl/internal/schemaservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *schemaservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Schemas CRUD.
	r.Get("/schemas", h.ListSchemas)
	r.Post("/schemas", h.CreateSchema)
	r.Get("/schemas/*", h.GetSchema)
	r.Put("/schemas/*", h.UpdateSchema)
	r.Delete("/schemas/*", h.DeleteSchema)
	r.Get("/canonical/*", h.Canonical)

	// Variables.
	r.Get("/variables", h.SearchVariables)
	r.Get("/variable/*", h.GetVariable)

	// Stateless parsing.
	r.Post("/parse", h.Parse)
	r.Post("/declarations", h.ParseDeclaration)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
