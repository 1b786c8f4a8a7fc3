package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sddl/internal/models"
)

// CreateSchemaRequest is the request body for creating a schema.
type CreateSchemaRequest struct {
	Path    string `json:"path" example:"devices/thermostat.sddl" validate:"required"`
	Content string `json:"content" example:"{\"int32 x\": {}}" validate:"required"`
}

// Validate validates the request.
func (r CreateSchemaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateSchemaRequest is the request body for updating a schema.
type UpdateSchemaRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate validates the request.
func (r UpdateSchemaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// ParseRequest asks for a document to be parsed without storing it.
type ParseRequest struct {
	Content string `json:"content" validate:"required"`
	Format  string `json:"format,omitempty" example:"json" enums:"json,yaml"`
}

// Validate validates the request.
func (r ParseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Format, validation.In("json", "yaml", "yml")),
	)
}

// DeclarationRequest asks for a single declaration string to be parsed.
type DeclarationRequest struct {
	Declaration string `json:"declaration" example:"required out int32[10] samples" validate:"required"`
}

// Validate validates the request.
func (r DeclarationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Declaration, validation.Required),
	)
}

// DeclarationResponse is the parsed form of a declaration.
type DeclarationResponse struct {
	Canonical   string `json:"canonical" example:"required out int32[10] samples"`
	Optionality string `json:"optionality,omitempty" example:"required"`
	Direction   string `json:"direction,omitempty" example:"out"`
	Datatype    string `json:"datatype" example:"int32[10]"`
	Name        string `json:"name" example:"samples"`
}

// SchemaDetail is the full schema response type (aliased from the domain layer).
type SchemaDetail = models.Schema

// SchemaListResponse wraps schema listings.
type SchemaListResponse struct {
	Schemas []models.SchemaSummary `json:"schemas" validate:"required"`
	Total   int                    `json:"total" example:"3" validate:"required"`
}

// VariableSearchResponse wraps variable search hits.
type VariableSearchResponse struct {
	Results []models.Variable `json:"results" validate:"required"`
}
