// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes SDDL tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sddl/internal/apperr"
	"github.com/starford/sddl/internal/schemaservice"
	"github.com/starford/sddl/internal/sddl"
)

// Server wraps the MCP server with SDDL tools.
type Server struct {
	mcp *server.MCPServer
	svc *schemaservice.Service
}

// New creates a new MCP server with all SDDL tools registered.
func New(svc *schemaservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"SDDL",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_sddl",
		mcp.WithDescription("Parse an SDDL document and report diagnostics, flattened variables "+
			"and, when valid, its canonical JSON form. Nothing is stored."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document text")),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), s.parseSDDL)

	s.mcp.AddTool(mcp.NewTool("parse_declaration",
		mcp.WithDescription("Parse a single declaration string such as \"required out int32[4] samples\"."),
		mcp.WithString("declaration", mcp.Required(), mcp.Description("Declaration string")),
	), s.parseDeclaration)

	s.mcp.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the schemas stored in the registry with their parse status."),
	), s.listSchemas)

	s.mcp.AddTool(mcp.NewTool("read_schema",
		mcp.WithDescription("Read a stored schema: its source, diagnostics and variables."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the schema (e.g. devices/thermostat.sddl)")),
	), s.readSchema)

	s.mcp.AddTool(mcp.NewTool("create_schema",
		mcp.WithDescription("Store a new schema. The document MUST parse without errors; "+
			"read the grammar first via get_grammar or the "+GrammarURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path ending in .sddl, .json, .yaml or .yml")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document text")),
	), s.createSchema)

	s.mcp.AddTool(mcp.NewTool("search_variables",
		mcp.WithDescription("Full-text search through variable names, descriptions and units."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchVariables)

	s.mcp.AddTool(mcp.NewTool("get_grammar",
		mcp.WithDescription("Returns the SDDL grammar reference. "+
			"Call this before writing schemas to ensure correct structure."),
	), s.getGrammar)

	s.mcp.AddResource(
		mcp.NewResource(GrammarURI, "SDDL Grammar",
			mcp.WithResourceDescription("Declaration grammar, metadata fields and canonical form of SDDL documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGrammarResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type parseOutput struct {
	OK        bool            `json:"ok"`
	Errors    []string        `json:"errors"`
	Warnings  []string        `json:"warnings"`
	Variables any             `json:"variables"`
	Canonical json.RawMessage `json:"canonical,omitempty"`
}

func (s *Server) parseSDDL(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := req.GetString("format", "json")

	detail, err := s.svc.ParseText([]byte(content), format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := parseOutput{OK: detail.OK, Errors: detail.Errors, Warnings: detail.Warnings, Variables: detail.Variables}
	if detail.OK {
		if canon, err := s.svc.CanonicalizeText([]byte(content), format); err == nil {
			out.Canonical = canon
		}
	}
	return jsonResult(out)
}

func (s *Server) parseDeclaration(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	decl, err := req.RequireString("declaration")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h, err := sddl.ParseDeclaration(decl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{
		"canonical":   h.String(),
		"optionality": h.Optionality.String(),
		"direction":   h.Direction.String(),
		"datatype":    h.Datatype.String(),
		"name":        h.Name,
	})
}

func (s *Server) listSchemas(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListSchemas(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no schemas found"), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		status := "ok"
		if !it.OK {
			status = fmt.Sprintf("%d error(s)", it.NumErrors)
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d variable(s)", it.Path, status, it.NumVars))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetSchema(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) createSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.svc.CreateSchema(ctx, path, []byte(content))
	if err != nil {
		var se *apperr.SchemaError
		switch {
		case errors.As(err, &se):
			return mcp.NewToolResultError("invalid schema:\n" + strings.Join(se.Errors, "\n")), nil
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("schema already exists: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("created: %s (%d variable(s))", path, len(detail.Variables))
	if len(detail.Warnings) > 0 {
		msg += "\nwarnings:\n" + strings.Join(detail.Warnings, "\n")
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) searchVariables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchVariables(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getGrammar(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Grammar), nil
}

func (s *Server) readGrammarResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GrammarURI,
			MIMEType: "text/markdown",
			Text:     Grammar,
		},
	}, nil
}
