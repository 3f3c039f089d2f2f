package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// TemplateSummary is the listing view of a template.
type TemplateSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Sections    int      `json:"sections"`
	Variables   []string `json:"variables"`
}

// --- bmad_list_templates ---

// ListTemplatesTool lists templates, optionally filtered by type.
type ListTemplatesTool struct{ env *Env }

// NewListTemplatesTool creates a ListTemplatesTool.
func NewListTemplatesTool(env *Env) *ListTemplatesTool { return &ListTemplatesTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ListTemplatesTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListTemplates),
		mcp.WithDescription("List all available document templates"),
		mcp.WithString("category",
			mcp.Description("Keep templates whose type contains this text (case-insensitive); 'all' keeps everything"),
		),
	)
}

// Handle processes the bmad_list_templates tool call.
func (t *ListTemplatesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListTemplates, func(ctx context.Context) (outcome, error) {
		all, err := t.env.Catalog.Templates(ctx)
		if err != nil {
			return outcome{}, err
		}
		category := strings.ToLower(strings.TrimSpace(req.GetString("category", "")))
		if category == "all" {
			category = ""
		}
		out := make([]TemplateSummary, 0, len(all))
		for _, tpl := range all {
			if category != "" && !strings.Contains(strings.ToLower(tpl.Type), category) {
				continue
			}
			out = append(out, TemplateSummary{
				Name:        tpl.Name,
				Description: tpl.Description,
				Type:        tpl.Type,
				Sections:    len(tpl.Sections),
				Variables:   tpl.VariableNames(),
			})
		}
		return ok(out)
	})
}

// --- bmad_get_template ---

// GetTemplateTool returns one template definition.
type GetTemplateTool struct{ env *Env }

// NewGetTemplateTool creates a GetTemplateTool.
func NewGetTemplateTool(env *Env) *GetTemplateTool { return &GetTemplateTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *GetTemplateTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpGetTemplate),
		mcp.WithDescription("Get a specific template with its sections and variables"),
		mcp.WithString("templateName",
			mcp.Required(),
			mcp.Description("Template name (e.g. 'prd-tmpl')"),
		),
	)
}

// Handle processes the bmad_get_template tool call.
func (t *GetTemplateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpGetTemplate, func(ctx context.Context) (outcome, error) {
		name, err := requireString(req, "templateName")
		if err != nil {
			return outcome{}, err
		}
		tpl, err := t.env.Catalog.Template(ctx, name)
		if err != nil {
			return outcome{}, err
		}
		return ok(tpl)
	})
}
