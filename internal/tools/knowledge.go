package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/tokens"
)

// --- bmad_get_kb ---

// KnowledgeBaseTool returns the BMAD knowledge base document.
type KnowledgeBaseTool struct{ env *Env }

// NewKnowledgeBaseTool creates a KnowledgeBaseTool.
func NewKnowledgeBaseTool(env *Env) *KnowledgeBaseTool { return &KnowledgeBaseTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *KnowledgeBaseTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpGetKnowledgeBase),
		mcp.WithDescription("Get the complete BMAD knowledge base"),
		mcp.WithNumber("max_tokens",
			mcp.Description("Truncate the document to about this many tokens (0 = no limit)"),
		),
	)
}

// Handle processes the bmad_get_kb tool call.
func (t *KnowledgeBaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpGetKnowledgeBase, func(ctx context.Context) (outcome, error) {
		limit := intArg(req, "max_tokens", 0)
		if limit < 0 {
			return outcome{}, invalidInput("max_tokens", "max_tokens must be zero or positive")
		}
		kb, err := t.env.Catalog.KnowledgeBase(ctx)
		if err != nil {
			return outcome{}, err
		}
		if limit == 0 || tokens.Fits(kb, limit) {
			return ok(kb)
		}
		return outcome{
			data:     tokens.Truncate(kb, limit, tokens.DefaultTruncationSuffix),
			warnings: []string{"Knowledge base truncated to fit max_tokens"},
		}, nil
	})
}

// --- bmad_list_teams ---

// TeamSummary is the listing view of a team.
type TeamSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Agents      []string `json:"agents"`
	AgentCount  int      `json:"agentCount"`
}

// ListTeamsTool lists agent teams.
type ListTeamsTool struct{ env *Env }

// NewListTeamsTool creates a ListTeamsTool.
func NewListTeamsTool(env *Env) *ListTeamsTool { return &ListTeamsTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ListTeamsTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListTeams),
		mcp.WithDescription("List all available agent teams"),
	)
}

// Handle processes the bmad_list_teams tool call.
func (t *ListTeamsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListTeams, func(ctx context.Context) (outcome, error) {
		all, err := t.env.Catalog.Teams(ctx)
		if err != nil {
			return outcome{}, err
		}
		out := make([]TeamSummary, 0, len(all))
		for _, team := range all {
			out = append(out, TeamSummary{
				Name:        team.Name,
				Description: team.Description,
				Agents:      nonNil(team.Agents),
				AgentCount:  len(team.Agents),
			})
		}
		return ok(out)
	})
}

// --- bmad_list_expansion_packs ---

// ListExpansionPacksTool lists installed expansion packs.
type ListExpansionPacksTool struct{ env *Env }

// NewListExpansionPacksTool creates a ListExpansionPacksTool.
func NewListExpansionPacksTool(env *Env) *ListExpansionPacksTool {
	return &ListExpansionPacksTool{env: env}
}

// Definition returns the MCP tool definition for registration.
func (t *ListExpansionPacksTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListExpansionPacks),
		mcp.WithDescription("List all available expansion packs"),
	)
}

// Handle processes the bmad_list_expansion_packs tool call.
func (t *ListExpansionPacksTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListExpansionPacks, func(ctx context.Context) (outcome, error) {
		packs, err := t.env.Catalog.ExpansionPacks(ctx)
		if err != nil {
			return outcome{}, err
		}
		return ok(packs)
	})
}

// --- bmad_clear_cache ---

// ClearCacheTool drops every cached definition so edits on disk are
// picked up on the next lookup.
type ClearCacheTool struct{ env *Env }

// NewClearCacheTool creates a ClearCacheTool.
func NewClearCacheTool(env *Env) *ClearCacheTool { return &ClearCacheTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ClearCacheTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpClearCache),
		mcp.WithDescription("Clear cached agent, task, template, workflow, and checklist definitions"),
	)
}

// Handle processes the bmad_clear_cache tool call.
func (t *ClearCacheTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpClearCache, func(context.Context) (outcome, error) {
		before := t.env.Catalog.CacheStats()
		t.env.Catalog.ClearCaches()
		return ok(struct {
			Cleared map[content.Kind]int `json:"cleared"`
		}{before})
	})
}
