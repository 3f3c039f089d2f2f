package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
)

var categoryEnum = []string{
	string(agents.CategoryPlanning),
	string(agents.CategoryDevelopment),
	string(agents.CategoryQuality),
	string(agents.CategoryOrchestration),
	string(agents.CategoryGeneral),
	string(agents.CategoryAll),
}

// --- bmad_list_agents ---

// ListAgentsTool lists agent summaries, optionally filtered by category.
type ListAgentsTool struct{ env *Env }

// NewListAgentsTool creates a ListAgentsTool.
func NewListAgentsTool(env *Env) *ListAgentsTool { return &ListAgentsTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ListAgentsTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListAgents),
		mcp.WithDescription("List all available BMAD agents with their roles and capabilities"),
		mcp.WithBoolean("includeExpansionPacks",
			mcp.Description("Include agents from expansion packs (default false)"),
		),
		mcp.WithString("category",
			mcp.Description("Filter agents by category (default all)"),
			mcp.Enum(categoryEnum...),
		),
	)
}

// Handle processes the bmad_list_agents tool call.
func (t *ListAgentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListAgents, func(ctx context.Context) (outcome, error) {
		category, err := agents.ParseCategory(req.GetString("category", ""))
		if err != nil {
			return outcome{}, invalidInput("category", "%v", err)
		}
		list, err := t.env.Agents.List(ctx, boolArg(req, "includeExpansionPacks"), category)
		if err != nil {
			return outcome{}, err
		}
		return ok(list)
	})
}

// --- bmad_get_agent ---

// GetAgentTool returns one agent definition.
type GetAgentTool struct{ env *Env }

// NewGetAgentTool creates a GetAgentTool.
func NewGetAgentTool(env *Env) *GetAgentTool { return &GetAgentTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *GetAgentTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpGetAgent),
		mcp.WithDescription("Get detailed information about a specific BMAD agent"),
		mcp.WithString("agentName",
			mcp.Required(),
			mcp.Description("Name of the agent (e.g. 'dev', 'pm', 'architect')"),
		),
		mcp.WithBoolean("includeDependencies",
			mcp.Description("Resolve and include the agent's tasks, templates, checklists, and data"),
		),
	)
}

// Handle processes the bmad_get_agent tool call.
func (t *GetAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpGetAgent, func(ctx context.Context) (outcome, error) {
		name, err := requireString(req, "agentName")
		if err != nil {
			return outcome{}, err
		}
		d, err := t.env.Agents.Get(ctx, name, boolArg(req, "includeDependencies"))
		if err != nil {
			return outcome{}, err
		}
		return outcome{data: d, warnings: d.Warnings}, nil
	})
}

// --- bmad_activate_agent ---

// ActivateAgentTool resolves an agent's dependencies and renders its
// activation prompt.
type ActivateAgentTool struct{ env *Env }

// NewActivateAgentTool creates an ActivateAgentTool.
func NewActivateAgentTool(env *Env) *ActivateAgentTool { return &ActivateAgentTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ActivateAgentTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpActivateAgent),
		mcp.WithDescription(
			"Activate a BMAD agent: resolve its dependencies and return the full activation prompt. "+
				"Adopt the returned prompt as your persona for the rest of the conversation.",
		),
		mcp.WithString("agentName",
			mcp.Required(),
			mcp.Description("Name of the agent to activate"),
		),
		mcp.WithString("projectPath",
			mcp.Description("Path to the project the agent will work on"),
		),
		mcp.WithString("initialCommand",
			mcp.Description("Command for the agent to run right after activation"),
		),
	)
}

// Handle processes the bmad_activate_agent tool call.
func (t *ActivateAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpActivateAgent, func(ctx context.Context) (outcome, error) {
		name, err := requireString(req, "agentName")
		if err != nil {
			return outcome{}, err
		}
		act, err := t.env.Agents.Activate(ctx, agents.Request{
			Agent:          name,
			ProjectPath:    req.GetString("projectPath", ""),
			InitialCommand: req.GetString("initialCommand", ""),
		})
		if err != nil {
			return outcome{}, err
		}
		t.env.Instruments.RecordActivation(ctx, act.Agent.Name, act.TokenEstimate)
		return outcome{data: act, warnings: act.Warnings}, nil
	})
}
