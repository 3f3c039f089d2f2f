package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/content"
)

// WorkflowSummary is the listing view of a workflow.
type WorkflowSummary struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        content.ProjectType `json:"type"`
	PhaseCount  int                 `json:"phaseCount"`
}

// workflowView is a workflow whose phases carry the owning agent's summary.
type workflowView struct {
	*content.Workflow
	Phases []phaseView `json:"phases"`
}

type phaseView struct {
	content.WorkflowPhase
	AgentDetails *agents.Summary `json:"agentDetails,omitempty"`
}

// --- bmad_list_workflows ---

// ListWorkflowsTool lists workflows, optionally for one project type.
type ListWorkflowsTool struct{ env *Env }

// NewListWorkflowsTool creates a ListWorkflowsTool.
func NewListWorkflowsTool(env *Env) *ListWorkflowsTool { return &ListWorkflowsTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ListWorkflowsTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListWorkflows),
		mcp.WithDescription("List all available BMAD workflows"),
		mcp.WithString("projectType",
			mcp.Description("Filter by project type (default all)"),
			mcp.Enum(
				string(content.ProjectGreenfield),
				string(content.ProjectBrownfield),
				string(content.ProjectMaintenance),
				string(content.ProjectAll),
			),
		),
	)
}

// Handle processes the bmad_list_workflows tool call.
func (t *ListWorkflowsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListWorkflows, func(ctx context.Context) (outcome, error) {
		pt, err := content.ParseProjectType(req.GetString("projectType", ""))
		if err != nil {
			return outcome{}, invalidInput("projectType", "%v", err)
		}
		all, err := t.env.Catalog.Workflows(ctx)
		if err != nil {
			return outcome{}, err
		}
		out := make([]WorkflowSummary, 0, len(all))
		for _, w := range all {
			if pt != content.ProjectAll && w.Type != pt {
				continue
			}
			out = append(out, WorkflowSummary{
				Name:        w.Name,
				Description: w.Description,
				Type:        w.Type,
				PhaseCount:  len(w.Phases),
			})
		}
		return ok(out)
	})
}

// --- bmad_get_workflow ---

// GetWorkflowTool returns one workflow definition.
type GetWorkflowTool struct{ env *Env }

// NewGetWorkflowTool creates a GetWorkflowTool.
func NewGetWorkflowTool(env *Env) *GetWorkflowTool { return &GetWorkflowTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *GetWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpGetWorkflow),
		mcp.WithDescription("Get a specific workflow definition"),
		mcp.WithString("workflowName",
			mcp.Required(),
			mcp.Description("Workflow name (e.g. 'greenfield-fullstack')"),
		),
		mcp.WithBoolean("includeAgentDetails",
			mcp.Description("Attach a summary of each phase's agent"),
		),
	)
}

// Handle processes the bmad_get_workflow tool call.
func (t *GetWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpGetWorkflow, func(ctx context.Context) (outcome, error) {
		name, err := requireString(req, "workflowName")
		if err != nil {
			return outcome{}, err
		}
		w, err := t.env.Catalog.Workflow(ctx, name)
		if err != nil {
			return outcome{}, err
		}
		if !boolArg(req, "includeAgentDetails") {
			return ok(w)
		}
		return ok(t.withAgentDetails(ctx, w))
	})
}

// withAgentDetails attaches agent summaries to phases. Phases whose agent
// cannot be loaded are returned without details.
func (t *GetWorkflowTool) withAgentDetails(ctx context.Context, w *content.Workflow) workflowView {
	view := workflowView{Workflow: w, Phases: make([]phaseView, 0, len(w.Phases))}
	for _, p := range w.Phases {
		pv := phaseView{WorkflowPhase: p}
		if p.Agent != "" {
			if d, err := t.env.Agents.Get(ctx, p.Agent, false); err == nil {
				s := t.env.Agents.Summary(d.Agent)
				pv.AgentDetails = &s
			}
		}
		view.Phases = append(view.Phases, pv)
	}
	return view
}
