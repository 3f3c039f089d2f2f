// Package tools implements the MCP tool handlers of the BMAD server.
//
// Each tool is a struct holding its dependencies with Definition() and
// Handle() methods. Every handler answers with the same JSON envelope
// (see envelope.go) so callers can branch on success and error codes.
package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/ledger"
	"github.com/HendryAvila/bmad-mcp/internal/telemetry"
)

// --- Operation enum ---

// Operation names one tool. The set is closed; New rejects anything else.
type Operation string

const (
	OpListAgents         Operation = "bmad_list_agents"
	OpGetAgent           Operation = "bmad_get_agent"
	OpActivateAgent      Operation = "bmad_activate_agent"
	OpListTasks          Operation = "bmad_list_tasks"
	OpGetTask            Operation = "bmad_get_task"
	OpListTemplates      Operation = "bmad_list_templates"
	OpGetTemplate        Operation = "bmad_get_template"
	OpListWorkflows      Operation = "bmad_list_workflows"
	OpGetWorkflow        Operation = "bmad_get_workflow"
	OpGetKnowledgeBase   Operation = "bmad_get_kb"
	OpListTeams          Operation = "bmad_list_teams"
	OpListExpansionPacks Operation = "bmad_list_expansion_packs"
	OpClearCache         Operation = "bmad_clear_cache"
	OpActivationHistory  Operation = "bmad_activation_history"
)

// Operations lists every operation in registration order.
func Operations() []Operation {
	return []Operation{
		OpListAgents, OpGetAgent, OpActivateAgent,
		OpListTasks, OpGetTask,
		OpListTemplates, OpGetTemplate,
		OpListWorkflows, OpGetWorkflow,
		OpGetKnowledgeBase, OpListTeams, OpListExpansionPacks,
		OpClearCache, OpActivationHistory,
	}
}

// --- Dependencies ---

// Catalog is the content the tools read. *content.Store implements it.
type Catalog interface {
	Task(ctx context.Context, name string) (*content.Task, error)
	Template(ctx context.Context, name string) (*content.Template, error)
	Workflow(ctx context.Context, name string) (*content.Workflow, error)
	Tasks(ctx context.Context) ([]*content.Task, error)
	Templates(ctx context.Context) ([]*content.Template, error)
	Workflows(ctx context.Context) ([]*content.Workflow, error)
	Teams(ctx context.Context) ([]*content.Team, error)
	ExpansionPacks(ctx context.Context) ([]*content.ExpansionPack, error)
	KnowledgeBase(ctx context.Context) (string, error)
	ClearCaches()
	CacheStats() map[content.Kind]int
}

// AgentService lists, looks up, and activates agents. *agents.Manager
// implements it.
type AgentService interface {
	List(ctx context.Context, includePacks bool, category agents.Category) ([]agents.Summary, error)
	Get(ctx context.Context, name string, includeDependencies bool) (*agents.Details, error)
	Activate(ctx context.Context, req agents.Request) (*agents.Activation, error)
	Summary(a *content.Agent) agents.Summary
}

// History reads the activation ledger. *ledger.Store implements it.
type History interface {
	Recent(ctx context.Context, agent string, limit int) ([]ledger.Entry, error)
	Stats(ctx context.Context) (*ledger.Stats, error)
}

// Env carries the dependencies shared by every tool.
type Env struct {
	Catalog     Catalog
	Agents      AgentService
	History     History // nil when the ledger is disabled
	Instruments *telemetry.Instruments
	Logger      *zap.Logger
}

// --- Tool set ---

// Tool is one registered MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New builds the tool for op.
func New(op Operation, env *Env) (Tool, error) {
	switch op {
	case OpListAgents:
		return NewListAgentsTool(env), nil
	case OpGetAgent:
		return NewGetAgentTool(env), nil
	case OpActivateAgent:
		return NewActivateAgentTool(env), nil
	case OpListTasks:
		return NewListTasksTool(env), nil
	case OpGetTask:
		return NewGetTaskTool(env), nil
	case OpListTemplates:
		return NewListTemplatesTool(env), nil
	case OpGetTemplate:
		return NewGetTemplateTool(env), nil
	case OpListWorkflows:
		return NewListWorkflowsTool(env), nil
	case OpGetWorkflow:
		return NewGetWorkflowTool(env), nil
	case OpGetKnowledgeBase:
		return NewKnowledgeBaseTool(env), nil
	case OpListTeams:
		return NewListTeamsTool(env), nil
	case OpListExpansionPacks:
		return NewListExpansionPacksTool(env), nil
	case OpClearCache:
		return NewClearCacheTool(env), nil
	case OpActivationHistory:
		return NewActivationHistoryTool(env), nil
	}
	return nil, fmt.Errorf("unknown tool: %s", op)
}

// All builds every tool available in env. The history tool is left out
// when no ledger is configured.
func All(env *Env) ([]Tool, error) {
	out := make([]Tool, 0, len(Operations()))
	for _, op := range Operations() {
		if op == OpActivationHistory && env.History == nil {
			continue
		}
		t, err := New(op, env)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
