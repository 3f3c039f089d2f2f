package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// TaskSummary is the listing view of a task.
type TaskSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Agents      []string `json:"agents"`
	StepCount   int      `json:"stepCount"`
}

// --- bmad_list_tasks ---

// ListTasksTool lists tasks, optionally only those an agent may run.
type ListTasksTool struct{ env *Env }

// NewListTasksTool creates a ListTasksTool.
func NewListTasksTool(env *Env) *ListTasksTool { return &ListTasksTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpListTasks),
		mcp.WithDescription("List all available BMAD tasks"),
		mcp.WithString("agentFilter",
			mcp.Description("Only list tasks this agent is allowed to run"),
		),
	)
}

// Handle processes the bmad_list_tasks tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpListTasks, func(ctx context.Context) (outcome, error) {
		all, err := t.env.Catalog.Tasks(ctx)
		if err != nil {
			return outcome{}, err
		}
		agent := req.GetString("agentFilter", "")
		out := make([]TaskSummary, 0, len(all))
		for _, task := range all {
			if agent != "" && !task.HasAgent(agent) {
				continue
			}
			out = append(out, TaskSummary{
				Name:        task.Name,
				Description: task.Description,
				Agents:      nonNil(task.Agents),
				StepCount:   len(task.Steps),
			})
		}
		return ok(out)
	})
}

// --- bmad_get_task ---

// GetTaskTool returns one task definition.
type GetTaskTool struct{ env *Env }

// NewGetTaskTool creates a GetTaskTool.
func NewGetTaskTool(env *Env) *GetTaskTool { return &GetTaskTool{env: env} }

// Definition returns the MCP tool definition for registration.
func (t *GetTaskTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpGetTask),
		mcp.WithDescription("Get a specific task definition with its inputs and steps"),
		mcp.WithString("taskName",
			mcp.Required(),
			mcp.Description("Task name (e.g. 'create-doc')"),
		),
	)
}

// Handle processes the bmad_get_task tool call.
func (t *GetTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpGetTask, func(ctx context.Context) (outcome, error) {
		name, err := requireString(req, "taskName")
		if err != nil {
			return outcome{}, err
		}
		task, err := t.env.Catalog.Task(ctx, name)
		if err != nil {
			return outcome{}, err
		}
		return ok(task)
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
