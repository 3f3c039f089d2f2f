package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/ledger"
)

// ActivationHistoryTool reports recent activations and per-agent totals
// from the ledger.
type ActivationHistoryTool struct{ env *Env }

// NewActivationHistoryTool creates an ActivationHistoryTool.
func NewActivationHistoryTool(env *Env) *ActivationHistoryTool {
	return &ActivationHistoryTool{env: env}
}

// Definition returns the MCP tool definition for registration.
func (t *ActivationHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool(string(OpActivationHistory),
		mcp.WithDescription(
			"Show recent agent activations with their token estimates, plus activation counts per agent. "+
				"Useful to see which personas a project relies on.",
		),
		mcp.WithString("agent",
			mcp.Description("Only show activations of this agent"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of recent activations (default 20)"),
		),
	)
}

type historyResult struct {
	Stats  *ledger.Stats  `json:"stats"`
	Recent []ledger.Entry `json:"recent"`
}

// Handle processes the bmad_activation_history tool call.
func (t *ActivationHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.env.run(ctx, OpActivationHistory, func(ctx context.Context) (outcome, error) {
		limit := intArg(req, "limit", 0)
		if limit < 0 {
			return outcome{}, invalidInput("limit", "limit must be zero or positive")
		}
		recent, err := t.env.History.Recent(ctx, req.GetString("agent", ""), limit)
		if err != nil {
			return outcome{}, err
		}
		stats, err := t.env.History.Stats(ctx)
		if err != nil {
			return outcome{}, err
		}
		return ok(historyResult{Stats: stats, Recent: recent})
	})
}
