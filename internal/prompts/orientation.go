package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OrientationPrompt handles the bmad-orientation MCP prompt.
// It asks the AI to survey the available agents and recommend one.
type OrientationPrompt struct{}

// NewOrientationPrompt creates an OrientationPrompt.
func NewOrientationPrompt() *OrientationPrompt {
	return &OrientationPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OrientationPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("bmad-orientation",
		mcp.WithPromptDescription(
			"Get oriented in the BMAD method: see which agents exist and which one fits what you want to do.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What you want to get done (optional)"),
		),
	)
}

// Handle processes the bmad-orientation prompt request.
func (p *OrientationPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := ""
	if g := req.Params.Arguments["goal"]; g != "" {
		goal = "My goal: " + g + "\n\n"
	}

	return &mcp.GetPromptResult{
		Description: "BMAD orientation",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					goal +
						"Please run `bmad_list_agents` and `bmad_list_workflows` to see what the BMAD method offers here.\n\n" +
						"Then:\n" +
						"1. Group the agents by category and describe each in one line\n" +
						"2. Recommend the agent (and workflow, if one fits) I should start with, and why\n" +
						"3. Offer to activate it with `bmad_activate_agent`",
				),
			},
		},
	}, nil
}
