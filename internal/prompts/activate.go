// Package prompts implements MCP prompt handlers for the BMAD method.
//
// MCP prompts are user-triggered workflows (like slash commands). Unlike
// tools, which the AI calls, prompts are initiated by the user.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
)

// Activator renders activation prompts. *agents.Manager implements it.
type Activator interface {
	Activate(ctx context.Context, req agents.Request) (*agents.Activation, error)
}

// ActivatePrompt handles the bmad-activate MCP prompt.
// It hands the user's chosen agent persona to the AI as a user message.
type ActivatePrompt struct {
	agents Activator
}

// NewActivatePrompt creates an ActivatePrompt.
func NewActivatePrompt(a Activator) *ActivatePrompt {
	return &ActivatePrompt{agents: a}
}

// Definition returns the MCP prompt definition for registration.
func (p *ActivatePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("bmad-activate",
		mcp.WithPromptDescription(
			"Activate a BMAD agent persona. "+
				"The assistant takes on the agent's role, commands, and dependencies for this conversation.",
		),
		mcp.WithArgument("agent_name",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Agent to activate (e.g. 'dev', 'pm', 'architect')"),
		),
		mcp.WithArgument("project_path",
			mcp.ArgumentDescription("Path to the project the agent will work on"),
		),
		mcp.WithArgument("command",
			mcp.ArgumentDescription("Command for the agent to run right after activation"),
		),
	)
}

// Handle processes the bmad-activate prompt request.
func (p *ActivatePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	name := strings.TrimSpace(args["agent_name"])
	if name == "" {
		return nil, errors.New("agent_name is required")
	}

	act, err := p.agents.Activate(ctx, agents.Request{
		Agent:          name,
		ProjectPath:    args["project_path"],
		InitialCommand: args["command"],
	})
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Activate BMAD agent: %s (~%d tokens)", act.Agent.Label(), act.TokenEstimate),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"From now on, act as the following BMAD agent. Stay in character until I say `*exit`.\n\n" +
						act.ActivationPrompt,
				),
			},
		},
	}, nil
}
