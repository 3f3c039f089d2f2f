// Package resources implements MCP resource handlers for the BMAD
// knowledge base.
//
// Resources provide read-only data the host can pull into context. They
// use bmad:// URIs.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
)

const (
	KnowledgeBaseURI = "bmad://knowledge-base"
	AgentsURI        = "bmad://agents"
	AgentURITemplate = "bmad://agents/{name}"
)

// KnowledgeBase reads the knowledge base document. *content.Store
// implements it.
type KnowledgeBase interface {
	KnowledgeBase(ctx context.Context) (string, error)
}

// Agents lists and activates agents. *agents.Manager implements it.
type Agents interface {
	List(ctx context.Context, includePacks bool, category agents.Category) ([]agents.Summary, error)
	Activate(ctx context.Context, req agents.Request) (*agents.Activation, error)
}

// Handler serves the BMAD resources.
type Handler struct {
	kb     KnowledgeBase
	agents Agents
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(kb KnowledgeBase, a Agents) *Handler {
	return &Handler{kb: kb, agents: a}
}

// --- Knowledge base ---

// KnowledgeBaseResource returns the MCP resource definition for the
// knowledge base.
func (h *Handler) KnowledgeBaseResource() mcp.Resource {
	return mcp.NewResource(
		KnowledgeBaseURI,
		"BMAD Knowledge Base",
		mcp.WithResourceDescription("The BMAD method reference: agents, workflows, and how they fit together"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleKnowledgeBase returns the knowledge base as markdown.
func (h *Handler) HandleKnowledgeBase(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	kb, err := h.kb.KnowledgeBase(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return textResource(req.Params.URI, "text/markdown", kb), nil
}

// --- Agents ---

// AgentsResource returns the MCP resource definition for the agent roster.
func (h *Handler) AgentsResource() mcp.Resource {
	return mcp.NewResource(
		AgentsURI,
		"BMAD Agents",
		mcp.WithResourceDescription("Summaries of every agent, including expansion packs"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleAgents returns every agent summary as JSON.
func (h *Handler) HandleAgents(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.agents.List(ctx, true, agents.CategoryAll)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling agents: %w", err)
	}
	return textResource(req.Params.URI, "application/json", string(data)), nil
}

// AgentTemplate returns the MCP resource template for one agent's
// activation prompt.
func (h *Handler) AgentTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		AgentURITemplate,
		"BMAD Agent Activation Prompt",
		mcp.WithTemplateDescription("The rendered activation prompt of one agent"),
		mcp.WithTemplateMIMEType("text/markdown"),
	)
}

// HandleAgent renders the activation prompt of the agent named in the URI.
func (h *Handler) HandleAgent(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	name, ok := agentName(uri)
	if !ok {
		return nil, fmt.Errorf("invalid agent resource URI: %s", uri)
	}
	act, err := h.agents.Activate(ctx, agents.Request{Agent: name})
	if err != nil {
		if errors.Is(err, agents.ErrAgentNotFound) || errors.Is(err, agents.ErrMissingDependency) {
			return errorResource(uri, err.Error()), nil
		}
		return nil, err
	}
	return textResource(uri, "text/markdown", act.ActivationPrompt), nil
}
