// Package agents turns agent definitions into activations: it resolves an
// agent's declared dependencies, renders its activation prompt, and groups
// agents into categories for listing.
package agents

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/ledger"
	"github.com/HendryAvila/bmad-mcp/internal/tokens"
)

// ErrAgentNotFound is returned when no definition exists for an agent.
var ErrAgentNotFound = errors.New("agent not found")

// Store is the content the Manager reads. *content.Store implements it.
type Store interface {
	Source
	Agent(ctx context.Context, name string) (*content.Agent, error)
	Agents(ctx context.Context, includePacks bool) ([]*content.Agent, error)
}

// Recorder persists activations. *ledger.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) (string, error)
}

// Manager is the entry point for agent listing, lookup, and activation.
type Manager struct {
	store    Store
	resolver *Resolver
	recorder Recorder
	logger   *zap.Logger
}

// NewManager creates a Manager. recorder may be nil.
func NewManager(store Store, recorder Recorder, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		resolver: NewResolver(store, logger),
		recorder: recorder,
		logger:   logger,
	}
}

// Summary is the listing view of an agent.
type Summary struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	Role            string   `json:"role"`
	PrimaryDomain   string   `json:"primaryDomain"`
	CommandCount    int      `json:"commandCount"`
	DependencyCount int      `json:"dependencyCount"`
	Category        Category `json:"category"`
}

// Summary builds the listing view of a.
func (m *Manager) Summary(a *content.Agent) Summary {
	return Summary{
		Name:            a.Name,
		DisplayName:     a.DisplayName,
		Role:            a.Role,
		PrimaryDomain:   a.PrimaryDomain,
		CommandCount:    len(a.Commands),
		DependencyCount: len(a.Dependencies),
		Category:        Classify(a),
	}
}

// List returns summaries of every agent matching category.
func (m *Manager) List(ctx context.Context, includePacks bool, category Category) ([]Summary, error) {
	all, err := m.store.Agents(ctx, includePacks)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(all))
	for _, a := range all {
		if Matches(a, category) {
			out = append(out, m.Summary(a))
		}
	}
	return out, nil
}

// Details is an agent with, optionally, its resolved dependencies.
type Details struct {
	Agent        *content.Agent `json:"agent"`
	Dependencies *Bundle        `json:"dependencies,omitempty"`
	Warnings     []string       `json:"-"`
}

// Get looks up an agent. With includeDependencies the dependencies are
// resolved as for an activation, so a missing required one fails the call.
func (m *Manager) Get(ctx context.Context, name string, includeDependencies bool) (*Details, error) {
	a, err := m.agent(ctx, name)
	if err != nil {
		return nil, err
	}
	d := &Details{Agent: a}
	if includeDependencies {
		if d.Dependencies, d.Warnings, err = m.resolver.Resolve(ctx, a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Request asks for one activation.
type Request struct {
	Agent          string
	ProjectPath    string
	InitialCommand string
}

// Activation is the result of activating an agent.
type Activation struct {
	Agent            *content.Agent `json:"agent"`
	Dependencies     *Bundle        `json:"dependencies"`
	ActivationPrompt string         `json:"activationPrompt"`
	TokenEstimate    int            `json:"tokenEstimate"`
	TokenUsage       tokens.Usage   `json:"tokenUsage"`
	Warnings         []string       `json:"-"`
}

// Activate resolves the agent's dependencies, renders its prompt, and
// records the activation when a recorder is configured.
func (m *Manager) Activate(ctx context.Context, req Request) (*Activation, error) {
	a, err := m.agent(ctx, req.Agent)
	if err != nil {
		return nil, err
	}
	bundle, warnings, err := m.resolver.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}

	prompt, estimate := Compose(a, req.ProjectPath, req.InitialCommand)
	m.logger.Info("agent activated", zap.String("agent", a.Name), zap.Int("tokens", estimate))

	act := &Activation{
		Agent:            a,
		Dependencies:     bundle,
		ActivationPrompt: prompt,
		TokenEstimate:    estimate,
		TokenUsage:       tokens.Summarize(usageParts(prompt, bundle)),
		Warnings:         warnings,
	}
	m.record(ctx, req, act)
	return act, nil
}

func (m *Manager) agent(ctx context.Context, name string) (*content.Agent, error) {
	a, err := m.store.Agent(ctx, name)
	if content.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return a, err
}

func (m *Manager) record(ctx context.Context, req Request, act *Activation) {
	if m.recorder == nil {
		return
	}
	id, err := m.recorder.Record(ctx, ledger.Entry{
		Agent:          act.Agent.Name,
		ProjectPath:    req.ProjectPath,
		InitialCommand: req.InitialCommand,
		TokenEstimate:  act.TokenEstimate,
		Tasks:          len(act.Dependencies.Tasks),
		Templates:      len(act.Dependencies.Templates),
		Checklists:     len(act.Dependencies.Checklists),
		Data:           len(act.Dependencies.Data),
		Warnings:       len(act.Warnings),
	})
	if err != nil {
		m.logger.Warn("failed to record activation", zap.String("agent", act.Agent.Name), zap.Error(err))
		return
	}
	m.logger.Debug("activation recorded", zap.String("id", id))
}

// usageParts names each piece of an activation by what it would cost to
// hand to a model: the prompt verbatim, records as YAML, data as text.
func usageParts(prompt string, b *Bundle) map[string]string {
	parts := map[string]string{"prompt": prompt}
	for _, t := range b.Tasks {
		parts["task/"+t.Name] = asYAML(t)
	}
	for _, t := range b.Templates {
		parts["template/"+t.Name] = asYAML(t)
	}
	for _, c := range b.Checklists {
		parts["checklist/"+c.Name] = asYAML(c)
	}
	for k, v := range b.Data {
		if s, ok := v.(string); ok {
			parts["data/"+k] = s
		} else {
			parts["data/"+k] = asYAML(v)
		}
	}
	return parts
}

func asYAML(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}
