// Package content is the leaf of the BMAD knowledge base: it reads entity
// definitions (agents, tasks, templates, workflows, checklists, teams,
// expansion packs) from a content root and parses them into typed records.
//
// Layout under the content root:
//
//	agents/<name>.md        tasks/<name>.md        checklists/<name>.md
//	templates/<name>.yaml   workflows/<name>.yaml  agent-teams/<name>.yaml
//	data/<name>.md
//
// and a sibling expansion-packs/<pack>/... tree mirroring the same layout.
//
// Records are immutable once parsed. The Store caches them per kind,
// keyed by identifier, until ClearCaches is called.
package content

import "fmt"

// --- Kind enum ---

// Kind identifies an entity family in the content root.
type Kind string

const (
	KindAgent     Kind = "agent"
	KindTask      Kind = "task"
	KindTemplate  Kind = "template"
	KindWorkflow  Kind = "workflow"
	KindChecklist Kind = "checklist"
	KindData      Kind = "data"
	KindTeam      Kind = "team"
	KindPack      Kind = "expansion-pack"
)

// kindLayout maps a kind to its directory and file extension under a root.
var kindLayout = map[Kind]struct {
	dir string
	ext string
}{
	KindAgent:     {"agents", ".md"},
	KindTask:      {"tasks", ".md"},
	KindTemplate:  {"templates", ".yaml"},
	KindWorkflow:  {"workflows", ".yaml"},
	KindChecklist: {"checklists", ".md"},
	KindData:      {"data", ".md"},
	KindTeam:      {"agent-teams", ".yaml"},
}

// --- Agent ---

// Agent is a named persona definition.
// Name and Role are mandatory; everything else defaults to empty.
type Agent struct {
	Name                   string         `yaml:"name" json:"name"`
	DisplayName            string         `yaml:"displayName" json:"displayName"`
	Role                   string         `yaml:"role" json:"role"`
	Persona                string         `yaml:"persona" json:"persona"`
	PrimaryDomain          string         `yaml:"primaryDomain" json:"primaryDomain"`
	Responsibilities       []string       `yaml:"responsibilities" json:"responsibilities"`
	ActivationInstructions []string       `yaml:"activationInstructions" json:"activationInstructions"`
	Commands               []Command      `yaml:"commands" json:"commands"`
	Dependencies           []Dependency   `yaml:"dependencies" json:"dependencies"`
	WorksWith              []string       `yaml:"worksWith,omitempty" json:"worksWith,omitempty"`
	Outputs                []string       `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Metadata               *AgentMetadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Command is an invocable action an agent advertises.
type Command struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description" json:"description"`
	Syntax      string             `yaml:"syntax" json:"syntax"`
	Example     string             `yaml:"example,omitempty" json:"example,omitempty"`
	Parameters  []CommandParameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// CommandParameter describes one argument of a command.
type CommandParameter struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Description string `yaml:"description" json:"description"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
}

// AgentMetadata is optional bookkeeping attached to an agent.
type AgentMetadata struct {
	Version  string   `yaml:"version,omitempty" json:"version,omitempty"`
	Category string   `yaml:"category,omitempty" json:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Dependency is an agent's reference to another named entity needed at
// activation time. It has no identity beyond (owning agent, kind, name).
type Dependency struct {
	Type     Kind   `yaml:"type" json:"type"`
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Required bool   `yaml:"required" json:"required"`
}

// ValidDependencyKind reports whether k may appear in a dependency declaration.
func ValidDependencyKind(k Kind) bool {
	switch k {
	case KindTask, KindTemplate, KindChecklist, KindData, KindWorkflow:
		return true
	}
	return false
}

// DependencyNames returns the names of all declared dependencies of kind k,
// in declaration order.
func (a *Agent) DependencyNames(k Kind) []string {
	var names []string
	for _, d := range a.Dependencies {
		if d.Type == k {
			names = append(names, d.Name)
		}
	}
	return names
}

// Label returns the display name, falling back to the identifier.
func (a *Agent) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// --- Task ---

// Task is a recipe an agent can execute.
type Task struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Agents      []string     `yaml:"agents" json:"agents"`
	Inputs      []TaskInput  `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Steps       []TaskStep   `yaml:"steps" json:"steps"`
	Outputs     []TaskOutput `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Validation  []string     `yaml:"validation,omitempty" json:"validation,omitempty"`
	Examples    []string     `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// TaskInput describes one input a task expects.
type TaskInput struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description"`
	Required    bool   `yaml:"required" json:"required"`
}

// TaskStep is one ordered step of a task.
type TaskStep struct {
	Order       int    `yaml:"order" json:"order"`
	Description string `yaml:"description" json:"description"`
	Action      string `yaml:"action" json:"action"`
	Validation  string `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// TaskOutput describes one artifact a task produces.
type TaskOutput struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description"`
	Location    string `yaml:"location,omitempty" json:"location,omitempty"`
}

// HasAgent reports whether agent is allowed to invoke the task.
func (t *Task) HasAgent(agent string) bool {
	for _, a := range t.Agents {
		if a == agent {
			return true
		}
	}
	return false
}

// --- Template ---

// Template is a document skeleton.
type Template struct {
	Name            string             `yaml:"name" json:"name"`
	Description     string             `yaml:"description" json:"description"`
	Type            string             `yaml:"type" json:"type"`
	Sections        []TemplateSection  `yaml:"sections" json:"sections"`
	Variables       []TemplateVariable `yaml:"variables,omitempty" json:"variables,omitempty"`
	LLMInstructions []string           `yaml:"llmInstructions,omitempty" json:"llmInstructions,omitempty"`
	Validation      []string           `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// TemplateSection is a node in a template's section tree.
type TemplateSection struct {
	Name        string            `yaml:"name" json:"name"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Content     string            `yaml:"content,omitempty" json:"content,omitempty"`
	Subsections []TemplateSection `yaml:"subsections,omitempty" json:"subsections,omitempty"`
	Required    bool              `yaml:"required" json:"required"`
}

// TemplateVariable is a named placeholder a template expects.
type TemplateVariable struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool   `yaml:"required" json:"required"`
}

// VariableNames returns the template's variable names in declared order.
func (t *Template) VariableNames() []string {
	names := make([]string, 0, len(t.Variables))
	for _, v := range t.Variables {
		names = append(names, v.Name)
	}
	return names
}

// --- Workflow ---

// ProjectType is the closed set of workflow project types.
type ProjectType string

const (
	ProjectGreenfield  ProjectType = "greenfield"
	ProjectBrownfield  ProjectType = "brownfield"
	ProjectMaintenance ProjectType = "maintenance"
	ProjectAll         ProjectType = "all"
)

// ParseProjectType validates a project type filter. Empty means "all".
func ParseProjectType(s string) (ProjectType, error) {
	switch ProjectType(s) {
	case "", ProjectAll:
		return ProjectAll, nil
	case ProjectGreenfield, ProjectBrownfield, ProjectMaintenance:
		return ProjectType(s), nil
	}
	return "", fmt.Errorf("invalid project type %q: must be one of: greenfield, brownfield, maintenance, all", s)
}

// Workflow is an ordered sequence of phases for a kind of project.
type Workflow struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Type        ProjectType       `yaml:"type" json:"type"`
	Phases      []WorkflowPhase   `yaml:"phases" json:"phases"`
	Metadata    *WorkflowMetadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// WorkflowPhase is one step of a workflow, owned by a single agent.
type WorkflowPhase struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Agent        string   `yaml:"agent" json:"agent"`
	Tasks        []string `yaml:"tasks" json:"tasks"`
	Deliverables []string `yaml:"deliverables" json:"deliverables"`
	NextPhase    string   `yaml:"nextPhase,omitempty" json:"nextPhase,omitempty"`
	Conditions   []string `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// WorkflowMetadata carries planning hints for a workflow.
type WorkflowMetadata struct {
	EstimatedDuration string   `yaml:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"`
	Complexity        string   `yaml:"complexity,omitempty" json:"complexity,omitempty"`
	Prerequisites     []string `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
}

// --- Checklist ---

// Checklist is a set of validation items owned by an agent.
type Checklist struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Type        string          `yaml:"type" json:"type"`
	Agent       string          `yaml:"agent" json:"agent"`
	Items       []ChecklistItem `yaml:"items" json:"items"`
	Severity    string          `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// ChecklistItem is one check.
type ChecklistItem struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Validation  string `yaml:"validation" json:"validation"`
	AutoFixable bool   `yaml:"autoFixable" json:"autoFixable"`
	Required    bool   `yaml:"required" json:"required"`
}

// --- Team ---

// Team groups agents that collaborate on a workflow.
type Team struct {
	Name          string              `yaml:"name" json:"name"`
	Description   string              `yaml:"description" json:"description"`
	Agents        []string            `yaml:"agents" json:"agents"`
	Workflow      string              `yaml:"workflow,omitempty" json:"workflow,omitempty"`
	Collaboration []TeamCollaboration `yaml:"collaboration,omitempty" json:"collaboration,omitempty"`
}

// TeamCollaboration is a directed hand-off between two team members.
type TeamCollaboration struct {
	From        string `yaml:"from" json:"from"`
	To          string `yaml:"to" json:"to"`
	Via         string `yaml:"via" json:"via"`
	Description string `yaml:"description" json:"description"`
}

// --- Expansion pack ---

// ExpansionPack is the metadata of an independently distributed bundle.
type ExpansionPack struct {
	Name         string   `yaml:"name" json:"name"`
	Version      string   `yaml:"version" json:"version"`
	Description  string   `yaml:"description" json:"description"`
	Category     string   `yaml:"category" json:"category"`
	Agents       []string `yaml:"agents,omitempty" json:"agents,omitempty"`
	Templates    []string `yaml:"templates,omitempty" json:"templates,omitempty"`
	Tasks        []string `yaml:"tasks,omitempty" json:"tasks,omitempty"`
	Workflows    []string `yaml:"workflows,omitempty" json:"workflows,omitempty"`
	Checklists   []string `yaml:"checklists,omitempty" json:"checklists,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Author       string   `yaml:"author,omitempty" json:"author,omitempty"`
	License      string   `yaml:"license,omitempty" json:"license,omitempty"`
}
