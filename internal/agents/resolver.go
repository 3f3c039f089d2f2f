package agents

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HendryAvila/bmad-mcp/internal/content"
)

// ErrMissingDependency is matched by every MissingDependencyError.
var ErrMissingDependency = errors.New("required dependency not found")

// MissingDependencyError aborts a resolution: a required dependency could
// not be loaded.
type MissingDependencyError struct {
	Kind content.Kind
	Name string
	Err  error
}

func (e *MissingDependencyError) Error() string {
	return "Required dependency not found: " + e.Name
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMissingDependency) match.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// Source is what the resolver fetches dependencies from.
// *content.Store implements it.
type Source interface {
	Task(ctx context.Context, name string) (*content.Task, error)
	Template(ctx context.Context, name string) (*content.Template, error)
	Checklist(ctx context.Context, name string) (*content.Checklist, error)
	Workflow(ctx context.Context, name string) (*content.Workflow, error)
	ReadData(ctx context.Context, name string) (string, error)
}

// Bundle holds the dependencies resolved for one activation. Data maps a
// data file name to its text, and "workflow-<name>" to a *content.Workflow.
type Bundle struct {
	Tasks      []*content.Task      `json:"tasks"`
	Templates  []*content.Template  `json:"templates"`
	Checklists []*content.Checklist `json:"checklists"`
	Data       map[string]any       `json:"data"`
}

func newBundle() *Bundle {
	return &Bundle{
		Tasks:      []*content.Task{},
		Templates:  []*content.Template{},
		Checklists: []*content.Checklist{},
		Data:       map[string]any{},
	}
}

// WorkflowKey is the Bundle.Data key under which a workflow dependency lands.
func WorkflowKey(name string) string { return "workflow-" + name }

// Resolver walks an agent's dependency declarations.
type Resolver struct {
	src    Source
	logger *zap.Logger
}

// NewResolver creates a Resolver over src.
func NewResolver(src Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{src: src, logger: logger}
}

// Resolve loads every declared dependency in declaration order, one at a
// time. The first required dependency that fails to load aborts the walk
// with a *MissingDependencyError and no bundle. Optional failures are
// logged and returned as warnings.
func (r *Resolver) Resolve(ctx context.Context, a *content.Agent) (*Bundle, []string, error) {
	b := newBundle()
	var warnings []string

	for _, dep := range a.Dependencies {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		err := r.fetch(ctx, b, dep)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		if dep.Required {
			r.logger.Warn("required dependency missing",
				zap.String("agent", a.Name), zap.String("type", string(dep.Type)), zap.String("name", dep.Name), zap.Error(err))
			return nil, nil, &MissingDependencyError{Kind: dep.Type, Name: dep.Name, Err: err}
		}
		r.logger.Warn("optional dependency not found",
			zap.String("agent", a.Name), zap.String("type", string(dep.Type)), zap.String("name", dep.Name), zap.Error(err))
		warnings = append(warnings, fmt.Sprintf("Optional dependency not found: %s %s", dep.Type, dep.Name))
	}
	return b, warnings, nil
}

func (r *Resolver) fetch(ctx context.Context, b *Bundle, dep content.Dependency) error {
	switch dep.Type {
	case content.KindTask:
		t, err := r.src.Task(ctx, dep.Name)
		if err != nil {
			return err
		}
		b.Tasks = append(b.Tasks, t)
	case content.KindTemplate:
		t, err := r.src.Template(ctx, dep.Name)
		if err != nil {
			return err
		}
		b.Templates = append(b.Templates, t)
	case content.KindChecklist:
		c, err := r.src.Checklist(ctx, dep.Name)
		if err != nil {
			return err
		}
		b.Checklists = append(b.Checklists, c)
	case content.KindData:
		text, err := r.src.ReadData(ctx, dep.Name)
		if err != nil {
			return err
		}
		b.Data[dep.Name] = text
	case content.KindWorkflow:
		w, err := r.src.Workflow(ctx, dep.Name)
		if err != nil {
			return err
		}
		b.Data[WorkflowKey(dep.Name)] = w
	default:
		return fmt.Errorf("unknown dependency type %q", dep.Type)
	}
	return nil
}
