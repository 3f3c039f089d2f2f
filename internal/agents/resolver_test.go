package agents

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/HendryAvila/bmad-mcp/internal/content"
)

// --- Fake source ---

// fakeSource serves entities from maps and logs every fetch in order.
type fakeSource struct {
	tasks      map[string]*content.Task
	templates  map[string]*content.Template
	checklists map[string]*content.Checklist
	workflows  map[string]*content.Workflow
	data       map[string]string
	agents     map[string]*content.Agent

	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tasks:      map[string]*content.Task{},
		templates:  map[string]*content.Template{},
		checklists: map[string]*content.Checklist{},
		workflows:  map[string]*content.Workflow{},
		data:       map[string]string{},
		agents:     map[string]*content.Agent{},
	}
}

func fetch[T any](f *fakeSource, kind content.Kind, m map[string]T, name string) (T, error) {
	f.calls = append(f.calls, string(kind)+":"+name)
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q %w", kind, name, content.ErrNotFound)
	}
	return v, nil
}

func (f *fakeSource) Task(_ context.Context, name string) (*content.Task, error) {
	return fetch(f, content.KindTask, f.tasks, name)
}

func (f *fakeSource) Template(_ context.Context, name string) (*content.Template, error) {
	return fetch(f, content.KindTemplate, f.templates, name)
}

func (f *fakeSource) Checklist(_ context.Context, name string) (*content.Checklist, error) {
	return fetch(f, content.KindChecklist, f.checklists, name)
}

func (f *fakeSource) Workflow(_ context.Context, name string) (*content.Workflow, error) {
	return fetch(f, content.KindWorkflow, f.workflows, name)
}

func (f *fakeSource) ReadData(_ context.Context, name string) (string, error) {
	return fetch(f, content.KindData, f.data, name)
}

func (f *fakeSource) Agent(_ context.Context, name string) (*content.Agent, error) {
	return fetch(f, content.KindAgent, f.agents, name)
}

func (f *fakeSource) Agents(_ context.Context, _ bool) ([]*content.Agent, error) {
	out := []*content.Agent{}
	for _, a := range f.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func dep(kind content.Kind, name string, required bool) content.Dependency {
	return content.Dependency{Type: kind, Name: name, Required: required}
}

// --- Resolve ---

func TestResolve_EmptyDependencies(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, nil)

	b, warnings, err := r.Resolve(context.Background(), &content.Agent{Name: "solo", Role: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Tasks)+len(b.Templates)+len(b.Checklists)+len(b.Data) != 0 {
		t.Errorf("expected empty bundle, got %+v", b)
	}
	if b.Tasks == nil || b.Templates == nil || b.Checklists == nil || b.Data == nil {
		t.Error("bundle collections must be non-nil")
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(src.calls) != 0 {
		t.Errorf("store was touched: %v", src.calls)
	}
}

func TestResolve_AllKinds(t *testing.T) {
	src := newFakeSource()
	src.tasks["create-doc"] = &content.Task{Name: "create-doc"}
	src.templates["prd-tmpl"] = &content.Template{Name: "prd-tmpl"}
	src.checklists["pm-checklist"] = &content.Checklist{Name: "pm-checklist"}
	src.data["technical-preferences"] = "Prefer Go."
	src.workflows["greenfield"] = &content.Workflow{Name: "greenfield"}

	a := &content.Agent{Name: "pm", Role: "Product Manager", Dependencies: []content.Dependency{
		dep(content.KindTask, "create-doc", true),
		dep(content.KindTemplate, "prd-tmpl", true),
		dep(content.KindChecklist, "pm-checklist", false),
		dep(content.KindData, "technical-preferences", false),
		dep(content.KindWorkflow, "greenfield", false),
	}}

	b, _, err := NewResolver(src, nil).Resolve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Tasks) != 1 || len(b.Templates) != 1 || len(b.Checklists) != 1 {
		t.Errorf("bundle = %+v", b)
	}
	if b.Data["technical-preferences"] != "Prefer Go." {
		t.Errorf("data = %v", b.Data)
	}
	if wf, ok := b.Data[WorkflowKey("greenfield")].(*content.Workflow); !ok || wf.Name != "greenfield" {
		t.Errorf("workflow entry = %#v", b.Data[WorkflowKey("greenfield")])
	}
}

func TestResolve_RequiredMissingAborts(t *testing.T) {
	for pos := 0; pos < 3; pos++ {
		t.Run(fmt.Sprintf("position %d", pos), func(t *testing.T) {
			src := newFakeSource()
			src.tasks["a"] = &content.Task{Name: "a"}
			src.tasks["b"] = &content.Task{Name: "b"}

			deps := []content.Dependency{dep(content.KindTask, "a", false), dep(content.KindTask, "b", false)}
			missing := dep(content.KindTemplate, "ghost", true)
			deps = append(deps[:pos], append([]content.Dependency{missing}, deps[pos:]...)...)

			b, _, err := NewResolver(src, nil).Resolve(context.Background(), &content.Agent{Name: "x", Dependencies: deps})
			if b != nil {
				t.Error("no bundle may be returned on a required miss")
			}
			var mde *MissingDependencyError
			if !errors.As(err, &mde) {
				t.Fatalf("expected MissingDependencyError, got %v", err)
			}
			if mde.Name != "ghost" || mde.Kind != content.KindTemplate {
				t.Errorf("error names %s %s", mde.Kind, mde.Name)
			}
			if !errors.Is(err, ErrMissingDependency) || !errors.Is(err, content.ErrNotFound) {
				t.Error("error should match both ErrMissingDependency and the cause")
			}
			if err.Error() != "Required dependency not found: ghost" {
				t.Errorf("message = %q", err.Error())
			}
			if got := len(src.calls); got != pos+1 {
				t.Errorf("resolution should stop at the miss, fetched %v", src.calls)
			}
		})
	}
}

func TestResolve_OptionalMissingContinues(t *testing.T) {
	src := newFakeSource()
	src.tasks["after"] = &content.Task{Name: "after"}

	a := &content.Agent{Name: "x", Dependencies: []content.Dependency{
		dep(content.KindTask, "ghost", false),
		dep(content.KindData, "no-such-data", false),
		dep(content.KindTask, "after", true),
	}}

	b, warnings, err := NewResolver(src, nil).Resolve(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Tasks) != 1 || b.Tasks[0].Name != "after" {
		t.Errorf("tasks = %+v", b.Tasks)
	}
	if _, ok := b.Data["no-such-data"]; ok {
		t.Error("missing data must be omitted")
	}
	want := []string{"Optional dependency not found: task ghost", "Optional dependency not found: data no-such-data"}
	if !reflect.DeepEqual(warnings, want) {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestResolve_DuplicatesFetchedTwice(t *testing.T) {
	src := newFakeSource()
	src.tasks["t"] = &content.Task{Name: "t"}

	a := &content.Agent{Name: "x", Dependencies: []content.Dependency{
		dep(content.KindTask, "t", true),
		dep(content.KindTask, "t", true),
	}}
	b, _, err := NewResolver(src, nil).Resolve(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Tasks) != 2 || len(src.calls) != 2 {
		t.Errorf("tasks=%d calls=%v", len(b.Tasks), src.calls)
	}
}

func TestResolve_CanceledContext(t *testing.T) {
	src := newFakeSource()
	src.tasks["t"] = &content.Task{Name: "t"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewResolver(src, nil).Resolve(ctx, &content.Agent{Name: "x", Dependencies: []content.Dependency{dep(content.KindTask, "t", false)}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestResolve_DeclarationOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := newFakeSource()
		kinds := []content.Kind{content.KindTask, content.KindTemplate, content.KindChecklist, content.KindData, content.KindWorkflow}
		n := rapid.IntRange(0, 12).Draw(rt, "n")

		var deps []content.Dependency
		var want []string
		for i := 0; i < n; i++ {
			k := rapid.SampledFrom(kinds).Draw(rt, fmt.Sprintf("kind%d", i))
			name := fmt.Sprintf("d%d", i)
			if rapid.Bool().Draw(rt, fmt.Sprintf("present%d", i)) {
				switch k {
				case content.KindTask:
					src.tasks[name] = &content.Task{Name: name}
				case content.KindTemplate:
					src.templates[name] = &content.Template{Name: name}
				case content.KindChecklist:
					src.checklists[name] = &content.Checklist{Name: name}
				case content.KindData:
					src.data[name] = name
				case content.KindWorkflow:
					src.workflows[name] = &content.Workflow{Name: name}
				}
			}
			deps = append(deps, dep(k, name, false))
			want = append(want, string(k)+":"+name)
		}

		if _, _, err := NewResolver(src, nil).Resolve(context.Background(), &content.Agent{Name: "x", Dependencies: deps}); err != nil {
			rt.Fatalf("optional-only resolution failed: %v", err)
		}
		if !reflect.DeepEqual(src.calls, want) && !(len(src.calls) == 0 && len(want) == 0) {
			rt.Fatalf("fetch order %v, want %v", src.calls, want)
		}
	})
}
