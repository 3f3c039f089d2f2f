package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/ledger"
)

// --- Helpers ---

// isErrorResult checks if a CallToolResult represents an error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// envelope is Response with Data left raw for per-test decoding.
type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Metadata Metadata        `json:"metadata"`
}

func decode(t *testing.T, result *mcp.CallToolResult) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal([]byte(getResultText(result)), &env); err != nil {
		t.Fatalf("result is not an envelope: %v\n%s", err, getResultText(result))
	}
	if env.Metadata.Timestamp == "" {
		t.Error("metadata.timestamp is empty")
	}
	return env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

// call runs a tool and requires a successful envelope.
func call(t *testing.T, tool Tool, args map[string]interface{}) envelope {
	t.Helper()
	result, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected tool error: %s", getResultText(result))
	}
	env := decode(t, result)
	if !env.Success {
		t.Fatalf("success = false: %s", getResultText(result))
	}
	return env
}

// callFail runs a tool and requires a failed envelope with code.
func callFail(t *testing.T, tool Tool, args map[string]interface{}, code Code) envelope {
	t.Helper()
	result, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatalf("expected tool error, got: %s", getResultText(result))
	}
	env := decode(t, result)
	if env.Success || env.Error == nil {
		t.Fatalf("expected failed envelope: %s", getResultText(result))
	}
	if env.Error.Code != code {
		t.Errorf("code = %s, want %s (message %q)", env.Error.Code, code, env.Error.Message)
	}
	return env
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func writeContent(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// --- Fixture ---

var coreFiles = map[string]string{
	"agents/dev.md": `---
name: dev
displayName: James
role: Full Stack Developer
dependencies:
  - type: task
    name: implement-story
    required: true
  - type: checklist
    name: story-dod
    required: false
---
`,
	"agents/pm.md": "---\nname: pm\ndisplayName: John\nrole: Product Manager\n---\n",
	"agents/broken-deps.md": `---
name: broken-deps
role: Release Engineer
dependencies:
  - type: task
    name: ship-it
    required: true
---
`,
	"tasks/implement-story.md": "---\nname: implement-story\ndescription: Implement a story\nagents: [dev]\nsteps:\n  - order: 1\n    description: Read the story\n    action: read\n---\n",
	"tasks/create-doc.md":      "---\nname: create-doc\ndescription: Create a document\nagents: [pm]\n---\n",
	"templates/prd-tmpl.yaml": `name: prd-tmpl
description: Product requirements
type: document-prd
sections:
  - name: goals
    title: Goals
    required: true
  - name: requirements
    title: Requirements
    required: true
variables:
  - name: project_name
    type: string
    description: Project name
    required: true
`,
	"templates/story-tmpl.yaml": "name: story-tmpl\ndescription: User story\ntype: story\nsections: []\n",
	"workflows/greenfield-fullstack.yaml": `name: greenfield-fullstack
description: New full stack app
type: greenfield
phases:
  - name: planning
    description: Write the PRD
    agent: pm
    tasks: [create-doc]
    deliverables: [prd.md]
  - name: review
    description: Nobody owns this
    agent: ghost
    tasks: []
    deliverables: []
`,
	"workflows/brownfield-service.yaml": "name: brownfield-service\ndescription: Existing service\ntype: brownfield\nphases: []\n",
	"agent-teams/team-fullstack.yaml":   "name: team-fullstack\ndescription: Full stack team\nagents: [pm, dev]\n",
	"data/bmad-kb.md":                   "# BMAD Knowledge Base\n\nBMAD is an agile method driven by agent personas. Each persona owns one phase of delivery.\n",
}

type fixture struct {
	env    *Env
	store  *content.Store
	ledger *ledger.Store
}

// newFixture builds a content root with the core files plus one
// expansion pack, a real ledger, and an Env over them.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "bmad-core")
	writeContent(t, root, coreFiles)
	writeContent(t, filepath.Join(base, "expansion-packs"), map[string]string{
		"game-dev/pack-metadata.yaml":      "name: game-dev\nversion: 2.1.0\ndescription: Game development\ncategory: games\n",
		"game-dev/agents/game-designer.md": "---\nname: game-designer\nrole: Game Designer\n---\n",
		"infra/package.json":               "{}",
	})

	led, err := ledger.New(ledger.Config{DataDir: t.TempDir(), DefaultLimit: 20})
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	t.Cleanup(func() { _ = led.Close() })

	store := content.NewStore(root, "", nil, nil)
	return &fixture{
		env:    &Env{Catalog: store, Agents: agents.NewManager(store, led, nil), History: led},
		store:  store,
		ledger: led,
	}
}

func (f *fixture) tool(t *testing.T, op Operation) Tool {
	t.Helper()
	tool, err := New(op, f.env)
	if err != nil {
		t.Fatalf("New(%s): %v", op, err)
	}
	return tool
}

// --- Operation set ---

func TestNew_EveryOperation(t *testing.T) {
	f := newFixture(t)
	for _, op := range Operations() {
		tool := f.tool(t, op)
		if got := tool.Definition().Name; got != string(op) {
			t.Errorf("New(%s).Definition().Name = %q", op, got)
		}
	}
	if _, err := New("bmad_shard_document", f.env); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestAll_SkipsHistoryWithoutLedger(t *testing.T) {
	f := newFixture(t)

	all, err := All(f.env)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(Operations()) {
		t.Errorf("All with ledger = %d tools, want %d", len(all), len(Operations()))
	}

	f.env.History = nil
	all, err = All(f.env)
	if err != nil {
		t.Fatal(err)
	}
	for _, tool := range all {
		if tool.Definition().Name == string(OpActivationHistory) {
			t.Error("history tool registered without a ledger")
		}
	}
	if len(all) != len(Operations())-1 {
		t.Errorf("All without ledger = %d tools, want %d", len(all), len(Operations())-1)
	}
}

func TestDefinitions_RequiredArguments(t *testing.T) {
	f := newFixture(t)
	tests := map[Operation]string{
		OpGetAgent:      "agentName",
		OpActivateAgent: "agentName",
		OpGetTask:       "taskName",
		OpGetTemplate:   "templateName",
		OpGetWorkflow:   "workflowName",
	}
	for op, want := range tests {
		required := f.tool(t, op).Definition().InputSchema.Required
		if len(required) != 1 || required[0] != want {
			t.Errorf("%s required = %v, want [%s]", op, required, want)
		}
	}
}
