package tools

import (
	"strings"
	"testing"

	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/tokens"
)

// --- Tasks ---

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpListTasks)

	var all []TaskSummary
	decodeData(t, call(t, tool, nil), &all)
	if len(all) != 2 {
		t.Fatalf("tasks = %+v", all)
	}

	var mine []TaskSummary
	decodeData(t, call(t, tool, map[string]interface{}{"agentFilter": "dev"}), &mine)
	if len(mine) != 1 || mine[0].Name != "implement-story" || mine[0].StepCount != 1 {
		t.Errorf("dev tasks = %+v", mine)
	}
}

func TestGetTask(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpGetTask)

	var task content.Task
	decodeData(t, call(t, tool, map[string]interface{}{"taskName": "implement-story"}), &task)
	if task.Description != "Implement a story" || len(task.Steps) != 1 {
		t.Errorf("task = %+v", task)
	}

	callFail(t, tool, map[string]interface{}{"taskName": "nope"}, CodeNotFound)
	callFail(t, tool, map[string]interface{}{"taskName": "../agents/dev"}, CodeNotFound)
	callFail(t, tool, nil, CodeInvalidInput)
}

// --- Templates ---

func TestListTemplates(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpListTemplates)

	var all []TemplateSummary
	decodeData(t, call(t, tool, map[string]interface{}{"category": "all"}), &all)
	if len(all) != 2 {
		t.Fatalf("templates = %+v", all)
	}

	var prd []TemplateSummary
	decodeData(t, call(t, tool, map[string]interface{}{"category": "PRD"}), &prd)
	if len(prd) != 1 {
		t.Fatalf("prd templates = %+v", prd)
	}
	if prd[0].Sections != 2 || len(prd[0].Variables) != 1 || prd[0].Variables[0] != "project_name" {
		t.Errorf("summary = %+v", prd[0])
	}
}

func TestGetTemplate(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpGetTemplate)

	var tpl content.Template
	decodeData(t, call(t, tool, map[string]interface{}{"templateName": "prd-tmpl"}), &tpl)
	if tpl.Type != "document-prd" || len(tpl.Sections) != 2 {
		t.Errorf("template = %+v", tpl)
	}
	callFail(t, tool, map[string]interface{}{"templateName": "missing-tmpl"}, CodeNotFound)
}

// --- Workflows ---

func TestListWorkflows(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpListWorkflows)

	var all []WorkflowSummary
	decodeData(t, call(t, tool, nil), &all)
	if len(all) != 2 {
		t.Fatalf("workflows = %+v", all)
	}

	var green []WorkflowSummary
	decodeData(t, call(t, tool, map[string]interface{}{"projectType": "greenfield"}), &green)
	if len(green) != 1 || green[0].Name != "greenfield-fullstack" || green[0].PhaseCount != 2 {
		t.Errorf("greenfield = %+v", green)
	}

	callFail(t, tool, map[string]interface{}{"projectType": "bluefield"}, CodeInvalidInput)
}

func TestGetWorkflow_AgentDetails(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpGetWorkflow)

	var plain struct {
		Phases []map[string]any `json:"phases"`
	}
	decodeData(t, call(t, tool, map[string]interface{}{"workflowName": "greenfield-fullstack"}), &plain)
	if _, ok := plain.Phases[0]["agentDetails"]; ok {
		t.Error("agentDetails present without includeAgentDetails")
	}

	var detailed struct {
		Name   string `json:"name"`
		Type   string `json:"type"`
		Phases []struct {
			Name         string `json:"name"`
			Agent        string `json:"agent"`
			AgentDetails *struct {
				Name     string `json:"name"`
				Category string `json:"category"`
			} `json:"agentDetails"`
		} `json:"phases"`
	}
	decodeData(t, call(t, tool, map[string]interface{}{
		"workflowName":        "greenfield-fullstack",
		"includeAgentDetails": true,
	}), &detailed)

	if detailed.Name != "greenfield-fullstack" || detailed.Type != "greenfield" {
		t.Errorf("workflow fields lost: %+v", detailed)
	}
	if len(detailed.Phases) != 2 {
		t.Fatalf("phases = %+v", detailed.Phases)
	}
	if d := detailed.Phases[0].AgentDetails; d == nil || d.Name != "pm" || d.Category != "planning" {
		t.Errorf("planning phase details = %+v", d)
	}
	if detailed.Phases[1].AgentDetails != nil {
		t.Error("unknown agent should have no details")
	}
}

// --- Knowledge base, teams, packs ---

func TestGetKnowledgeBase(t *testing.T) {
	f := newFixture(t)
	tool := f.tool(t, OpGetKnowledgeBase)

	var kb string
	decodeData(t, call(t, tool, nil), &kb)
	if !strings.HasPrefix(kb, "# BMAD Knowledge Base") {
		t.Errorf("kb = %q", kb)
	}

	env := call(t, tool, map[string]interface{}{"max_tokens": float64(10)})
	var short string
	decodeData(t, env, &short)
	if !strings.HasSuffix(short, tokens.DefaultTruncationSuffix) || tokens.Estimate(short) > 10 {
		t.Errorf("truncated kb = %q (%d tokens)", short, tokens.Estimate(short))
	}
	if len(env.Metadata.Warnings) != 1 {
		t.Errorf("warnings = %v", env.Metadata.Warnings)
	}

	callFail(t, tool, map[string]interface{}{"max_tokens": float64(-1)}, CodeInvalidInput)
}

func TestListTeams(t *testing.T) {
	f := newFixture(t)
	var teams []TeamSummary
	decodeData(t, call(t, f.tool(t, OpListTeams), nil), &teams)
	if len(teams) != 1 || teams[0].AgentCount != 2 || teams[0].Agents[1] != "dev" {
		t.Errorf("teams = %+v", teams)
	}
}

func TestListExpansionPacks(t *testing.T) {
	f := newFixture(t)
	var packs []content.ExpansionPack
	decodeData(t, call(t, f.tool(t, OpListExpansionPacks), nil), &packs)
	if len(packs) != 2 {
		t.Fatalf("packs = %+v", packs)
	}
	if packs[0].Name != "game-dev" || packs[0].Version != "2.1.0" {
		t.Errorf("metadata pack = %+v", packs[0])
	}
	if packs[1].Name != "infra" || packs[1].Version != "1.0.0" || packs[1].Category != "general" {
		t.Errorf("default pack = %+v", packs[1])
	}
}

// --- Cache ---

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	call(t, f.tool(t, OpGetAgent), map[string]interface{}{"agentName": "pm"})
	call(t, f.tool(t, OpGetTask), map[string]interface{}{"taskName": "create-doc"})

	var got struct {
		Cleared map[string]int `json:"cleared"`
	}
	decodeData(t, call(t, f.tool(t, OpClearCache), nil), &got)
	if got.Cleared["agent"] != 1 || got.Cleared["task"] != 1 {
		t.Errorf("cleared = %v", got.Cleared)
	}
	for kind, n := range f.store.CacheStats() {
		if n != 0 {
			t.Errorf("%s cache still holds %d entries", kind, n)
		}
	}
}
