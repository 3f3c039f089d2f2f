package agents

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/bmad-mcp/internal/content"
)

// Category is the coarse grouping an agent falls into.
type Category string

const (
	CategoryPlanning      Category = "planning"
	CategoryDevelopment   Category = "development"
	CategoryQuality       Category = "quality"
	CategoryOrchestration Category = "orchestration"
	CategoryGeneral       Category = "general"
	// CategoryAll is a filter wildcard, never a classification result.
	CategoryAll Category = "all"
)

// classificationOrder is the priority in which categories are tried.
var classificationOrder = []Category{
	CategoryPlanning,
	CategoryDevelopment,
	CategoryQuality,
	CategoryOrchestration,
}

var categoryKeywords = map[Category][]string{
	CategoryPlanning:      {"analyst", "pm", "architect", "ux", "po"},
	CategoryDevelopment:   {"dev", "developer", "engineer"},
	CategoryQuality:       {"qa", "quality", "test"},
	CategoryOrchestration: {"orchestrator", "master", "scrum"},
}

// ParseCategory validates a category filter. Empty means all.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryPlanning, CategoryDevelopment, CategoryQuality, CategoryOrchestration, CategoryGeneral:
		return c, nil
	}
	return "", fmt.Errorf("invalid category %q: must be one of: planning, development, quality, orchestration, general, all", s)
}

// Classify returns the first category, in priority order, whose keywords
// appear in the agent's name or role. Agents matching none are general.
func Classify(a *content.Agent) Category {
	for _, c := range classificationOrder {
		if Matches(a, c) {
			return c
		}
	}
	return CategoryGeneral
}

// Matches tests a single category's keyword set against the agent's name
// and role, case-insensitively. CategoryAll matches every agent. General
// matches agents that Classify would leave unclassified.
func Matches(a *content.Agent, c Category) bool {
	switch c {
	case CategoryAll:
		return true
	case CategoryGeneral:
		return Classify(a) == CategoryGeneral
	}

	name := strings.ToLower(a.Name)
	role := strings.ToLower(a.Role)
	for _, kw := range categoryKeywords[c] {
		if strings.Contains(name, kw) || strings.Contains(role, kw) {
			return true
		}
	}
	return false
}
