package agents

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/tokens"
)

// Compose renders the activation prompt for a and estimates its token cost.
// Sections appear in a fixed order and each populated section ends with
// one blank line. projectPath and initialCommand are optional.
func Compose(a *content.Agent, projectPath, initialCommand string) (string, int) {
	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }

	add("# "+a.Label(), "**Role:** "+a.Role, "")

	if a.Persona != "" {
		add("## Persona", a.Persona, "")
	}

	if len(a.Responsibilities) > 0 {
		add("## Responsibilities")
		for _, r := range a.Responsibilities {
			add("- " + r)
		}
		add("")
	}

	if len(a.ActivationInstructions) > 0 {
		add("## Activation Instructions")
		for i, inst := range a.ActivationInstructions {
			add(fmt.Sprintf("%d. %s", i+1, inst))
		}
		add("")
	}

	if len(a.Commands) > 0 {
		add("## Available Commands")
		for _, c := range a.Commands {
			add("### "+c.Name, c.Description, "**Syntax:** `"+c.Syntax+"`")
			if c.Example != "" {
				add("**Example:** `" + c.Example + "`")
			}
			add("")
		}
	}

	if projectPath != "" {
		add("## Project Context", "Working in project: "+projectPath, "")
	}

	if initialCommand != "" {
		add("## Initial Task", "Execute command: "+initialCommand, "")
	}

	if len(a.Dependencies) > 0 {
		add("## Dependencies Available")
		for _, g := range []struct {
			label string
			kind  content.Kind
		}{
			{"Tasks", content.KindTask},
			{"Templates", content.KindTemplate},
			{"Checklists", content.KindChecklist},
		} {
			if names := a.DependencyNames(g.kind); len(names) > 0 {
				add("**" + g.label + ":** " + strings.Join(names, ", "))
			}
		}
		add("")
	}

	if len(a.WorksWith) > 0 {
		add("## Collaborates With")
		for _, w := range a.WorksWith {
			add("- " + w)
		}
		add("")
	}

	text := strings.Join(lines, "\n")
	return text, tokens.Estimate(text)
}
