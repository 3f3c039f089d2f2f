package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	frontMatterPattern = regexp.MustCompile(`(?s)^---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n(.*))?$`)
	yamlBlockPattern   = regexp.MustCompile("(?is)```ya?ml[ \\t]*\\r?\\n(.*?)\\r?\\n```")
)

// SplitFrontMatter separates a leading `---` delimited YAML block from the
// Markdown body. ok is false when the text has no front matter, in which
// case body is the whole text.
func SplitFrontMatter(text string) (front, body string, ok bool) {
	m := frontMatterPattern.FindStringSubmatch(text)
	if m == nil {
		return "", text, false
	}
	return m[1], m[2], true
}

// ExtractYAMLBlock returns the first fenced ```yaml block in a Markdown
// document, trimmed. ok is false when there is none.
func ExtractYAMLBlock(text string) (string, bool) {
	m := yamlBlockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// structuredPart picks the YAML payload of a Markdown definition:
// front matter first, then the first fenced yaml block.
func structuredPart(kind Kind, path, text string) (string, error) {
	if front, _, ok := SplitFrontMatter(text); ok {
		return front, nil
	}
	if block, ok := ExtractYAMLBlock(text); ok {
		return block, nil
	}
	return "", &ParseError{Kind: kind, Path: path, Err: errors.New("no YAML data found")}
}

// decodeYAML unmarshals text into a fresh T, wrapping failures as ParseError.
func decodeYAML[T any](kind Kind, path, text string) (*T, error) {
	var out T
	if err := yaml.Unmarshal([]byte(text), &out); err != nil {
		return nil, &ParseError{Kind: kind, Path: path, Err: err}
	}
	return &out, nil
}

// stem returns the file name without directory and extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseAgent decodes an agent definition from a Markdown file's text and
// applies defaults. Name and role are mandatory.
func ParseAgent(path, text string) (*Agent, error) {
	raw, err := structuredPart(KindAgent, path, text)
	if err != nil {
		return nil, err
	}
	a, err := decodeYAML[Agent](KindAgent, path, raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Role) == "" {
		return nil, &ParseError{Kind: KindAgent, Path: path, Err: errors.New("agent must have name and role defined")}
	}
	for i, d := range a.Dependencies {
		if !ValidDependencyKind(d.Type) {
			return nil, &ParseError{Kind: KindAgent, Path: path, Err: fmt.Errorf("dependency %q has unknown type %q", d.Name, d.Type)}
		}
		if strings.TrimSpace(d.Name) == "" {
			return nil, &ParseError{Kind: KindAgent, Path: path, Err: fmt.Errorf("dependency #%d has no name", i+1)}
		}
	}

	if a.DisplayName == "" {
		a.DisplayName = a.Name
	}
	if a.PrimaryDomain == "" {
		a.PrimaryDomain = "general"
	}
	if a.Responsibilities == nil {
		a.Responsibilities = []string{}
	}
	if a.ActivationInstructions == nil {
		a.ActivationInstructions = []string{}
	}
	if a.Commands == nil {
		a.Commands = []Command{}
	}
	if a.Dependencies == nil {
		a.Dependencies = []Dependency{}
	}
	return a, nil
}

// ParseTask decodes a task definition from a Markdown file's text.
func ParseTask(path, text string) (*Task, error) {
	raw, err := structuredPart(KindTask, path, text)
	if err != nil {
		return nil, err
	}
	t, err := decodeYAML[Task](KindTask, path, raw)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = stem(path)
	}
	if t.Agents == nil {
		t.Agents = []string{}
	}
	return t, nil
}

// ParseChecklist decodes a checklist definition from a Markdown file's text.
func ParseChecklist(path, text string) (*Checklist, error) {
	raw, err := structuredPart(KindChecklist, path, text)
	if err != nil {
		return nil, err
	}
	c, err := decodeYAML[Checklist](KindChecklist, path, raw)
	if err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = stem(path)
	}
	return c, nil
}

// ParseTemplate decodes a template definition from a YAML file's text.
func ParseTemplate(path, text string) (*Template, error) {
	t, err := decodeYAML[Template](KindTemplate, path, text)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = stem(path)
	}
	return t, nil
}

// ParseWorkflow decodes a workflow definition from a YAML file's text.
func ParseWorkflow(path, text string) (*Workflow, error) {
	w, err := decodeYAML[Workflow](KindWorkflow, path, text)
	if err != nil {
		return nil, err
	}
	if w.Name == "" {
		w.Name = stem(path)
	}
	return w, nil
}

// ParseTeam decodes an agent team from a YAML file's text.
func ParseTeam(path, text string) (*Team, error) {
	t, err := decodeYAML[Team](KindTeam, path, text)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = stem(path)
	}
	if t.Agents == nil {
		t.Agents = []string{}
	}
	return t, nil
}

// ParsePack decodes expansion pack metadata from a YAML file's text.
func ParsePack(path, text string) (*ExpansionPack, error) {
	return decodeYAML[ExpansionPack](KindPack, path, text)
}
