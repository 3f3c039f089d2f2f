package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

const (
	// KnowledgeBaseFile is the knowledge base document, relative to the data area.
	KnowledgeBaseFile = "bmad-kb.md"

	packManifestFile = "package.json"
	packMetadataFile = "pack-metadata.yaml"
)

// Store reads definitions from a content root and caches parsed records per
// kind. A Store is safe for concurrent use.
type Store struct {
	root      string
	packsRoot string
	fs        FileSystem
	logger    *zap.Logger

	agents     *Cache[*Agent]
	tasks      *Cache[*Task]
	templates  *Cache[*Template]
	workflows  *Cache[*Workflow]
	checklists *Cache[*Checklist]
}

// NewStore creates a Store over root. packsRoot is the expansion pack tree;
// empty means the sibling "expansion-packs" directory of root. A nil fs
// reads the local disk; a nil logger discards output.
func NewStore(root, packsRoot string, fs FileSystem, logger *zap.Logger) *Store {
	if packsRoot == "" {
		packsRoot = DefaultPacksRoot(root)
	}
	if fs == nil {
		fs = OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		root:       root,
		packsRoot:  packsRoot,
		fs:         fs,
		logger:     logger,
		agents:     NewCache[*Agent](),
		tasks:      NewCache[*Task](),
		templates:  NewCache[*Template](),
		workflows:  NewCache[*Workflow](),
		checklists: NewCache[*Checklist](),
	}
}

// DefaultPacksRoot returns the expansion pack tree that sits beside root.
func DefaultPacksRoot(root string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(root)), "expansion-packs")
}

// Root returns the content root.
func (s *Store) Root() string { return s.root }

// PacksRoot returns the expansion pack root.
func (s *Store) PacksRoot() string { return s.packsRoot }

// --- Single-entity lookups ---

// Agent returns the agent named name. The canonical agents/ directory is
// searched first, then every expansion pack. Errors wrap ErrNotFound when
// no definition exists anywhere.
func (s *Store) Agent(ctx context.Context, name string) (*Agent, error) {
	a, err := lookup(ctx, s, KindAgent, s.agents, name, ParseAgent)
	if err == nil || !errors.Is(err, ErrNotFound) || !validName(name) {
		return a, err
	}

	matches, gerr := s.fs.Glob(s.packsRoot, filepath.Join("*", "agents", name+".md"))
	if gerr != nil || len(matches) == 0 {
		s.logger.Debug("agent not found", zap.String("name", name))
		return nil, err
	}
	a, err = readAndParse(s, KindAgent, matches[0], ParseAgent)
	if err != nil {
		return nil, err
	}
	s.agents.Put(name, a)
	return a, nil
}

// Task returns the task named name.
func (s *Store) Task(ctx context.Context, name string) (*Task, error) {
	return lookup(ctx, s, KindTask, s.tasks, name, ParseTask)
}

// Template returns the template named name.
func (s *Store) Template(ctx context.Context, name string) (*Template, error) {
	return lookup(ctx, s, KindTemplate, s.templates, name, ParseTemplate)
}

// Workflow returns the workflow named name.
func (s *Store) Workflow(ctx context.Context, name string) (*Workflow, error) {
	return lookup(ctx, s, KindWorkflow, s.workflows, name, ParseWorkflow)
}

// Checklist returns the checklist named name.
func (s *Store) Checklist(ctx context.Context, name string) (*Checklist, error) {
	return lookup(ctx, s, KindChecklist, s.checklists, name, ParseChecklist)
}

// DataFilePath returns where the data file name lives under the content root.
func (s *Store) DataFilePath(name string) string {
	return s.canonicalPath(KindData, name)
}

// ReadData returns the raw text of data/<name>.md. Data files are not cached.
func (s *Store) ReadData(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validName(name) {
		return "", notFound(KindData, name)
	}
	path := s.DataFilePath(name)
	if !s.fs.Exists(path) {
		s.logger.Debug("data file not found", zap.String("name", name))
		return "", notFound(KindData, name)
	}
	return s.fs.ReadText(path)
}

// KnowledgeBase returns the knowledge base document, or "" when the
// content root has none.
func (s *Store) KnowledgeBase(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, kindLayout[KindData].dir, KnowledgeBaseFile)
	if !s.fs.Exists(path) {
		return "", nil
	}
	return s.fs.ReadText(path)
}

// lookup is the cache-first load shared by every cached kind.
func lookup[T any](ctx context.Context, s *Store, kind Kind, cache *Cache[*T], name string, parse func(path, text string) (*T, error)) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := cache.Get(name); ok {
		return v, nil
	}
	if !validName(name) {
		return nil, notFound(kind, name)
	}

	path := s.canonicalPath(kind, name)
	if !s.fs.Exists(path) {
		if kind != KindAgent {
			s.logger.Debug("definition not found", zap.String("kind", string(kind)), zap.String("name", name))
		}
		return nil, notFound(kind, name)
	}
	v, err := readAndParse(s, kind, path, parse)
	if err != nil {
		return nil, err
	}
	cache.Put(name, v)
	return v, nil
}

// --- Listings ---

// Agents lists every agent in the content root, followed by every agent in
// the expansion packs when includePacks is set. Files that fail to parse
// are skipped.
func (s *Store) Agents(ctx context.Context, includePacks bool) ([]*Agent, error) {
	agents, err := listKind(ctx, s, KindAgent, s.root, kindPattern(KindAgent), ParseAgent)
	if err != nil || !includePacks {
		return agents, err
	}
	packAgents, err := listKind(ctx, s, KindAgent, s.packsRoot, filepath.Join("*", kindPattern(KindAgent)), ParseAgent)
	if err != nil {
		return nil, err
	}
	return append(agents, packAgents...), nil
}

// Tasks lists every task in the content root.
func (s *Store) Tasks(ctx context.Context) ([]*Task, error) {
	return listKind(ctx, s, KindTask, s.root, kindPattern(KindTask), ParseTask)
}

// Templates lists every template in the content root.
func (s *Store) Templates(ctx context.Context) ([]*Template, error) {
	return listKind(ctx, s, KindTemplate, s.root, kindPattern(KindTemplate), ParseTemplate)
}

// Workflows lists every workflow in the content root.
func (s *Store) Workflows(ctx context.Context) ([]*Workflow, error) {
	return listKind(ctx, s, KindWorkflow, s.root, kindPattern(KindWorkflow), ParseWorkflow)
}

// Checklists lists every checklist in the content root.
func (s *Store) Checklists(ctx context.Context) ([]*Checklist, error) {
	return listKind(ctx, s, KindChecklist, s.root, kindPattern(KindChecklist), ParseChecklist)
}

// Teams lists every agent team in the content root.
func (s *Store) Teams(ctx context.Context) ([]*Team, error) {
	return listKind(ctx, s, KindTeam, s.root, kindPattern(KindTeam), ParseTeam)
}

// ExpansionPacks lists the packs under the expansion root. A directory is a
// pack when it holds a package.json or a pack-metadata.yaml; metadata comes
// from the latter, or defaults when absent.
func (s *Store) ExpansionPacks(ctx context.Context) ([]*ExpansionPack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirs := map[string]struct{}{}
	for _, marker := range []string{packManifestFile, packMetadataFile} {
		matches, err := s.fs.Glob(s.packsRoot, filepath.Join("*", marker))
		if err != nil {
			return nil, fmt.Errorf("listing expansion packs: %w", err)
		}
		for _, m := range matches {
			dirs[filepath.Dir(m)] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	packs := make([]*ExpansionPack, 0, len(sorted))
	for _, dir := range sorted {
		name := filepath.Base(dir)
		meta := filepath.Join(dir, packMetadataFile)
		if !s.fs.Exists(meta) {
			packs = append(packs, defaultPack(name))
			continue
		}
		p, err := readAndParse(s, KindPack, meta, ParsePack)
		if err != nil {
			s.logger.Warn("skipping expansion pack", zap.String("path", meta), zap.Error(err))
			continue
		}
		if p.Name == "" {
			p.Name = name
		}
		packs = append(packs, p)
	}
	return packs, nil
}

func defaultPack(name string) *ExpansionPack {
	return &ExpansionPack{
		Name:        name,
		Version:     "1.0.0",
		Description: "BMAD expansion pack: " + name,
		Category:    "general",
	}
}

// listKind parses every file matching pattern under root. Files are parsed
// concurrently; results keep sorted path order. Failures are logged and
// the file is skipped.
func listKind[T any](ctx context.Context, s *Store, kind Kind, root, pattern string, parse func(path, text string) (*T, error)) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths, err := s.fs.Glob(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing %s definitions: %w", kind, err)
	}

	parsed := iter.Map(paths, func(path *string) *T {
		text, err := s.fs.ReadText(*path)
		if err == nil {
			var v *T
			if v, err = parse(*path, text); err == nil {
				return v
			}
		}
		s.logger.Warn("skipping definition", zap.String("kind", string(kind)), zap.String("path", *path), zap.Error(err))
		return nil
	})

	out := make([]*T, 0, len(parsed))
	for _, v := range parsed {
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// --- Cache management ---

// ClearCaches drops every cached record. The next lookup of each entity
// re-reads its file.
func (s *Store) ClearCaches() {
	s.agents.Clear()
	s.tasks.Clear()
	s.templates.Clear()
	s.workflows.Clear()
	s.checklists.Clear()
	s.logger.Info("caches cleared")
}

// CacheStats reports the number of cached records per kind.
func (s *Store) CacheStats() map[Kind]int {
	return map[Kind]int{
		KindAgent:     s.agents.Len(),
		KindTask:      s.tasks.Len(),
		KindTemplate:  s.templates.Len(),
		KindWorkflow:  s.workflows.Len(),
		KindChecklist: s.checklists.Len(),
	}
}

// --- Paths ---

func (s *Store) canonicalPath(kind Kind, name string) string {
	l := kindLayout[kind]
	return filepath.Join(s.root, l.dir, name+l.ext)
}

func kindPattern(kind Kind) string {
	l := kindLayout[kind]
	return filepath.Join(l.dir, "*"+l.ext)
}

// validName rejects identifiers that could escape the kind's directory or
// act as glob patterns.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\*?[]`)
}

// readAndParse reads path and decodes it, logging parse failures.
func readAndParse[T any](s *Store, kind Kind, path string, parse func(path, text string) (*T, error)) (*T, error) {
	text, err := s.fs.ReadText(path)
	if err != nil {
		return nil, err
	}
	v, err := parse(path, text)
	if err != nil {
		s.logger.Error("failed to parse definition", zap.String("kind", string(kind)), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return v, nil
}
