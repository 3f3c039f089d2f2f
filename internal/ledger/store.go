// Package ledger keeps a durable history of agent activations in SQLite.
//
// Each activation is one row keyed by a ULID, so rows sort by creation
// time without a separate index.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Types ───────────────────────────────────────────────────────────────────

// Entry is one recorded activation.
type Entry struct {
	ID             string    `json:"id"`
	Agent          string    `json:"agent"`
	ProjectPath    string    `json:"projectPath,omitempty"`
	InitialCommand string    `json:"initialCommand,omitempty"`
	TokenEstimate  int       `json:"tokenEstimate"`
	Tasks          int       `json:"tasks"`
	Templates      int       `json:"templates"`
	Checklists     int       `json:"checklists"`
	Data           int       `json:"data"`
	Warnings       int       `json:"warnings"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AgentStats aggregates the activations of one agent.
type AgentStats struct {
	Agent         string  `json:"agent"`
	Activations   int     `json:"activations"`
	AverageTokens float64 `json:"averageTokens"`
}

// Stats aggregates the whole ledger.
type Stats struct {
	TotalActivations int          `json:"totalActivations"`
	Agents           []AgentStats `json:"agents"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// DBFile is the ledger database file name inside Config.DataDir.
const DBFile = "ledger.db"

// Config holds ledger configuration.
type Config struct {
	DataDir      string
	DefaultLimit int
}

// DefaultConfig stores the ledger under ~/.bmad-mcp.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".bmad-mcp"),
		DefaultLimit: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the activation ledger backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
	now func() time.Time
}

// New opens (creating if needed) the ledger database and migrates it.
func New(cfg Config) (*Store, error) {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("ledger: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS activations (
			id              TEXT PRIMARY KEY,
			agent           TEXT    NOT NULL,
			project_path    TEXT    NOT NULL DEFAULT '',
			initial_command TEXT    NOT NULL DEFAULT '',
			token_estimate  INTEGER NOT NULL,
			tasks           INTEGER NOT NULL DEFAULT 0,
			templates       INTEGER NOT NULL DEFAULT 0,
			checklists      INTEGER NOT NULL DEFAULT 0,
			data            INTEGER NOT NULL DEFAULT 0,
			warnings        INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activations_agent ON activations(agent, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Activations ─────────────────────────────────────────────────────────────

// Record stores e and returns its new ID. e.ID and e.CreatedAt are assigned
// here.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	id := ulid.Make().String()
	created := s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activations
			(id, agent, project_path, initial_command, token_estimate,
			 tasks, templates, checklists, data, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Agent, e.ProjectPath, e.InitialCommand, e.TokenEstimate,
		e.Tasks, e.Templates, e.Checklists, e.Data, e.Warnings, created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("ledger: record activation: %w", err)
	}
	return id, nil
}

// Recent returns the newest activations first, optionally for one agent.
// A non-positive limit uses the configured default.
func (s *Store) Recent(ctx context.Context, agent string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	query := `
		SELECT id, agent, project_path, initial_command, token_estimate,
		       tasks, templates, checklists, data, warnings, created_at
		FROM activations
		WHERE 1=1
	`
	args := []any{}
	if agent != "" {
		query += " AND agent = ?"
		args = append(args, agent)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Agent, &e.ProjectPath, &e.InitialCommand, &e.TokenEstimate,
			&e.Tasks, &e.Templates, &e.Checklists, &e.Data, &e.Warnings, &created); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("ledger: bad created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns the total activation count and per-agent aggregates,
// most-activated agents first.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Agents: []AgentStats{}}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activations").Scan(&stats.TotalActivations); err != nil {
		return nil, fmt.Errorf("ledger: count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT agent, COUNT(*), AVG(token_estimate)
		FROM activations
		GROUP BY agent
		ORDER BY COUNT(*) DESC, agent ASC`)
	if err != nil {
		return nil, fmt.Errorf("ledger: per-agent stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var a AgentStats
		if err := rows.Scan(&a.Agent, &a.Activations, &a.AverageTokens); err != nil {
			return nil, err
		}
		stats.Agents = append(stats.Agents, a)
	}
	return stats, rows.Err()
}
