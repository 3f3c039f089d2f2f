package ledger

import (
	"database/sql"
	"time"
)

// DB exposes the internal *sql.DB for test helpers in ledger_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetClock replaces the store's time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
