// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction runs in SQLite so projects from many
// reports can be listed and searched later.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/grantdata/internal/batch"
	"github.com/pdiddy/grantdata/internal/section"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "output/projects.db"

// timeLayout is a fixed-width timestamp so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// fieldColumns names the projects column of each field, in field order.
var fieldColumns = [...]string{
	section.FocusArea:             "focus_area",
	section.Title:                 "title",
	section.Objectives:            "objectives",
	section.Summary:               "summary",
	section.Coordinator:           "coordinator",
	section.OtherPartners:         "other_partners",
	section.BudgetedCost:          "budgeted_cost",
	section.RequestedContribution: "requested_contribution",
}

// Store is a SQLite database of extraction runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema. The parent
// directory is created when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	var cols strings.Builder
	for _, c := range fieldColumns {
		fmt.Fprintf(&cols, ",\n\t\t\t%s TEXT NOT NULL DEFAULT ''", c)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			pages INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			page INTEGER NOT NULL,
			position INTEGER NOT NULL` + cols.String() + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_run_id ON projects(run_id)`,
		`CREATE TABLE IF NOT EXISTS partners (
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (project_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_partners_name ON partners(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run describes one stored extraction.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	Pages     int       `json:"pages" yaml:"pages"`
	Projects  int       `json:"projects" yaml:"projects"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SaveRun stores every entry of b in one transaction under a new run id.
// pages is the page count of the source document.
func (s *Store) SaveRun(ctx context.Context, b *batch.Batch, pages int) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Source:    b.Source,
		Pages:     pages,
		Projects:  len(b.Entries),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, pages, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, run.Pages, run.CreatedAt.Format(timeLayout),
	); err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	projStmt, err := tx.PrepareContext(ctx, insertProjectSQL())
	if err != nil {
		return Run{}, fmt.Errorf("preparing project insert: %w", err)
	}
	defer projStmt.Close()

	partStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO partners (project_id, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing partner insert: %w", err)
	}
	defer partStmt.Close()

	for i, e := range b.Entries {
		args := []any{run.ID, e.Source, e.Page, i}
		for _, v := range e.Record.Values {
			args = append(args, v)
		}
		res, err := projStmt.ExecContext(ctx, args...)
		if err != nil {
			return Run{}, fmt.Errorf("inserting project from page %d: %w", e.Page, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Run{}, fmt.Errorf("reading project id: %w", err)
		}
		for j, name := range e.Record.Partners {
			if _, err := partStmt.ExecContext(ctx, id, j, name); err != nil {
				return Run{}, fmt.Errorf("inserting partner %q: %w", name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

func insertProjectSQL() string {
	cols := append([]string{"run_id", "source", "page", "position"}, fieldColumns[:]...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(`INSERT INTO projects (%s) VALUES (%s)`, strings.Join(cols, ", "), marks)
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.source, r.pages, r.created_at, count(p.id)
		 FROM runs r LEFT JOIN projects p ON p.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &r.Pages, &created, &r.Projects); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
