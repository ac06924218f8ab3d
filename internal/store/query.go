// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/grantdata/internal/batch"
	"github.com/pdiddy/grantdata/internal/section"
)

// Query selects stored projects.
type Query struct {
	// RunID restricts results to one run.
	RunID string

	// Search is a substring matched against title, summary and partner
	// names. SQLite LIKE folds case for ASCII letters only.
	Search string

	// Limit caps the result count. Zero means no limit.
	Limit int
}

// Project is a stored record with its provenance.
type Project struct {
	ID     int64
	RunID  string
	Source string
	Page   int
	Record section.Record
}

// Projects returns the projects matching q in run and page order, with
// partners in their original order.
func (s *Store) Projects(ctx context.Context, q Query) ([]Project, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT p.id, p.run_id, p.source, p.page, p.`)
	qb.WriteString(strings.Join(fieldColumns[:], ", p."))
	qb.WriteString(`
		FROM projects p JOIN runs r ON r.id = p.run_id
		WHERE 1=1`)

	if q.RunID != "" {
		qb.WriteString(` AND p.run_id = ?`)
		args = append(args, q.RunID)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		qb.WriteString(` AND (p.title LIKE ? ESCAPE '\' OR p.summary LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM partners pp WHERE pp.project_id = p.id AND pp.name LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	qb.WriteString(` ORDER BY r.created_at, p.run_id, p.position`)
	if q.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}

	var projects []Project
	for rows.Next() {
		var p Project
		dest := []any{&p.ID, &p.RunID, &p.Source, &p.Page}
		for i := range p.Record.Values {
			dest = append(dest, &p.Record.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadPartners(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) loadPartners(ctx context.Context, projects []Project) error {
	if len(projects) == 0 {
		return nil
	}
	stmt, err := s.db.PrepareContext(ctx,
		`SELECT name FROM partners WHERE project_id = ? ORDER BY position`)
	if err != nil {
		return fmt.Errorf("preparing partner query: %w", err)
	}
	defer stmt.Close()

	for i := range projects {
		names, err := queryStrings(ctx, stmt, projects[i].ID)
		if err != nil {
			return fmt.Errorf("loading partners of project %d: %w", projects[i].ID, err)
		}
		projects[i].Record.Partners = names
	}
	return nil
}

func queryStrings(ctx context.Context, stmt *sql.Stmt, args ...any) ([]string, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Batch rebuilds a batch from stored projects so it can be exported with
// the same column layout as a fresh extraction.
func Batch(projects []Project) *batch.Batch {
	b := &batch.Batch{}
	for _, p := range projects {
		b.Entries = append(b.Entries, batch.Entry{Source: p.Source, Page: p.Page, Record: p.Record})
	}
	if len(projects) > 0 {
		b.Source = projects[0].Source
	}
	return b
}
