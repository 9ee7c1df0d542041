package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/chemnet/internal/store"
)

// projectColumns is the column list used for SELECT statements on annotation_projects.
const projectColumns = `key, project_name, source_graph, annotation_count, saved_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryUpsertProject(ctx context.Context, db executor, p *store.ArchivedProject) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO annotation_projects (
			key, project_name, source_graph, annotation_count, payload, saved_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			project_name = EXCLUDED.project_name,
			source_graph = EXCLUDED.source_graph,
			annotation_count = EXCLUDED.annotation_count,
			payload = EXCLUDED.payload,
			saved_at = EXCLUDED.saved_at`,
		p.Key,
		p.Project,
		p.SourceGraph,
		p.AnnotationCount,
		p.Payload,
		p.SavedAt,
	)
	return err
}

func queryGetProject(ctx context.Context, db executor, key string) (*store.ArchivedProject, error) {
	row := db.QueryRowContext(ctx, `SELECT `+projectColumns+`, payload FROM annotation_projects WHERE key = $1`, key)
	return scanProject(row, true)
}

func queryListProjects(ctx context.Context, db executor) ([]*store.ArchivedProject, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+projectColumns+` FROM annotation_projects ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("list archived projects: %w", err)
	}
	defer rows.Close()

	var out []*store.ArchivedProject
	for rows.Next() {
		p, err := scanProject(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan archived project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func queryDeleteProject(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM annotation_projects WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
