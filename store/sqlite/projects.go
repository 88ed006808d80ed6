package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// PROJECT STORE (ledger.ProjectStore)
// =============================================================================

const projectColumns = `id, name, description, is_active, created_at, updated_at, deleted_at`

func (s *Store) InsertProject(ctx context.Context, p *ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, description, is_active, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name,
		p.Description,
		p.Active,
		p.CreatedAt.Format(time.RFC3339),
		encodeTimePtr(p.UpdatedAt),
		encodeTimePtr(p.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Active, encodeTimePtr(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrProjectNotFound
	}
	return nil
}

func (s *Store) ProjectByID(ctx context.Context, id int64) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects, err := queryProjects(ctx, s.db,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return &projects[0], nil
}

func (s *Store) ProjectByName(ctx context.Context, name string) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects, err := queryProjects(ctx, s.db, `
		SELECT `+projectColumns+` FROM projects
		WHERE name = ? COLLATE NOCASE AND deleted_at IS NULL
		LIMIT 1`, name)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return &projects[0], nil
}

func (s *Store) ListProjects(ctx context.Context, includeDeleted bool) ([]ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`
	return queryProjects(ctx, s.db, query)
}

func (s *Store) SoftDeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrProjectNotFound
	}
	return nil
}

func queryProjects(ctx context.Context, q queryable, query string, args ...any) ([]ledger.Project, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []ledger.Project
	for rows.Next() {
		var (
			p       ledger.Project
			created string
			updated sql.NullString
			deleted sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Active, &created, &updated, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if p.CreatedAt, err = decodeStamp(created); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = decodeStampPtr(updated); err != nil {
			return nil, err
		}
		if p.DeletedAt, err = decodeStampPtr(deleted); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
