package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// INCIDENTAL STORE (ledger.IncidentalStore)
// =============================================================================

const incidentalColumns = `id, incidental_date, amount, description, kind, created_at, updated_at, deleted_at`

func (s *Store) InsertIncidental(ctx context.Context, i *ledger.Incidental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO incidentals (incidental_date, amount, description, kind, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		encodeDate(i.Date),
		i.Amount.String(),
		i.Description,
		string(i.Kind),
		i.CreatedAt.Format(time.RFC3339),
		encodeTimePtr(i.UpdatedAt),
		encodeTimePtr(i.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert incidental: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	i.ID = id
	return nil
}

func (s *Store) UpdateIncidental(ctx context.Context, i *ledger.Incidental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE incidentals
		SET incidental_date = ?, amount = ?, description = ?, kind = ?, updated_at = ?
		WHERE id = ?`,
		encodeDate(i.Date), i.Amount.String(), i.Description, string(i.Kind),
		encodeTimePtr(i.UpdatedAt), i.ID)
	if err != nil {
		return fmt.Errorf("failed to update incidental: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrIncidentalNotFound
	}
	return nil
}

func (s *Store) IncidentalByID(ctx context.Context, id int64) (*ledger.Incidental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incidentals, err := queryIncidentals(ctx, s.db,
		`SELECT `+incidentalColumns+` FROM incidentals WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(incidentals) == 0 {
		return nil, nil
	}
	return &incidentals[0], nil
}

func (s *Store) IncidentalsInRange(ctx context.Context, from, to ledger.Date) ([]ledger.Incidental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryIncidentals(ctx, s.db, `
		SELECT `+incidentalColumns+` FROM incidentals
		WHERE incidental_date >= ? AND incidental_date <= ? AND deleted_at IS NULL
		ORDER BY incidental_date DESC`,
		encodeDate(from), encodeDate(to))
}

func (s *Store) ListIncidentals(ctx context.Context, includeDeleted bool) ([]ledger.Incidental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + incidentalColumns + ` FROM incidentals`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY incidental_date DESC`
	return queryIncidentals(ctx, s.db, query)
}

func (s *Store) SoftDeleteIncidental(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE incidentals SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete incidental: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrIncidentalNotFound
	}
	return nil
}

func queryIncidentals(ctx context.Context, q queryable, query string, args ...any) ([]ledger.Incidental, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidentals: %w", err)
	}
	defer rows.Close()

	var incidentals []ledger.Incidental
	for rows.Next() {
		var (
			i       ledger.Incidental
			day     string
			amount  string
			kind    string
			created string
			updated sql.NullString
			deleted sql.NullString
		)
		if err := rows.Scan(&i.ID, &day, &amount, &i.Description, &kind, &created, &updated, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan incidental: %w", err)
		}
		i.Kind = ledger.IncidentalKind(kind)
		if i.Date, err = decodeDate(day); err != nil {
			return nil, err
		}
		if i.Amount, err = decodeDecimal(amount); err != nil {
			return nil, err
		}
		if i.CreatedAt, err = decodeStamp(created); err != nil {
			return nil, err
		}
		if i.UpdatedAt, err = decodeStampPtr(updated); err != nil {
			return nil, err
		}
		if i.DeletedAt, err = decodeStampPtr(deleted); err != nil {
			return nil, err
		}
		incidentals = append(incidentals, i)
	}
	return incidentals, rows.Err()
}
