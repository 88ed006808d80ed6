package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// ENTRY STORE (ledger.EntryStore)
// =============================================================================

const entryColumns = `id, entry_date, start_time, end_time, project_id, applied_rate,
	duration_hours, amount_owed, notes, created_at, updated_at, deleted_at`

func (s *Store) InsertEntry(ctx context.Context, e *ledger.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO time_entries
		(entry_date, start_time, end_time, project_id, applied_rate, duration_hours, amount_owed, notes, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		encodeDate(e.Date),
		e.Start.String(),
		e.End.String(),
		e.ProjectID,
		e.AppliedRate.String(),
		e.DurationHours.String(),
		e.AmountOwed.String(),
		e.Notes,
		e.CreatedAt.Format(time.RFC3339),
		encodeTimePtr(e.UpdatedAt),
		encodeTimePtr(e.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert time entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *ledger.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Applied rate and derived amounts are write-once; only the mutable
	// fields go back to the database.
	res, err := s.db.ExecContext(ctx, `
		UPDATE time_entries
		SET entry_date = ?, start_time = ?, end_time = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		encodeDate(e.Date),
		e.Start.String(),
		e.End.String(),
		e.Notes,
		encodeTimePtr(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

func (s *Store) EntryByID(ctx context.Context, id int64) (*ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := queryEntries(ctx, s.db,
		`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) EntriesInRange(ctx context.Context, from, to ledger.Date) ([]ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryEntries(ctx, s.db, `
		SELECT `+entryColumns+` FROM time_entries
		WHERE entry_date >= ? AND entry_date <= ? AND deleted_at IS NULL
		ORDER BY entry_date ASC, start_time ASC`,
		encodeDate(from), encodeDate(to))
}

func (s *Store) EntriesByProject(ctx context.Context, projectID int64) ([]ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryEntries(ctx, s.db, `
		SELECT `+entryColumns+` FROM time_entries
		WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY entry_date ASC, start_time ASC`,
		projectID)
}

func (s *Store) ListEntries(ctx context.Context, includeDeleted bool) ([]ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + entryColumns + ` FROM time_entries`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY entry_date ASC, start_time ASC`
	return queryEntries(ctx, s.db, query)
}

func (s *Store) RecentEntries(ctx context.Context, n int) ([]ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryEntries(ctx, s.db, `
		SELECT `+entryColumns+` FROM time_entries
		WHERE deleted_at IS NULL
		ORDER BY entry_date DESC, start_time DESC
		LIMIT ?`, n)
}

func (s *Store) SoftDeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

func queryEntries(ctx context.Context, q queryable, query string, args ...any) ([]ledger.TimeEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.TimeEntry
	for rows.Next() {
		var (
			e       ledger.TimeEntry
			day     string
			start   string
			end     string
			rate    string
			hours   string
			amount  string
			created string
			updated sql.NullString
			deleted sql.NullString
		)
		if err := rows.Scan(&e.ID, &day, &start, &end, &e.ProjectID, &rate,
			&hours, &amount, &e.Notes, &created, &updated, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		if e.Date, err = decodeDate(day); err != nil {
			return nil, err
		}
		if e.Start, err = ledger.ParseClockTime(start); err != nil {
			return nil, err
		}
		if e.End, err = ledger.ParseClockTime(end); err != nil {
			return nil, err
		}
		if e.AppliedRate, err = decodeDecimal(rate); err != nil {
			return nil, err
		}
		if e.DurationHours, err = decodeDecimal(hours); err != nil {
			return nil, err
		}
		if e.AmountOwed, err = decodeDecimal(amount); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = decodeStamp(created); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = decodeStampPtr(updated); err != nil {
			return nil, err
		}
		if e.DeletedAt, err = decodeStampPtr(deleted); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
