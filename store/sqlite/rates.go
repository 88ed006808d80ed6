package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// RATE STORE (ledger.TxRateStore)
// =============================================================================

const rateColumns = `id, hourly_rate, effective_date, end_date, created_at, updated_at, deleted_at`

func (s *Store) InsertRate(ctx context.Context, r *ledger.PayRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertRate(ctx, s.db, r)
}

func (s *Store) UpdateRate(ctx context.Context, r *ledger.PayRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateRate(ctx, s.db, r)
}

func (s *Store) RateByID(ctx context.Context, id int64) (*ledger.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rateByID(ctx, s.db, id)
}

func (s *Store) OpenEndedRate(ctx context.Context) (*ledger.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openEndedRate(ctx, s.db)
}

func (s *Store) RateCoveringDate(ctx context.Context, d ledger.Date) (*ledger.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rateCoveringDate(ctx, s.db, d)
}

func (s *Store) ListRates(ctx context.Context, includeDeleted bool) ([]ledger.PayRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + rateColumns + ` FROM pay_rates`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY effective_date DESC`

	return queryRates(ctx, s.db, query)
}

func (s *Store) SoftDeleteRate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE pay_rates SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete pay rate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrRateNotFound
	}
	return nil
}

// WithTx executes fn against a store bound to one database transaction.
// Used by the timeline maintainer so closing the previous rate and
// inserting its successor commit together or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.RateStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txRateStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txRateStore is the transaction-bound view handed to WithTx callbacks.
// The parent Store holds the write lock for the duration of the
// transaction, so these methods do not lock again.
type txRateStore struct {
	tx *sql.Tx
}

func (t *txRateStore) InsertRate(ctx context.Context, r *ledger.PayRate) error {
	return insertRate(ctx, t.tx, r)
}

func (t *txRateStore) UpdateRate(ctx context.Context, r *ledger.PayRate) error {
	return updateRate(ctx, t.tx, r)
}

func (t *txRateStore) RateByID(ctx context.Context, id int64) (*ledger.PayRate, error) {
	return rateByID(ctx, t.tx, id)
}

func (t *txRateStore) OpenEndedRate(ctx context.Context) (*ledger.PayRate, error) {
	return openEndedRate(ctx, t.tx)
}

func (t *txRateStore) RateCoveringDate(ctx context.Context, d ledger.Date) (*ledger.PayRate, error) {
	return rateCoveringDate(ctx, t.tx, d)
}

func (t *txRateStore) ListRates(ctx context.Context, includeDeleted bool) ([]ledger.PayRate, error) {
	query := `SELECT ` + rateColumns + ` FROM pay_rates`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY effective_date DESC`
	return queryRates(ctx, t.tx, query)
}

func (t *txRateStore) SoftDeleteRate(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE pay_rates SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete pay rate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrRateNotFound
	}
	return nil
}

// =============================================================================
// ROW-LEVEL HELPERS
// =============================================================================

func insertRate(ctx context.Context, q queryable, r *ledger.PayRate) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO pay_rates (hourly_rate, effective_date, end_date, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.HourlyRate.String(),
		encodeDate(r.EffectiveDate),
		encodeDatePtr(r.EndDate),
		r.CreatedAt.Format(time.RFC3339),
		encodeTimePtr(r.UpdatedAt),
		encodeTimePtr(r.DeletedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// The partial unique index caught a second open-ended rate.
			return &ledger.IntegrityError{Detail: "more than one open-ended pay rate"}
		}
		return fmt.Errorf("failed to insert pay rate: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func updateRate(ctx context.Context, q queryable, r *ledger.PayRate) error {
	// HourlyRate and EffectiveDate are immutable after creation; only the
	// close-over fields are written back.
	res, err := q.ExecContext(ctx, `
		UPDATE pay_rates SET end_date = ?, updated_at = ? WHERE id = ?`,
		encodeDatePtr(r.EndDate),
		encodeTimePtr(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pay rate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrRateNotFound
	}
	return nil
}

func rateByID(ctx context.Context, q queryable, id int64) (*ledger.PayRate, error) {
	rates, err := queryRates(ctx, q,
		`SELECT `+rateColumns+` FROM pay_rates WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, nil
	}
	return &rates[0], nil
}

func openEndedRate(ctx context.Context, q queryable) (*ledger.PayRate, error) {
	rates, err := queryRates(ctx, q, `
		SELECT `+rateColumns+` FROM pay_rates
		WHERE end_date IS NULL AND deleted_at IS NULL
		ORDER BY effective_date DESC`)
	if err != nil {
		return nil, err
	}
	switch len(rates) {
	case 0:
		return nil, nil
	case 1:
		return &rates[0], nil
	default:
		return nil, &ledger.IntegrityError{Detail: "more than one open-ended pay rate"}
	}
}

func rateCoveringDate(ctx context.Context, q queryable, d ledger.Date) (*ledger.PayRate, error) {
	// Inclusive on both ends; on overlap (invariant violation) the most
	// recently effective rate wins via the DESC order.
	day := encodeDate(d)
	rates, err := queryRates(ctx, q, `
		SELECT `+rateColumns+` FROM pay_rates
		WHERE effective_date <= ? AND (end_date IS NULL OR end_date >= ?) AND deleted_at IS NULL
		ORDER BY effective_date DESC
		LIMIT 1`, day, day)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, nil
	}
	return &rates[0], nil
}

func queryRates(ctx context.Context, q queryable, query string, args ...any) ([]ledger.PayRate, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pay rates: %w", err)
	}
	defer rows.Close()

	var rates []ledger.PayRate
	for rows.Next() {
		var (
			r          ledger.PayRate
			hourly     string
			effective  string
			end        sql.NullString
			created    string
			updated    sql.NullString
			deleted    sql.NullString
		)
		if err := rows.Scan(&r.ID, &hourly, &effective, &end, &created, &updated, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan pay rate: %w", err)
		}
		if r.HourlyRate, err = decodeDecimal(hourly); err != nil {
			return nil, err
		}
		if r.EffectiveDate, err = decodeDate(effective); err != nil {
			return nil, err
		}
		if r.EndDate, err = decodeDatePtr(end); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = decodeStamp(created); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = decodeStampPtr(updated); err != nil {
			return nil, err
		}
		if r.DeletedAt, err = decodeStampPtr(deleted); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}
