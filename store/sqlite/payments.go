package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// PAYMENT STORE (ledger.PaymentStore)
// =============================================================================

const paymentColumns = `id, payment_date, amount, notes, created_at, updated_at, deleted_at`

func (s *Store) InsertPayment(ctx context.Context, p *ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (payment_date, amount, notes, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		encodeDate(p.Date),
		p.Amount.String(),
		p.Notes,
		p.CreatedAt.Format(time.RFC3339),
		encodeTimePtr(p.UpdatedAt),
		encodeTimePtr(p.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *Store) UpdatePayment(ctx context.Context, p *ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET payment_date = ?, amount = ?, notes = ?, updated_at = ? WHERE id = ?`,
		encodeDate(p.Date), p.Amount.String(), p.Notes, encodeTimePtr(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) PaymentByID(ctx context.Context, id int64) (*ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments, err := queryPayments(ctx, s.db,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

func (s *Store) PaymentsInRange(ctx context.Context, from, to ledger.Date) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryPayments(ctx, s.db, `
		SELECT `+paymentColumns+` FROM payments
		WHERE payment_date >= ? AND payment_date <= ? AND deleted_at IS NULL
		ORDER BY payment_date DESC`,
		encodeDate(from), encodeDate(to))
}

func (s *Store) ListPayments(ctx context.Context, includeDeleted bool) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY payment_date DESC`
	return queryPayments(ctx, s.db, query)
}

func (s *Store) SoftDeletePayment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrPaymentNotFound
	}
	return nil
}

func queryPayments(ctx context.Context, q queryable, query string, args ...any) ([]ledger.Payment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []ledger.Payment
	for rows.Next() {
		var (
			p       ledger.Payment
			day     string
			amount  string
			created string
			updated sql.NullString
			deleted sql.NullString
		)
		if err := rows.Scan(&p.ID, &day, &amount, &p.Notes, &created, &updated, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.Date, err = decodeDate(day); err != nil {
			return nil, err
		}
		if p.Amount, err = decodeDecimal(amount); err != nil {
			return nil, err
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
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
