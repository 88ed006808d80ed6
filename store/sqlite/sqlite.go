/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage contracts.

PURPOSE:
  Implements ledger.TxRateStore, ledger.EntryStore, ledger.ProjectStore,
  ledger.PaymentStore and ledger.IncidentalStore on a single database.

SOFT DELETE:
  Every table carries a nullable deleted_at column, and every query
  predicate filters it explicitly. There is no other delete mechanism;
  rows are never physically removed.

INVARIANT ENFORCEMENT:
  A partial unique index on pay_rates permits at most one row with a
  NULL end_date among non-deleted rates. Two racing rate creations
  cannot both commit an open-ended rate; the loser fails with an
  integrity error instead of corrupting the timeline.

STORAGE CONVENTIONS:
  - Dates as TEXT "YYYY-MM-DD", clock times as TEXT "HH:MM" (both sort
    correctly as strings)
  - Decimals as TEXT to avoid float drift
  - Timestamps as RFC3339 TEXT

WAL MODE:
  The database is opened with WAL and foreign keys on. A sync.RWMutex
  serializes writers; sqlite allows only one writer at a time anyway.

MIGRATION:
  Versioned SQL migrations are embedded and applied on New() via
  golang-migrate (see migrate.go).

SEE ALSO:
  - ledger/store.go: the contracts implemented here
  - ledger/store/memory.go: in-memory counterpart for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/MrFrey75/TimePE/ledger"
)

// Store implements all ledger storage contracts on one SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at dbPath and applies
// pending migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// queryable is satisfied by both *sql.DB and *sql.Tx so the row-level
// helpers below work inside and outside transactions.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// VALUE ENCODING
// =============================================================================

func encodeDate(d ledger.Date) string { return d.String() }

func encodeDatePtr(d *ledger.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nowStamp() string { return time.Now().UTC().Format(time.RFC3339) }

func decodeDate(s string) (ledger.Date, error) {
	return ledger.ParseDate(s)
}

func decodeDatePtr(ns sql.NullString) (*ledger.Date, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := ledger.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeStamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func decodeStampPtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
