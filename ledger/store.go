/*
store.go - Persistence contracts for ledger records

PURPOSE:
  Defines the interfaces between the ledger services and the database.
  Implementations: store/sqlite (production) and ledger/store (in-memory,
  for tests). Services receive their store at construction; there is no
  process-wide default handle.

SOFT DELETE:
  Every store filters DeletedAt explicitly in its query predicates. There
  is exactly one delete mechanism (the nullable timestamp), and queries
  that want deleted rows ask for them with includeDeleted.

NOT-FOUND CONVENTION:
  Single-record lookups return (nil, nil) when no row matches. "Absent" is
  a normal answer for lookups; services decide whether it is an error.

TRANSACTIONS:
  TxRateStore.WithTx runs fn against a store bound to one database
  transaction. Closing the previous open-ended rate and inserting its
  successor must commit together or not at all.

SEE ALSO:
  - store/sqlite: production implementation
  - ledger/store/memory.go: in-memory implementation
*/
package ledger

import "context"

// =============================================================================
// RATE TIMELINE STORE
// =============================================================================

// RateStore persists the pay-rate timeline.
type RateStore interface {
	// InsertRate persists a new rate and assigns its ID and CreatedAt.
	InsertRate(ctx context.Context, r *PayRate) error

	// UpdateRate writes EndDate/UpdatedAt back. HourlyRate and
	// EffectiveDate are never modified after creation.
	UpdateRate(ctx context.Context, r *PayRate) error

	RateByID(ctx context.Context, id int64) (*PayRate, error)

	// OpenEndedRate returns the non-deleted rate with a nil EndDate, or
	// (nil, nil) when the timeline is empty. Finding more than one is a
	// data-integrity bug and surfaces an IntegrityError.
	OpenEndedRate(ctx context.Context) (*PayRate, error)

	// RateCoveringDate returns the non-deleted rate whose inclusive
	// [EffectiveDate, EndDate-or-infinity] interval contains d, or
	// (nil, nil). When intervals overlap (an invariant violation), the
	// most recently effective rate wins.
	RateCoveringDate(ctx context.Context, d Date) (*PayRate, error)

	// ListRates returns rates ordered by effective date descending.
	ListRates(ctx context.Context, includeDeleted bool) ([]PayRate, error)

	SoftDeleteRate(ctx context.Context, id int64) error
}

// TxRateStore adds an atomic execution boundary to RateStore.
type TxRateStore interface {
	RateStore

	// WithTx executes fn within a single transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(RateStore) error) error
}

// =============================================================================
// TIME ENTRY STORE
// =============================================================================

type EntryStore interface {
	InsertEntry(ctx context.Context, e *TimeEntry) error
	UpdateEntry(ctx context.Context, e *TimeEntry) error
	EntryByID(ctx context.Context, id int64) (*TimeEntry, error)

	// EntriesInRange returns non-deleted entries with from <= Date <= to,
	// ordered by date then start time ascending.
	EntriesInRange(ctx context.Context, from, to Date) ([]TimeEntry, error)

	EntriesByProject(ctx context.Context, projectID int64) ([]TimeEntry, error)
	ListEntries(ctx context.Context, includeDeleted bool) ([]TimeEntry, error)

	// RecentEntries returns the n most recent non-deleted entries, newest
	// first (date descending, then start time descending).
	RecentEntries(ctx context.Context, n int) ([]TimeEntry, error)

	SoftDeleteEntry(ctx context.Context, id int64) error
}

// =============================================================================
// PROJECT STORE
// =============================================================================

type ProjectStore interface {
	InsertProject(ctx context.Context, p *Project) error
	UpdateProject(ctx context.Context, p *Project) error
	ProjectByID(ctx context.Context, id int64) (*Project, error)

	// ProjectByName matches case-insensitively among non-deleted projects.
	ProjectByName(ctx context.Context, name string) (*Project, error)

	ListProjects(ctx context.Context, includeDeleted bool) ([]Project, error)
	SoftDeleteProject(ctx context.Context, id int64) error
}

// =============================================================================
// PAYMENT / INCIDENTAL STORES
// =============================================================================

type PaymentStore interface {
	InsertPayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	PaymentByID(ctx context.Context, id int64) (*Payment, error)
	PaymentsInRange(ctx context.Context, from, to Date) ([]Payment, error)
	ListPayments(ctx context.Context, includeDeleted bool) ([]Payment, error)
	SoftDeletePayment(ctx context.Context, id int64) error
}

type IncidentalStore interface {
	InsertIncidental(ctx context.Context, i *Incidental) error
	UpdateIncidental(ctx context.Context, i *Incidental) error
	IncidentalByID(ctx context.Context, id int64) (*Incidental, error)
	IncidentalsInRange(ctx context.Context, from, to Date) ([]Incidental, error)
	ListIncidentals(ctx context.Context, includeDeleted bool) ([]Incidental, error)
	SoftDeleteIncidental(ctx context.Context, id int64) error
}
