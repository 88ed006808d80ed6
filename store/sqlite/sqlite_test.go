package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrFrey75/TimePE/ledger"
	"github.com/MrFrey75/TimePE/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProject(t *testing.T, store *sqlite.Store) int64 {
	t.Helper()
	p := &ledger.Project{Name: "Acme Website", Active: true}
	require.NoError(t, store.InsertProject(context.Background(), p))
	return p.ID
}

// =============================================================================
// RATE STORAGE TESTS
// =============================================================================

func TestSQLite_RateTimeline_EndToEnd(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: Two successive rates are created through the rate service
	// THEN: The stored timeline is contiguous and resolution works across
	//       the transition

	store := newTestStore(t)
	svc := ledger.NewRateService(store)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	_, err = svc.CreateRate(ctx, dec("62.50"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	may, err := store.RateCoveringDate(ctx, ledger.NewDate(2025, time.May, 31))
	require.NoError(t, err)
	require.NotNil(t, may)
	assert.True(t, dec("50.00").Equal(may.HourlyRate))
	require.NotNil(t, may.EndDate)
	assert.Equal(t, "2025-05-31", may.EndDate.String())

	june, err := store.RateCoveringDate(ctx, ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)
	require.NotNil(t, june)
	assert.True(t, dec("62.50").Equal(june.HourlyRate))
	assert.True(t, june.IsOpenEnded())

	before, err := store.RateCoveringDate(ctx, ledger.NewDate(2024, time.June, 1))
	require.NoError(t, err)
	assert.Nil(t, before)
}

func TestSQLite_SecondOpenEndedRate_Rejected(t *testing.T) {
	// GIVEN: An open-ended rate in storage
	// WHEN: Another open-ended rate is inserted directly
	// THEN: The partial unique index refuses it

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRate(ctx, &ledger.PayRate{
		HourlyRate:    dec("50.00"),
		EffectiveDate: ledger.NewDate(2025, time.January, 1),
	}))

	err := store.InsertRate(ctx, &ledger.PayRate{
		HourlyRate:    dec("60.00"),
		EffectiveDate: ledger.NewDate(2025, time.June, 1),
	})
	assert.ErrorIs(t, err, ledger.ErrIntegrity)
}

func TestSQLite_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: One stored rate
	// WHEN: A transaction inserts another and then fails
	// THEN: The insert is rolled back

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRate(ctx, &ledger.PayRate{
		HourlyRate:    dec("50.00"),
		EffectiveDate: ledger.NewDate(2025, time.January, 1),
	}))

	err := store.WithTx(ctx, func(s ledger.RateStore) error {
		end := ledger.NewDate(2025, time.May, 31)
		rate, err := s.OpenEndedRate(ctx)
		if err != nil {
			return err
		}
		rate.EndDate = &end
		if err := s.UpdateRate(ctx, rate); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	rate, err := store.OpenEndedRate(ctx)
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Nil(t, rate.EndDate, "end date write must be rolled back")
}

// =============================================================================
// ENTRY STORAGE TESTS
// =============================================================================

func TestSQLite_Entry_DecimalRoundTrip(t *testing.T) {
	// Fractional hours and amounts must survive storage exactly.
	store := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, store)

	entry := &ledger.TimeEntry{
		Date:          ledger.NewDate(2025, time.March, 10),
		Start:         ledger.NewClockTime(9, 0),
		End:           ledger.NewClockTime(9, 20),
		ProjectID:     projectID,
		AppliedRate:   dec("50.00"),
		DurationHours: dec("0.3333333333333333"),
		AmountOwed:    dec("16.6666666666666667"),
		Notes:         "short call",
	}
	require.NoError(t, store.InsertEntry(ctx, entry))
	require.NotZero(t, entry.ID)

	got, err := store.EntryByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, entry.DurationHours.Equal(got.DurationHours))
	assert.True(t, entry.AmountOwed.Equal(got.AmountOwed))
	assert.Equal(t, "09:00", got.Start.String())
	assert.Equal(t, "09:20", got.End.String())
	assert.Equal(t, "short call", got.Notes)
}

func TestSQLite_Entry_UpdateKeepsSnapshot(t *testing.T) {
	// UpdateEntry writes only the editable columns; a tampered snapshot
	// field on the passed struct must not reach storage.
	store := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, store)

	entry := &ledger.TimeEntry{
		Date:          ledger.NewDate(2025, time.March, 10),
		Start:         ledger.NewClockTime(9, 0),
		End:           ledger.NewClockTime(17, 0),
		ProjectID:     projectID,
		AppliedRate:   dec("50.00"),
		DurationHours: dec("8"),
		AmountOwed:    dec("400"),
	}
	require.NoError(t, store.InsertEntry(ctx, entry))

	entry.Notes = "edited"
	entry.AmountOwed = dec("9999") // must be ignored
	require.NoError(t, store.UpdateEntry(ctx, entry))

	got, err := store.EntryByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Notes)
	assert.True(t, dec("400").Equal(got.AmountOwed))
}

func TestSQLite_Entry_RangeAndSoftDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	projectID := seedProject(t, store)

	for _, day := range []int{5, 10, 20} {
		require.NoError(t, store.InsertEntry(ctx, &ledger.TimeEntry{
			Date:          ledger.NewDate(2025, time.March, day),
			Start:         ledger.NewClockTime(9, 0),
			End:           ledger.NewClockTime(17, 0),
			ProjectID:     projectID,
			AppliedRate:   dec("50.00"),
			DurationHours: dec("8"),
			AmountOwed:    dec("400"),
		}))
	}

	got, err := store.EntriesInRange(ctx,
		ledger.NewDate(2025, time.March, 5), ledger.NewDate(2025, time.March, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-05", got[0].Date.String())
	assert.Equal(t, "2025-03-10", got[1].Date.String())

	require.NoError(t, store.SoftDeleteEntry(ctx, got[0].ID))

	got, err = store.EntriesInRange(ctx,
		ledger.NewDate(2025, time.March, 5), ledger.NewDate(2025, time.March, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)

	err = store.SoftDeleteEntry(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

// =============================================================================
// PROJECT / PAYMENT / INCIDENTAL STORAGE TESTS
// =============================================================================

func TestSQLite_Project_NameLookupCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &ledger.Project{Name: "Acme Website", Active: true}
	require.NoError(t, store.InsertProject(ctx, p))

	got, err := store.ProjectByName(ctx, "acme website")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)

	missing, err := store.ProjectByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_PaymentsAndIncidentals_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payment := &ledger.Payment{
		Date:   ledger.NewDate(2025, time.March, 14),
		Amount: dec("200.00"),
		Notes:  "partial",
	}
	require.NoError(t, store.InsertPayment(ctx, payment))

	incidental := &ledger.Incidental{
		Date:        ledger.NewDate(2025, time.March, 12),
		Amount:      dec("30.00"),
		Description: "parts",
		Kind:        ledger.IncidentalOwed,
	}
	require.NoError(t, store.InsertIncidental(ctx, incidental))

	payments, err := store.ListPayments(ctx, false)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, dec("200.00").Equal(payments[0].Amount))

	incidentals, err := store.ListIncidentals(ctx, false)
	require.NoError(t, err)
	require.Len(t, incidentals, 1)
	assert.Equal(t, ledger.IncidentalOwed, incidentals[0].Kind)

	require.NoError(t, store.SoftDeletePayment(ctx, payment.ID))
	payments, err = store.ListPayments(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
