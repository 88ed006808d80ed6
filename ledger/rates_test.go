package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrFrey75/TimePE/ledger"
	"github.com/MrFrey75/TimePE/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newRateService(t *testing.T) (*ledger.RateService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return ledger.NewRateService(mem), mem
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// RATE TIMELINE TESTS
// =============================================================================

func TestRateService_FirstRate_OpenEnded(t *testing.T) {
	// GIVEN: An empty rate timeline
	// WHEN: The first rate is created
	// THEN: It is open-ended and becomes the current rate

	svc, _ := newRateService(t)
	ctx := context.Background()

	rate, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	assert.True(t, rate.IsOpenEnded())

	current, err := svc.CurrentRate(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, rate.ID, current.ID)
	assert.True(t, dec("50.00").Equal(current.HourlyRate))
}

func TestRateService_NewRate_ClosesPredecessor(t *testing.T) {
	// GIVEN: A current rate effective Jan 1
	// WHEN: A new rate is created effective Jun 1
	// THEN: The old rate's end date becomes May 31 and the new rate is open-ended

	svc, _ := newRateService(t)
	ctx := context.Background()

	first, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)

	second, err := svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)
	assert.True(t, second.IsOpenEnded())

	closed, err := svc.RateByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndDate)
	assert.Equal(t, "2025-05-31", closed.EndDate.String())
	assert.NotNil(t, closed.UpdatedAt)
}

func TestRateService_RateForDate_Boundaries(t *testing.T) {
	// GIVEN: Rate A Jan 1 - May 31, Rate B Jun 1 onward
	// WHEN: Resolving dates at and around the boundary
	// THEN: Both endpoints of each interval are inclusive

	svc, _ := newRateService(t)
	ctx := context.Background()

	a, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	b, err := svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	cases := []struct {
		date   ledger.Date
		wantID int64
	}{
		{ledger.NewDate(2025, time.January, 1), a.ID}, // first day of A
		{ledger.NewDate(2025, time.March, 15), a.ID},  // middle of A
		{ledger.NewDate(2025, time.May, 31), a.ID},    // last day of A
		{ledger.NewDate(2025, time.June, 1), b.ID},    // first day of B
		{ledger.NewDate(2030, time.December, 25), b.ID}, // far future, open-ended
	}
	for _, tc := range cases {
		got, err := svc.RateForDate(ctx, tc.date)
		require.NoError(t, err)
		require.NotNil(t, got, "no rate for %s", tc.date)
		assert.Equal(t, tc.wantID, got.ID, "wrong rate for %s", tc.date)
	}
}

func TestRateService_RateForDate_ThreeRateTimeline(t *testing.T) {
	// GIVEN: $40 from Jan 1, $45 from Mar 1, $50 from Jun 1
	// WHEN: Resolving dates inside each interval
	// THEN: Each date lands on its own rate, including the day before a
	//       transition

	svc, _ := newRateService(t)
	ctx := context.Background()

	for _, r := range []struct {
		rate      string
		effective ledger.Date
	}{
		{"40", ledger.NewDate(2025, time.January, 1)},
		{"45", ledger.NewDate(2025, time.March, 1)},
		{"50", ledger.NewDate(2025, time.June, 1)},
	} {
		_, err := svc.CreateRate(ctx, dec(r.rate), r.effective)
		require.NoError(t, err)
	}

	cases := []struct {
		date ledger.Date
		want string
	}{
		{ledger.NewDate(2025, time.January, 15), "40"},
		{ledger.NewDate(2025, time.February, 28), "40"}, // day before second rate
		{ledger.NewDate(2025, time.March, 15), "45"},
		{ledger.NewDate(2025, time.June, 15), "50"},
	}
	for _, tc := range cases {
		got, err := svc.RateForDate(ctx, tc.date)
		require.NoError(t, err)
		require.NotNil(t, got, "no rate for %s", tc.date)
		assert.True(t, dec(tc.want).Equal(got.HourlyRate), "rate for %s = %s", tc.date, got.HourlyRate)
	}
}

func TestRateService_RateForDate_BeforeAllRates(t *testing.T) {
	// GIVEN: The earliest rate is effective Jan 1 2025
	// WHEN: Resolving a date before it
	// THEN: No rate is found and no error is returned

	svc, _ := newRateService(t)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)

	got, err := svc.RateForDate(ctx, ledger.NewDate(2024, time.December, 31))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRateService_RateForDate_Idempotent(t *testing.T) {
	// GIVEN: A fixed timeline
	// WHEN: The same date is resolved repeatedly
	// THEN: The answer never changes

	svc, _ := newRateService(t)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	_, err = svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	day := ledger.NewDate(2025, time.April, 10)
	first, err := svc.RateForDate(ctx, day)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := svc.RateForDate(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestRateService_CreateRate_RejectsNonPositive(t *testing.T) {
	svc, _ := newRateService(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-10.00"} {
		_, err := svc.CreateRate(ctx, dec(amount), ledger.NewDate(2025, time.January, 1))
		assert.ErrorIs(t, err, ledger.ErrValidation, "rate %s should be rejected", amount)
	}
}

func TestRateService_CreateRate_RejectsOutOfOrderEffectiveDate(t *testing.T) {
	// GIVEN: A current rate effective Jun 1
	// WHEN: Creating a rate effective before (or on) Jun 1
	// THEN: The timeline refuses: it only moves forward

	svc, _ := newRateService(t)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	_, err = svc.CreateRate(ctx, dec("70.00"), ledger.NewDate(2025, time.March, 1))
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = svc.CreateRate(ctx, dec("70.00"), ledger.NewDate(2025, time.June, 1))
	assert.ErrorIs(t, err, ledger.ErrValidation)

	// The failed attempts must not have disturbed the timeline.
	current, err := svc.CurrentRate(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.True(t, dec("60.00").Equal(current.HourlyRate))

	rates, err := svc.ListRates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}

// =============================================================================
// INVARIANT TESTS
// =============================================================================

func TestRateService_SingleOpenEndedRate(t *testing.T) {
	// GIVEN: Several successive rates
	// THEN: Exactly one rate is ever open-ended

	svc, _ := newRateService(t)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("40.00"), ledger.NewDate(2024, time.January, 1))
	require.NoError(t, err)
	_, err = svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2024, time.July, 1))
	require.NoError(t, err)
	_, err = svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)

	rates, err := svc.ListRates(ctx, false)
	require.NoError(t, err)
	require.Len(t, rates, 3)

	open := 0
	for _, r := range rates {
		if r.IsOpenEnded() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestRateService_OpenEndedRate_IntegrityViolation(t *testing.T) {
	// GIVEN: Storage corrupted with two open-ended rates
	// WHEN: The current rate is requested
	// THEN: An integrity error surfaces instead of a silent pick

	svc, mem := newRateService(t)
	ctx := context.Background()

	require.NoError(t, mem.InsertRate(ctx, &ledger.PayRate{
		HourlyRate: dec("50.00"), EffectiveDate: ledger.NewDate(2025, time.January, 1),
	}))
	require.NoError(t, mem.InsertRate(ctx, &ledger.PayRate{
		HourlyRate: dec("60.00"), EffectiveDate: ledger.NewDate(2025, time.June, 1),
	}))

	_, err := svc.CurrentRate(ctx)
	assert.ErrorIs(t, err, ledger.ErrIntegrity)
}

// =============================================================================
// SOFT DELETE TESTS
// =============================================================================

func TestRateService_DeleteRate_ExcludedFromResolution(t *testing.T) {
	// GIVEN: Rate A Jan-May, rate B Jun onward, then B soft-deleted
	// WHEN: Resolving a June date
	// THEN: Resolution falls through to nothing (A ended in May)

	svc, _ := newRateService(t)
	ctx := context.Background()

	_, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	b, err := svc.CreateRate(ctx, dec("60.00"), ledger.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRate(ctx, b.ID))

	got, err := svc.RateForDate(ctx, ledger.NewDate(2025, time.June, 15))
	require.NoError(t, err)
	assert.Nil(t, got)

	rates, err := svc.ListRates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, rates, 1)

	withDeleted, err := svc.ListRates(ctx, true)
	require.NoError(t, err)
	assert.Len(t, withDeleted, 2)
}

func TestRateService_DeleteRate_MissingOrTwice(t *testing.T) {
	svc, _ := newRateService(t)
	ctx := context.Background()

	err := svc.DeleteRate(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrRateNotFound)

	rate, err := svc.CreateRate(ctx, dec("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRate(ctx, rate.ID))

	err = svc.DeleteRate(ctx, rate.ID)
	assert.ErrorIs(t, err, ledger.ErrRateNotFound)
}
