/*
rates.go - Pay-rate timeline maintenance and resolution

PURPOSE:
  RateService owns the non-overlapping timeline of hourly rates:
  - Maintainer: CreateRate closes the previous open-ended rate (end date
    = new effective date minus one day) and inserts the successor, as one
    atomic unit.
  - Resolver: RateForDate answers "which rate applies on day D".

TIMELINE INVARIANTS:
  1. At most one non-deleted rate is open-ended (nil EndDate) at any time.
  2. Every closed rate has EffectiveDate <= EndDate.
  3. HourlyRate and EffectiveDate never change after creation; EndDate is
     set exactly once, here, when the next rate arrives.

BOUNDARY POLICY:
  Intervals are inclusive on both ends. A rate applies on its own
  effective date and on its own end date; the day a new rate starts, the
  old one ended the day before.

ORDERING POLICY:
  A new rate whose effective date is on or before the current open
  rate's effective date is rejected with a validation error. Accepting
  it would make the close-over produce an inverted interval; retroactive
  rate insertion is not supported.

SEE ALSO:
  - store.go: RateStore / TxRateStore contracts
  - entries.go: the consumer of RateForDate
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateService maintains and resolves the pay-rate timeline.
type RateService struct {
	store TxRateStore
}

func NewRateService(store TxRateStore) *RateService {
	return &RateService{store: store}
}

// CreateRate introduces a new hourly rate effective from the given date.
// If an open-ended rate exists, its interval is closed at effective minus
// one day; closing and inserting commit together or not at all.
func (s *RateService) CreateRate(ctx context.Context, hourlyRate decimal.Decimal, effective Date) (*PayRate, error) {
	if !hourlyRate.IsPositive() {
		return nil, &ValidationError{Field: "hourly_rate", Reason: "must be greater than zero"}
	}
	if effective.IsZero() {
		return nil, &ValidationError{Field: "effective_date", Reason: "is required"}
	}

	rate := &PayRate{
		HourlyRate:    hourlyRate,
		EffectiveDate: effective,
	}

	err := s.store.WithTx(ctx, func(tx RateStore) error {
		current, err := tx.OpenEndedRate(ctx)
		if err != nil {
			return err
		}
		if current != nil {
			if !effective.After(current.EffectiveDate) {
				return &ValidationError{
					Field:  "effective_date",
					Reason: "must be after the current rate's effective date",
				}
			}
			end := effective.AddDays(-1)
			current.EndDate = &end
			now := time.Now().UTC()
			current.UpdatedAt = &now
			if err := tx.UpdateRate(ctx, current); err != nil {
				return err
			}
		}
		return tx.InsertRate(ctx, rate)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// RateForDate resolves the rate effective on d. A nil result with a nil
// error means no rate covers the date; callers handle that explicitly.
func (s *RateService) RateForDate(ctx context.Context, d Date) (*PayRate, error) {
	return s.store.RateCoveringDate(ctx, d)
}

// CurrentRate returns the open-ended rate, or (nil, nil) when the
// timeline is empty.
func (s *RateService) CurrentRate(ctx context.Context) (*PayRate, error) {
	return s.store.OpenEndedRate(ctx)
}

func (s *RateService) RateByID(ctx context.Context, id int64) (*PayRate, error) {
	return s.store.RateByID(ctx, id)
}

// ListRates returns the timeline ordered by effective date descending.
func (s *RateService) ListRates(ctx context.Context, includeDeleted bool) ([]PayRate, error) {
	return s.store.ListRates(ctx, includeDeleted)
}

// DeleteRate soft-deletes a rate. The record stays in storage but is
// excluded from resolution and listings.
func (s *RateService) DeleteRate(ctx context.Context, id int64) error {
	rate, err := s.store.RateByID(ctx, id)
	if err != nil {
		return err
	}
	if rate == nil || rate.IsDeleted() {
		return ErrRateNotFound
	}
	return s.store.SoftDeleteRate(ctx, id)
}
