package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IncidentalService records one-off charges and credits outside logged
// hours. Kind "owed" adds to the balance, "owed_by" subtracts from it.
type IncidentalService struct {
	store IncidentalStore
}

func NewIncidentalService(store IncidentalStore) *IncidentalService {
	return &IncidentalService{store: store}
}

func (s *IncidentalService) CreateIncidental(ctx context.Context, date Date, amount decimal.Decimal, description string, kind IncidentalKind) (*Incidental, error) {
	if err := validateIncidentalFields(date, amount, description, kind); err != nil {
		return nil, err
	}
	incidental := &Incidental{
		Date:        date,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Kind:        kind,
	}
	if err := s.store.InsertIncidental(ctx, incidental); err != nil {
		return nil, err
	}
	return incidental, nil
}

func (s *IncidentalService) UpdateIncidental(ctx context.Context, id int64, date Date, amount decimal.Decimal, description string, kind IncidentalKind) (*Incidental, error) {
	if err := validateIncidentalFields(date, amount, description, kind); err != nil {
		return nil, err
	}
	incidental, err := s.store.IncidentalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if incidental == nil || incidental.IsDeleted() {
		return nil, ErrIncidentalNotFound
	}

	incidental.Date = date
	incidental.Amount = amount
	incidental.Description = strings.TrimSpace(description)
	incidental.Kind = kind
	now := time.Now().UTC()
	incidental.UpdatedAt = &now

	if err := s.store.UpdateIncidental(ctx, incidental); err != nil {
		return nil, err
	}
	return incidental, nil
}

func (s *IncidentalService) DeleteIncidental(ctx context.Context, id int64) error {
	incidental, err := s.store.IncidentalByID(ctx, id)
	if err != nil {
		return err
	}
	if incidental == nil || incidental.IsDeleted() {
		return ErrIncidentalNotFound
	}
	return s.store.SoftDeleteIncidental(ctx, id)
}

func (s *IncidentalService) IncidentalByID(ctx context.Context, id int64) (*Incidental, error) {
	return s.store.IncidentalByID(ctx, id)
}

func (s *IncidentalService) IncidentalsInRange(ctx context.Context, from, to Date) ([]Incidental, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date_range", Reason: "end before start"}
	}
	return s.store.IncidentalsInRange(ctx, from, to)
}

func (s *IncidentalService) ListIncidentals(ctx context.Context, includeDeleted bool) ([]Incidental, error) {
	return s.store.ListIncidentals(ctx, includeDeleted)
}

func validateIncidentalFields(date Date, amount decimal.Decimal, description string, kind IncidentalKind) error {
	if date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	if !kind.Valid() {
		return &ValidationError{Field: "kind", Reason: `must be "owed" or "owed_by"`}
	}
	return nil
}
