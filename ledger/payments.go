package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentService records money received against the running balance.
type PaymentService struct {
	store PaymentStore
}

func NewPaymentService(store PaymentStore) *PaymentService {
	return &PaymentService{store: store}
}

func (s *PaymentService) CreatePayment(ctx context.Context, date Date, amount decimal.Decimal, notes string) (*Payment, error) {
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is required"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	payment := &Payment{
		Date:   date,
		Amount: amount,
		Notes:  notes,
	}
	if err := s.store.InsertPayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) UpdatePayment(ctx context.Context, id int64, date Date, amount decimal.Decimal, notes string) (*Payment, error) {
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is required"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	payment, err := s.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.IsDeleted() {
		return nil, ErrPaymentNotFound
	}

	payment.Date = date
	payment.Amount = amount
	payment.Notes = notes
	now := time.Now().UTC()
	payment.UpdatedAt = &now

	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, id int64) error {
	payment, err := s.store.PaymentByID(ctx, id)
	if err != nil {
		return err
	}
	if payment == nil || payment.IsDeleted() {
		return ErrPaymentNotFound
	}
	return s.store.SoftDeletePayment(ctx, id)
}

func (s *PaymentService) PaymentByID(ctx context.Context, id int64) (*Payment, error) {
	return s.store.PaymentByID(ctx, id)
}

func (s *PaymentService) PaymentsInRange(ctx context.Context, from, to Date) ([]Payment, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date_range", Reason: "end before start"}
	}
	return s.store.PaymentsInRange(ctx, from, to)
}

func (s *PaymentService) ListPayments(ctx context.Context, includeDeleted bool) ([]Payment, error) {
	return s.store.ListPayments(ctx, includeDeleted)
}
