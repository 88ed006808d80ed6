/*
Package ledger implements a personal time-tracking and billing ledger.

PURPOSE:
  Hours are logged against projects, priced by a timeline of hourly pay
  rates, and reconciled against payments and incidental charges. The
  package owns the rate effective-dating rules, the earnings arithmetic,
  and the services that compose them. Persistence and HTTP are plugged
  in from the outside.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date:       A calendar day (no time-of-day component)
  - ClockTime:  A time of day with minute granularity
  - PayRate:    An hourly rate effective over a date interval
  - TimeEntry:  A logged work interval with a frozen rate snapshot
  - Project, Payment, Incidental: the remaining ledger records

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money and fractional hours;
     rounding happens only at the presentation boundary.
  2. Snapshot immutability: a TimeEntry captures the hourly rate in
     force at creation. Later rate changes never touch old entries.
  3. Soft delete: records carry a DeletedAt marker and are filtered
     explicitly in every query; nothing is physically removed.

SEE ALSO:
  - rates.go:    rate timeline maintenance and resolution
  - earnings.go: duration/amount arithmetic
  - entries.go:  time-entry orchestration
  - errors.go:   error taxonomy
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar day, no time-of-day component
// =============================================================================

// Date is a calendar day. The rate timeline and all range queries operate
// at day granularity; time-of-day lives in ClockTime.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

func (d Date) String() string { return d.Time.Format(dateLayout) }

// =============================================================================
// CLOCK TIME - Time of day, minute granularity
// =============================================================================

type ClockTime struct {
	Hour   int
	Minute int
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// ParseClockTime parses "HH:MM" (24-hour clock).
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	ct := ClockTime{Hour: h, Minute: m}
	if !ct.Valid() {
		return ClockTime{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return ct, nil
}

func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// =============================================================================
// PAY RATE - Hourly rate effective over a date interval
// =============================================================================

// PayRate is one segment of the rate timeline. EffectiveDate and EndDate are
// both inclusive; a nil EndDate marks the current, open-ended rate. At most
// one non-deleted rate may be open-ended at any time.
//
// HourlyRate and EffectiveDate never change after creation. EndDate is set
// exactly once, by the timeline maintainer, when the next rate is created.
type PayRate struct {
	ID            int64
	HourlyRate    decimal.Decimal
	EffectiveDate Date
	EndDate       *Date
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}

func (r *PayRate) IsOpenEnded() bool { return r.EndDate == nil }
func (r *PayRate) IsDeleted() bool   { return r.DeletedAt != nil }

// Covers reports whether d falls inside the rate's interval. Both the
// effective date and the end date count as covered.
func (r *PayRate) Covers(d Date) bool {
	if d.Before(r.EffectiveDate) {
		return false
	}
	return r.EndDate == nil || d.BeforeOrEqual(*r.EndDate)
}

// =============================================================================
// TIME ENTRY - Logged work interval with a frozen rate snapshot
// =============================================================================

// TimeEntry records work on a project. AppliedRate, DurationHours and
// AmountOwed are computed once at creation and never recomputed, even when
// date/start/end are edited afterwards. That keeps historical billing stable
// against both rate-timeline changes and entry edits.
type TimeEntry struct {
	ID            int64
	Date          Date
	Start         ClockTime
	End           ClockTime
	ProjectID     int64
	AppliedRate   decimal.Decimal
	DurationHours decimal.Decimal
	AmountOwed    decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}

func (e *TimeEntry) IsDeleted() bool { return e.DeletedAt != nil }

// =============================================================================
// PROJECT
// =============================================================================

type Project struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

func (p *Project) IsDeleted() bool { return p.DeletedAt != nil }

// =============================================================================
// PAYMENT - Money received against the balance
// =============================================================================

type Payment struct {
	ID        int64
	Date      Date
	Amount    decimal.Decimal
	Notes     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

func (p *Payment) IsDeleted() bool { return p.DeletedAt != nil }

// =============================================================================
// INCIDENTAL - One-off charge or credit outside logged hours
// =============================================================================

type IncidentalKind string

const (
	// IncidentalOwed increases the balance owed (an extra charge).
	IncidentalOwed IncidentalKind = "owed"
	// IncidentalOwedBy decreases the balance owed (a credit).
	IncidentalOwedBy IncidentalKind = "owed_by"
)

func (k IncidentalKind) Valid() bool {
	return k == IncidentalOwed || k == IncidentalOwedBy
}

type Incidental struct {
	ID          int64
	Date        Date
	Amount      decimal.Decimal
	Description string
	Kind        IncidentalKind
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

func (i *Incidental) IsDeleted() bool { return i.DeletedAt != nil }
