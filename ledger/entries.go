/*
entries.go - Time-entry orchestration

PURPOSE:
  EntryService creates and maintains billable time entries. Creation
  composes the rate resolver, a project existence check, and the
  earnings calculator:

    resolve rate for date -> verify project -> compute earnings
      -> persist entry with the rate snapshotted

SNAPSHOT CONTRACT:
  AppliedRate, DurationHours and AmountOwed are written once, at
  creation. Edits to date/start/end/notes never re-resolve the rate or
  recompute the amount; later changes to the rate timeline never touch
  existing entries. This is intentional historical-billing behavior,
  not an oversight.

SEE ALSO:
  - rates.go: RateForDate
  - earnings.go: ComputeEarnings
*/
package ledger

import (
	"context"
	"time"
)

// RateResolver answers "which rate applies on day D". A nil rate with a
// nil error means none does.
type RateResolver interface {
	RateForDate(ctx context.Context, d Date) (*PayRate, error)
}

// ProjectFinder is the narrow view of project storage the orchestrator
// needs. A missing project and a soft-deleted one are treated the same.
type ProjectFinder interface {
	ProjectByID(ctx context.Context, id int64) (*Project, error)
}

// EntryService coordinates creation and maintenance of time entries.
type EntryService struct {
	entries  EntryStore
	rates    RateResolver
	projects ProjectFinder
}

func NewEntryService(entries EntryStore, rates RateResolver, projects ProjectFinder) *EntryService {
	return &EntryService{entries: entries, rates: rates, projects: projects}
}

// CreateEntry logs a billable work interval. The hourly rate effective on
// date is captured into the entry; no rate covering the date is a
// client-correctable failure and nothing is persisted.
func (s *EntryService) CreateEntry(ctx context.Context, date Date, start, end ClockTime, projectID int64, notes string) (*TimeEntry, error) {
	if err := validateEntryFields(date, start, end); err != nil {
		return nil, err
	}

	rate, err := s.rates.RateForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, &NoRateForDateError{Date: date}
	}

	project, err := s.projects.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || project.IsDeleted() {
		return nil, &ProjectNotFoundError{ProjectID: projectID}
	}

	earnings := ComputeEarnings(start, end, rate.HourlyRate)

	entry := &TimeEntry{
		Date:          date,
		Start:         start,
		End:           end,
		ProjectID:     projectID,
		AppliedRate:   rate.HourlyRate,
		DurationHours: earnings.Hours,
		AmountOwed:    earnings.Amount,
		Notes:         notes,
	}
	if err := s.entries.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry edits the mutable fields of an entry: date, start, end and
// notes. AppliedRate, DurationHours and AmountOwed keep their
// creation-time values.
func (s *EntryService) UpdateEntry(ctx context.Context, id int64, date Date, start, end ClockTime, notes string) (*TimeEntry, error) {
	if err := validateEntryFields(date, start, end); err != nil {
		return nil, err
	}

	entry, err := s.entries.EntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.IsDeleted() {
		return nil, ErrEntryNotFound
	}

	entry.Date = date
	entry.Start = start
	entry.End = end
	entry.Notes = notes
	now := time.Now().UTC()
	entry.UpdatedAt = &now

	if err := s.entries.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry soft-deletes an entry; it disappears from range and
// project queries but stays in storage.
func (s *EntryService) DeleteEntry(ctx context.Context, id int64) error {
	entry, err := s.entries.EntryByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil || entry.IsDeleted() {
		return ErrEntryNotFound
	}
	return s.entries.SoftDeleteEntry(ctx, id)
}

func (s *EntryService) EntryByID(ctx context.Context, id int64) (*TimeEntry, error) {
	return s.entries.EntryByID(ctx, id)
}

func (s *EntryService) EntriesInRange(ctx context.Context, from, to Date) ([]TimeEntry, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date_range", Reason: "end before start"}
	}
	return s.entries.EntriesInRange(ctx, from, to)
}

func (s *EntryService) EntriesByProject(ctx context.Context, projectID int64) ([]TimeEntry, error) {
	return s.entries.EntriesByProject(ctx, projectID)
}

func (s *EntryService) ListEntries(ctx context.Context, includeDeleted bool) ([]TimeEntry, error) {
	return s.entries.ListEntries(ctx, includeDeleted)
}

func validateEntryFields(date Date, start, end ClockTime) error {
	if date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if !start.Valid() {
		return &ValidationError{Field: "start_time", Reason: "out of range"}
	}
	if !end.Valid() {
		return &ValidationError{Field: "end_time", Reason: "out of range"}
	}
	return nil
}
