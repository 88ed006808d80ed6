/*
balance.go - Running balance and dashboard aggregates

PURPOSE:
  DashboardService derives read-only views from the ledger records:

    total owed = sum(entry amounts) + sum(incidentals owed)
               - sum(incidentals owed-by)
    balance    = total owed - sum(payments)

  There is no stored balance column; the balance is always recomputed
  from the surviving (non-deleted) records, so it can never drift out
  of sync.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceSummary is the computed state of the ledger.
type BalanceSummary struct {
	TotalOwed  decimal.Decimal
	TotalPaid  decimal.Decimal
	Balance    decimal.Decimal
	EntryCount int
	TotalHours decimal.Decimal
}

// ProjectHours is the billable time accumulated against one project.
type ProjectHours struct {
	ProjectID   int64
	ProjectName string
	Hours       decimal.Decimal
}

// DashboardService aggregates ledger records into report views. It only
// reads; all mutation goes through the record services.
type DashboardService struct {
	entries     EntryStore
	payments    PaymentStore
	incidentals IncidentalStore
	projects    ProjectStore
}

func NewDashboardService(entries EntryStore, payments PaymentStore, incidentals IncidentalStore, projects ProjectStore) *DashboardService {
	return &DashboardService{
		entries:     entries,
		payments:    payments,
		incidentals: incidentals,
		projects:    projects,
	}
}

// BalanceSummary recomputes the running balance from all non-deleted
// records.
func (s *DashboardService) BalanceSummary(ctx context.Context) (*BalanceSummary, error) {
	entries, err := s.entries.ListEntries(ctx, false)
	if err != nil {
		return nil, err
	}
	incidentals, err := s.incidentals.ListIncidentals(ctx, false)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListPayments(ctx, false)
	if err != nil {
		return nil, err
	}

	timeOwed := decimal.Zero
	totalHours := decimal.Zero
	for _, e := range entries {
		timeOwed = timeOwed.Add(e.AmountOwed)
		totalHours = totalHours.Add(e.DurationHours)
	}

	incidentalNet := decimal.Zero
	for _, i := range incidentals {
		switch i.Kind {
		case IncidentalOwed:
			incidentalNet = incidentalNet.Add(i.Amount)
		case IncidentalOwedBy:
			incidentalNet = incidentalNet.Sub(i.Amount)
		}
	}

	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
	}

	totalOwed := timeOwed.Add(incidentalNet)
	return &BalanceSummary{
		TotalOwed:  totalOwed,
		TotalPaid:  totalPaid,
		Balance:    totalOwed.Sub(totalPaid),
		EntryCount: len(entries),
		TotalHours: totalHours,
	}, nil
}

// RecentEntries returns the n most recent entries, newest first.
func (s *DashboardService) RecentEntries(ctx context.Context, n int) ([]TimeEntry, error) {
	if n <= 0 {
		n = 10
	}
	return s.entries.RecentEntries(ctx, n)
}

// ProjectHoursSummary groups billable hours by project, optionally
// restricted to [from, to]. Projects with no entries are omitted.
func (s *DashboardService) ProjectHoursSummary(ctx context.Context, from, to *Date) ([]ProjectHours, error) {
	var (
		entries []TimeEntry
		err     error
	)
	if from != nil && to != nil {
		entries, err = s.entries.EntriesInRange(ctx, *from, *to)
	} else {
		entries, err = s.entries.ListEntries(ctx, false)
	}
	if err != nil {
		return nil, err
	}

	hoursByProject := make(map[int64]decimal.Decimal)
	var order []int64
	for _, e := range entries {
		if _, seen := hoursByProject[e.ProjectID]; !seen {
			order = append(order, e.ProjectID)
		}
		hoursByProject[e.ProjectID] = hoursByProject[e.ProjectID].Add(e.DurationHours)
	}

	summary := make([]ProjectHours, 0, len(order))
	for _, id := range order {
		name := ""
		if p, err := s.projects.ProjectByID(ctx, id); err != nil {
			return nil, err
		} else if p != nil {
			name = p.Name
		}
		summary = append(summary, ProjectHours{
			ProjectID:   id,
			ProjectName: name,
			Hours:       hoursByProject[id],
		})
	}
	return summary, nil
}

// WeeklyHours sums billable hours for the seven days starting at
// weekStart.
func (s *DashboardService) WeeklyHours(ctx context.Context, weekStart Date) (decimal.Decimal, error) {
	entries, err := s.entries.EntriesInRange(ctx, weekStart, weekStart.AddDays(6))
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.DurationHours)
	}
	return total, nil
}
