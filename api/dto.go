/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the REST API, decoupled from the ledger types so the
  wire contract can evolve without touching the domain.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  Serialized as strings with two decimal places. This is the
  presentation boundary: the ledger computes unrounded, responses round.
  Money in requests travels as strings ("50.00") so precision survives decoding.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// PAY RATES
// =============================================================================

type PayRateDTO struct {
	ID            int64   `json:"id"`
	HourlyRate    string  `json:"hourly_rate"`
	EffectiveDate string  `json:"effective_date"`
	EndDate       *string `json:"end_date,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

type CreatePayRateRequest struct {
	HourlyRate    string `json:"hourly_rate"`
	EffectiveDate string `json:"effective_date"`
}

func toPayRateDTO(r *ledger.PayRate) PayRateDTO {
	dto := PayRateDTO{
		ID:            r.ID,
		HourlyRate:    r.HourlyRate.StringFixed(2),
		EffectiveDate: r.EffectiveDate.String(),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.EndDate != nil {
		s := r.EndDate.String()
		dto.EndDate = &s
	}
	if r.UpdatedAt != nil {
		s := r.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

type TimeEntryDTO struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ProjectID     int64  `json:"project_id"`
	AppliedRate   string `json:"applied_pay_rate"`
	DurationHours string `json:"duration_hours"`
	AmountOwed    string `json:"amount_owed"`
	Notes         string  `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

type CreateTimeEntryRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	ProjectID int64  `json:"project_id"`
	Notes     string `json:"notes"`
}

type UpdateTimeEntryRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

func toTimeEntryDTO(e *ledger.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:            e.ID,
		Date:          e.Date.String(),
		StartTime:     e.Start.String(),
		EndTime:       e.End.String(),
		ProjectID:     e.ProjectID,
		AppliedRate:   e.AppliedRate.StringFixed(2),
		DurationHours: e.DurationHours.StringFixed(2),
		AmountOwed:    e.AmountOwed.StringFixed(2),
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.UpdatedAt != nil {
		s := e.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

// =============================================================================
// PROJECTS
// =============================================================================

type ProjectDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func toProjectDTO(p *ledger.Project) ProjectDTO {
	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

type PaymentRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Notes  string `json:"notes"`
}

func toPaymentDTO(p *ledger.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        p.ID,
		Date:      p.Date.String(),
		Amount:    p.Amount.StringFixed(2),
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// INCIDENTALS
// =============================================================================

type IncidentalDTO struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	CreatedAt   string `json:"created_at"`
}

type IncidentalRequest struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

func toIncidentalDTO(i *ledger.Incidental) IncidentalDTO {
	return IncidentalDTO{
		ID:          i.ID,
		Date:        i.Date.String(),
		Amount:      i.Amount.StringFixed(2),
		Description: i.Description,
		Kind:        string(i.Kind),
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

type BalanceSummaryDTO struct {
	TotalOwed  string `json:"total_owed"`
	TotalPaid  string `json:"total_paid"`
	Balance    string `json:"balance"`
	EntryCount int    `json:"entry_count"`
	TotalHours string `json:"total_hours"`
}

type ProjectHoursDTO struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Hours       string `json:"hours"`
}

// =============================================================================
// CSV IMPORT / ERRORS
// =============================================================================

type ImportResultDTO struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
