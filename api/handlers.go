/*
handlers.go - HTTP handlers for the billing ledger API

PURPOSE:
  Exposes the ledger services over REST. Handlers parse and validate the
  wire format, delegate to the services, and map errors onto HTTP status
  codes. No billing logic lives here.

ERROR HANDLING:
  - 400: validation failures (and the documented PUT-on-payrate refusal)
  - 404: missing records
  - 409: no pay rate covers the requested date (client-correctable state)
  - 500: integrity violations and everything unexpected

RATE IMMUTABILITY:
  PUT /api/v1/payrates/{id} always answers 400: an hourly rate or
  effective date is never edited. Clients create a new rate instead and
  the timeline maintainer closes the old one.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing and middleware
  - csv.go: CSV import/export endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrFrey75/TimePE/ledger"
)

// Handler holds the service dependencies for all HTTP handlers.
type Handler struct {
	Rates       *ledger.RateService
	Entries     *ledger.EntryService
	Projects    *ledger.ProjectService
	Payments    *ledger.PaymentService
	Incidentals *ledger.IncidentalService
	Dashboard   *ledger.DashboardService
}

func NewHandler(rates *ledger.RateService, entries *ledger.EntryService, projects *ledger.ProjectService,
	payments *ledger.PaymentService, incidentals *ledger.IncidentalService, dashboard *ledger.DashboardService) *Handler {
	return &Handler{
		Rates:       rates,
		Entries:     entries,
		Projects:    projects,
		Payments:    payments,
		Incidentals: incidentals,
		Dashboard:   dashboard,
	}
}

// =============================================================================
// PAY RATES
// =============================================================================

func (h *Handler) ListPayRates(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	rates, err := h.Rates.ListRates(r.Context(), includeDeleted)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]PayRateDTO, 0, len(rates))
	for i := range rates {
		dtos = append(dtos, toPayRateDTO(&rates[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetCurrentPayRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Rates.CurrentRate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if rate == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no current pay rate"})
		return
	}
	writeJSON(w, http.StatusOK, toPayRateDTO(rate))
}

func (h *Handler) GetPayRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rate, err := h.Rates.RateByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rate == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "pay rate not found"})
		return
	}
	writeJSON(w, http.StatusOK, toPayRateDTO(rate))
}

func (h *Handler) CreatePayRate(w http.ResponseWriter, r *http.Request) {
	var req CreatePayRateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hourly, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid hourly_rate"})
		return
	}
	effective, err := ledger.ParseDate(req.EffectiveDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid effective_date"})
		return
	}

	rate, err := h.Rates.CreateRate(r.Context(), hourly, effective)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayRateDTO(rate))
}

// UpdatePayRate always refuses. Rates are immutable; the timeline only
// moves forward by creating a new rate.
func (h *Handler) UpdatePayRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rate, err := h.Rates.RateByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rate == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "pay rate not found"})
		return
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: "pay rates cannot be updated; create a new pay rate with a new effective date instead",
	})
}

func (h *Handler) DeletePayRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Rates.DeleteRate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		entries []ledger.TimeEntry
		err     error
	)
	switch {
	case q.Get("from") != "" && q.Get("to") != "":
		var from, to ledger.Date
		if from, err = ledger.ParseDate(q.Get("from")); err == nil {
			to, err = ledger.ParseDate(q.Get("to"))
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date range"})
			return
		}
		entries, err = h.Entries.EntriesInRange(r.Context(), from, to)
	case q.Get("project_id") != "":
		var projectID int64
		projectID, err = strconv.ParseInt(q.Get("project_id"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid project_id"})
			return
		}
		entries, err = h.Entries.EntriesByProject(r.Context(), projectID)
	default:
		entries, err = h.Entries.ListEntries(r.Context(), false)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]TimeEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toTimeEntryDTO(&entries[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.Entries.EntryByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "time entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, toTimeEntryDTO(entry))
}

func (h *Handler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, start, end, ok := parseEntryTimes(w, req.Date, req.StartTime, req.EndTime)
	if !ok {
		return
	}

	entry, err := h.Entries.CreateEntry(r.Context(), date, start, end, req.ProjectID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeEntryDTO(entry))
}

func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateTimeEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, start, end, ok := parseEntryTimes(w, req.Date, req.StartTime, req.EndTime)
	if !ok {
		return
	}

	entry, err := h.Entries.UpdateEntry(r.Context(), id, date, start, end, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeEntryDTO(entry))
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Entries.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECTS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var (
		projects []ledger.Project
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		projects, err = h.Projects.ActiveProjects(r.Context())
	} else {
		projects, err = h.Projects.ListProjects(r.Context(), false)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for i := range projects {
		dtos = append(dtos, toProjectDTO(&projects[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	project, err := h.Projects.ProjectByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if project == nil || project.IsDeleted() {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "project not found"})
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	project, err := h.Projects.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(project))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	project, err := h.Projects.UpdateProject(r.Context(), id, req.Name, req.Description, req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Projects.DeleteProject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Payments.ListPayments(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]PaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, toPaymentDTO(&payments[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	date, amount, req, ok := parseMoneyBody(w, r)
	if !ok {
		return
	}
	payment, err := h.Payments.CreatePayment(r.Context(), date, amount, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	date, amount, req, ok := parseMoneyBody(w, r)
	if !ok {
		return
	}
	payment, err := h.Payments.UpdatePayment(r.Context(), id, date, amount, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Payments.DeletePayment(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INCIDENTALS
// =============================================================================

func (h *Handler) ListIncidentals(w http.ResponseWriter, r *http.Request) {
	incidentals, err := h.Incidentals.ListIncidentals(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]IncidentalDTO, 0, len(incidentals))
	for i := range incidentals {
		dtos = append(dtos, toIncidentalDTO(&incidentals[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateIncidental(w http.ResponseWriter, r *http.Request) {
	req, date, amount, ok := parseIncidentalBody(w, r)
	if !ok {
		return
	}
	incidental, err := h.Incidentals.CreateIncidental(r.Context(), date, amount,
		req.Description, ledger.IncidentalKind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncidentalDTO(incidental))
}

func (h *Handler) UpdateIncidental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, date, amount, ok := parseIncidentalBody(w, r)
	if !ok {
		return
	}
	incidental, err := h.Incidentals.UpdateIncidental(r.Context(), id, date, amount,
		req.Description, ledger.IncidentalKind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncidentalDTO(incidental))
}

func (h *Handler) DeleteIncidental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Incidentals.DeleteIncidental(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetBalanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Dashboard.BalanceSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceSummaryDTO{
		TotalOwed:  summary.TotalOwed.StringFixed(2),
		TotalPaid:  summary.TotalPaid.StringFixed(2),
		Balance:    summary.Balance.StringFixed(2),
		EntryCount: summary.EntryCount,
		TotalHours: summary.TotalHours.StringFixed(2),
	})
}

func (h *Handler) GetRecentEntries(w http.ResponseWriter, r *http.Request) {
	count := 10
	if c := r.URL.Query().Get("count"); c != "" {
		if parsed, err := strconv.Atoi(c); err == nil && parsed > 0 {
			count = parsed
		}
	}
	entries, err := h.Dashboard.RecentEntries(r.Context(), count)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]TimeEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toTimeEntryDTO(&entries[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProjectHours(w http.ResponseWriter, r *http.Request) {
	var from, to *ledger.Date
	q := r.URL.Query()
	if q.Get("from") != "" && q.Get("to") != "" {
		f, err := ledger.ParseDate(q.Get("from"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid from date"})
			return
		}
		t, err := ledger.ParseDate(q.Get("to"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid to date"})
			return
		}
		from, to = &f, &t
	}

	summary, err := h.Dashboard.ProjectHoursSummary(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ProjectHoursDTO, 0, len(summary))
	for _, ph := range summary {
		dtos = append(dtos, ProjectHoursDTO{
			ProjectID:   ph.ProjectID,
			ProjectName: ph.ProjectName,
			Hours:       ph.Hours.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetWeeklyHours(w http.ResponseWriter, r *http.Request) {
	weekStart, err := ledger.ParseDate(r.URL.Query().Get("week_start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid week_start"})
		return
	}
	hours, err := h.Dashboard.WeeklyHours(r.Context(), weekStart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hours": hours.StringFixed(2)})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeError maps ledger errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case ledger.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrNoRateForDate):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrIntegrity):
		// Operator attention needed; do not leak invariant details.
		log.Printf("integrity violation: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func parseEntryTimes(w http.ResponseWriter, dateStr, startStr, endStr string) (ledger.Date, ledger.ClockTime, ledger.ClockTime, bool) {
	date, err := ledger.ParseDate(dateStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		return ledger.Date{}, ledger.ClockTime{}, ledger.ClockTime{}, false
	}
	start, err := ledger.ParseClockTime(startStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid start_time"})
		return ledger.Date{}, ledger.ClockTime{}, ledger.ClockTime{}, false
	}
	end, err := ledger.ParseClockTime(endStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid end_time"})
		return ledger.Date{}, ledger.ClockTime{}, ledger.ClockTime{}, false
	}
	return date, start, end, true
}

func parseMoneyBody(w http.ResponseWriter, r *http.Request) (ledger.Date, decimal.Decimal, PaymentRequest, bool) {
	var req PaymentRequest
	if !decodeBody(w, r, &req) {
		return ledger.Date{}, decimal.Decimal{}, req, false
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		return ledger.Date{}, decimal.Decimal{}, req, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		return ledger.Date{}, decimal.Decimal{}, req, false
	}
	return date, amount, req, true
}

func parseIncidentalBody(w http.ResponseWriter, r *http.Request) (IncidentalRequest, ledger.Date, decimal.Decimal, bool) {
	var req IncidentalRequest
	if !decodeBody(w, r, &req) {
		return req, ledger.Date{}, decimal.Decimal{}, false
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		return req, ledger.Date{}, decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		return req, ledger.Date{}, decimal.Decimal{}, false
	}
	return req, date, amount, true
}
