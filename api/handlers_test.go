/*
handlers_test.go - HTTP-level tests for the ledger API

Exercises the router end to end against the in-memory store: status code
mapping, the pay-rate immutability refusal, and the rate-snapshot
behavior as seen through the wire format.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

type testAPI struct {
	router   http.Handler
	rates    *ledger.RateService
	projects *ledger.ProjectService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mem := store.NewMemory()
	rates := ledger.NewRateService(mem)
	projects := ledger.NewProjectService(mem)
	entries := ledger.NewEntryService(mem, rates, projects)
	payments := ledger.NewPaymentService(mem)
	incidentals := ledger.NewIncidentalService(mem)
	dashboard := ledger.NewDashboardService(mem, mem, mem, mem)

	h := NewHandler(rates, entries, projects, payments, incidentals, dashboard)
	return &testAPI{
		router:   NewRouter(h, []string{"*"}),
		rates:    rates,
		projects: projects,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seed(t *testing.T) *ledger.Project {
	t.Helper()
	ctx := context.Background()
	_, err := a.rates.CreateRate(ctx, decimal.RequireFromString("50.00"), ledger.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	project, err := a.projects.CreateProject(ctx, "Acme Website", "")
	require.NoError(t, err)
	return project
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

// =============================================================================
// PAY RATE ENDPOINT TESTS
// =============================================================================

func TestAPI_CreatePayRate(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/payrates", map[string]any{
		"hourly_rate":    "50.00",
		"effective_date": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto PayRateDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, "50.00", dto.HourlyRate)
	assert.Equal(t, "2025-01-01", dto.EffectiveDate)
	assert.Nil(t, dto.EndDate)
}

func TestAPI_CreatePayRate_Invalid(t *testing.T) {
	a := newTestAPI(t)

	for name, body := range map[string]map[string]any{
		"zero rate":    {"hourly_rate": "0", "effective_date": "2025-01-01"},
		"bad rate":     {"hourly_rate": "fifty", "effective_date": "2025-01-01"},
		"bad date":     {"hourly_rate": "50.00", "effective_date": "Jan 1st"},
		"missing date": {"hourly_rate": "50.00"},
	} {
		rec := a.do(t, http.MethodPost, "/api/v1/payrates", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s: %s", name, rec.Body.String())
	}
}

func TestAPI_UpdatePayRate_AlwaysRefused(t *testing.T) {
	// Rates are immutable through the API. The refusal names the
	// supported alternative.
	a := newTestAPI(t)
	a.seed(t)

	rec := a.do(t, http.MethodPut, "/api/v1/payrates/1", map[string]any{
		"hourly_rate": "99.00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Contains(t, resp.Error, "create a new pay rate")

	// Unknown rate still 404s so clients can tell the cases apart.
	rec = a.do(t, http.MethodPut, "/api/v1/payrates/999", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_RateTransition_VisibleOverWire(t *testing.T) {
	a := newTestAPI(t)
	a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/payrates", map[string]any{
		"hourly_rate":    "60.00",
		"effective_date": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/payrates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rates []PayRateDTO
	decodeInto(t, rec, &rates)
	require.Len(t, rates, 2)

	// Newest first; the old rate is closed the day before the new one.
	assert.Equal(t, "2025-06-01", rates[0].EffectiveDate)
	assert.Nil(t, rates[0].EndDate)
	require.NotNil(t, rates[1].EndDate)
	assert.Equal(t, "2025-05-31", *rates[1].EndDate)
}

// =============================================================================
// TIME ENTRY ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateTimeEntry_SnapshotsRate(t *testing.T) {
	a := newTestAPI(t)
	project := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2025-03-10",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": project.ID,
		"notes":      "sprint work",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto TimeEntryDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, "50.00", dto.AppliedRate)
	assert.Equal(t, "8.00", dto.DurationHours)
	assert.Equal(t, "400.00", dto.AmountOwed)
}

func TestAPI_CreateTimeEntry_NoRateForDate_Conflict(t *testing.T) {
	// A date before the first rate is a 409: the client can fix it by
	// backdating a rate, not by changing the request shape.
	a := newTestAPI(t)
	project := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2024-12-15",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": project.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestAPI_CreateTimeEntry_MissingProject_NotFound(t *testing.T) {
	a := newTestAPI(t)
	a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2025-03-10",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestAPI_UpdateTimeEntry_KeepsAmount(t *testing.T) {
	a := newTestAPI(t)
	project := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2025-03-10",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": project.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created TimeEntryDTO
	decodeInto(t, rec, &created)

	rec = a.do(t, http.MethodPut, "/api/v1/timeentries/1", map[string]any{
		"date":       "2025-03-11",
		"start_time": "09:00",
		"end_time":   "13:00",
		"notes":      "shortened",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated TimeEntryDTO
	decodeInto(t, rec, &updated)
	assert.Equal(t, "13:00", updated.EndTime)
	assert.Equal(t, created.AmountOwed, updated.AmountOwed)
	assert.Equal(t, created.DurationHours, updated.DurationHours)
}

// =============================================================================
// DASHBOARD ENDPOINT TESTS
// =============================================================================

func TestAPI_DashboardSummary(t *testing.T) {
	a := newTestAPI(t)
	project := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2025-03-10",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": project.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/payments", map[string]any{
		"date":   "2025-03-14",
		"amount": "150.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/v1/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary BalanceSummaryDTO
	decodeInto(t, rec, &summary)
	assert.Equal(t, "400.00", summary.TotalOwed)
	assert.Equal(t, "150.00", summary.TotalPaid)
	assert.Equal(t, "250.00", summary.Balance)
	assert.Equal(t, 1, summary.EntryCount)
}

// =============================================================================
// CSV ENDPOINT TESTS
// =============================================================================

func TestAPI_CSVRoundTrip(t *testing.T) {
	// Export from one API, import into a fresh one: the entries come
	// back with amounts recomputed against the new timeline.
	src := newTestAPI(t)
	project := src.seed(t)

	rec := src.do(t, http.MethodPost, "/api/v1/timeentries", map[string]any{
		"date":       "2025-03-10",
		"start_time": "09:00",
		"end_time":   "17:00",
		"project_id": project.ID,
		"notes":      "export me",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = src.do(t, http.MethodGet, "/api/v1/timeentries/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	csvBody := rec.Body.String()
	assert.Contains(t, csvBody, "Date,Project,Start Time,End Time")
	assert.Contains(t, csvBody, "Acme Website")

	dst := newTestAPI(t)
	dst.seed(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeentries/import", bytes.NewBufferString(csvBody))
	importRec := httptest.NewRecorder()
	dst.router.ServeHTTP(importRec, req)
	require.Equal(t, http.StatusOK, importRec.Code, importRec.Body.String())

	var result ImportResultDTO
	require.NoError(t, json.NewDecoder(importRec.Body).Decode(&result))
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)

	rec = dst.do(t, http.MethodGet, "/api/v1/timeentries", nil)
	var entries []TimeEntryDTO
	decodeInto(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "400.00", entries[0].AmountOwed)
	assert.Equal(t, "export me", entries[0].Notes)
}
