/*
csv.go - CSV export and import for time entries

PURPOSE:
  Round-trips time entries as CSV for spreadsheet review and for moving
  data between installations. Export writes the presentation format
  (amounts rounded to two decimals). Import only reads date, project,
  start and end times, and notes: the applied rate and derived amounts
  are recomputed by the entry service against the rate timeline, never
  trusted from the file.

  WriteEntriesCSV and ImportEntriesCSV are also used by the export and
  import CLI commands, so they take plain io.Writer/io.Reader.

SEE ALSO:
  - handlers.go: error mapping and JSON helpers
  - cmd/timepe/main.go: CLI export/import
*/
package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/MrFrey75/TimePE/ledger"
)

var entryCSVHeader = []string{
	"Date", "Project", "Start Time", "End Time",
	"Duration (Hours)", "Pay Rate", "Amount Owed", "Notes",
}

// ExportTimeEntriesCSV streams all non-deleted entries, oldest first.
func (h *Handler) ExportTimeEntriesCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="time_entries.csv"`)

	if err := WriteEntriesCSV(r.Context(), w, h.Entries, h.Projects); err != nil {
		// Headers are already written; nothing useful to send the client.
		log.Printf("csv export failed: %v", err)
	}
}

// ImportTimeEntriesCSV reads entries from an uploaded CSV. Each row is
// created through the entry service, so rows dated before the first pay
// rate are rejected individually without aborting the rest of the file.
func (h *Handler) ImportTimeEntriesCSV(w http.ResponseWriter, r *http.Request) {
	result, err := ImportEntriesCSV(r.Context(), r.Body, h.Entries, h.Projects)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WriteEntriesCSV writes all non-deleted entries to w, oldest first.
func WriteEntriesCSV(ctx context.Context, w io.Writer, entries *ledger.EntryService, projects *ledger.ProjectService) error {
	all, err := entries.ListEntries(ctx, false)
	if err != nil {
		return err
	}

	names := map[int64]string{}
	projectList, err := projects.ListProjects(ctx, true)
	if err != nil {
		return err
	}
	for _, p := range projectList {
		names[p.ID] = p.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(entryCSVHeader); err != nil {
		return err
	}
	for i := range all {
		e := &all[i]
		record := []string{
			e.Date.String(),
			names[e.ProjectID],
			e.Start.String(),
			e.End.String(),
			e.DurationHours.StringFixed(2),
			e.AppliedRate.StringFixed(2),
			e.AmountOwed.StringFixed(2),
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportEntriesCSV reads entry rows from src and creates them through
// the entry service. Unknown project names are created on the fly. Bad
// rows are collected per line; only an unreadable header aborts.
func ImportEntriesCSV(ctx context.Context, src io.Reader, entries *ledger.EntryService, projects *ledger.ProjectService) (*ImportResultDTO, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols, err := entryColumnIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResultDTO{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if err := importEntryRecord(ctx, cols, record, entries, projects); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func importEntryRecord(ctx context.Context, cols entryColumns, record []string, entries *ledger.EntryService, projects *ledger.ProjectService) error {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := ledger.ParseDate(get(cols.date))
	if err != nil {
		return fmt.Errorf("invalid date %q", get(cols.date))
	}
	start, err := ledger.ParseClockTime(get(cols.start))
	if err != nil {
		return fmt.Errorf("invalid start time %q", get(cols.start))
	}
	end, err := ledger.ParseClockTime(get(cols.end))
	if err != nil {
		return fmt.Errorf("invalid end time %q", get(cols.end))
	}

	projectName := get(cols.project)
	if projectName == "" {
		return fmt.Errorf("missing project name")
	}
	project, err := projects.FindOrCreateProject(ctx, projectName)
	if err != nil {
		return err
	}

	_, err = entries.CreateEntry(ctx, date, start, end, project.ID, get(cols.notes))
	return err
}

var projectCSVHeader = []string{"Name", "Description", "Active"}

// ExportProjectsCSV streams all non-deleted projects.
func (h *Handler) ExportProjectsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="projects.csv"`)

	if err := WriteProjectsCSV(r.Context(), w, h.Projects); err != nil {
		log.Printf("csv export failed: %v", err)
	}
}

// ImportProjectsCSV loads projects from an uploaded CSV. Names already
// present (case-insensitively) are skipped, not duplicated.
func (h *Handler) ImportProjectsCSV(w http.ResponseWriter, r *http.Request) {
	result, err := ImportProjectsCSVFrom(r.Context(), r.Body, h.Projects)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WriteProjectsCSV writes all non-deleted projects to w.
func WriteProjectsCSV(ctx context.Context, w io.Writer, projects *ledger.ProjectService) error {
	all, err := projects.ListProjects(ctx, false)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(projectCSVHeader); err != nil {
		return err
	}
	for _, p := range all {
		active := "true"
		if !p.Active {
			active = "false"
		}
		if err := cw.Write([]string{p.Name, p.Description, active}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportProjectsCSVFrom reads project rows from src. Only the Name
// column is required.
func ImportProjectsCSVFrom(ctx context.Context, src io.Reader, projects *ledger.ProjectService) (*ImportResultDTO, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	nameCol, descCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "name":
			nameCol = i
		case "description":
			descCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("CSV header must include Name")
	}

	result := &ImportResultDTO{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing project name", line))
			continue
		}

		existing, err := projects.ProjectByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		description := ""
		if descCol >= 0 && descCol < len(record) {
			description = strings.TrimSpace(record[descCol])
		}
		if _, err := projects.CreateProject(ctx, name, description); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

type entryColumns struct {
	date, project, start, end, notes int
}

// entryColumnIndex locates required columns by header name, case-insensitively,
// so exports from older versions with extra or reordered columns still load.
func entryColumnIndex(header []string) (entryColumns, error) {
	cols := entryColumns{date: -1, project: -1, start: -1, end: -1, notes: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "project":
			cols.project = i
		case "start time":
			cols.start = i
		case "end time":
			cols.end = i
		case "notes":
			cols.notes = i
		}
	}
	if cols.date < 0 || cols.project < 0 || cols.start < 0 || cols.end < 0 {
		return cols, fmt.Errorf("CSV header must include Date, Project, Start Time, End Time")
	}
	return cols, nil
}
