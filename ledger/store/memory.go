// Package store provides an in-memory implementation of the ledger
// storage contracts, used by tests and development.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrFrey75/TimePE/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	rates       map[int64]ledger.PayRate
	entries     map[int64]ledger.TimeEntry
	projects    map[int64]ledger.Project
	payments    map[int64]ledger.Payment
	incidentals map[int64]ledger.Incidental
	nextID      int64
}

func NewMemory() *Memory {
	return &Memory{
		rates:       make(map[int64]ledger.PayRate),
		entries:     make(map[int64]ledger.TimeEntry),
		projects:    make(map[int64]ledger.Project),
		payments:    make(map[int64]ledger.Payment),
		incidentals: make(map[int64]ledger.Incidental),
	}
}

func (m *Memory) allocID() int64 {
	m.nextID++
	return m.nextID
}

// =============================================================================
// RATE STORE
// =============================================================================

func (m *Memory) InsertRate(_ context.Context, r *ledger.PayRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.allocID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.rates[r.ID] = *r
	return nil
}

func (m *Memory) UpdateRate(_ context.Context, r *ledger.PayRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rates[r.ID]; !ok {
		return ledger.ErrRateNotFound
	}
	m.rates[r.ID] = *r
	return nil
}

func (m *Memory) RateByID(_ context.Context, id int64) (*ledger.PayRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rates[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) OpenEndedRate(_ context.Context) (*ledger.PayRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var open []ledger.PayRate
	for _, r := range m.rates {
		if !r.IsDeleted() && r.IsOpenEnded() {
			open = append(open, r)
		}
	}
	if len(open) == 0 {
		return nil, nil
	}
	if len(open) > 1 {
		return nil, &ledger.IntegrityError{Detail: "more than one open-ended pay rate"}
	}
	return &open[0], nil
}

func (m *Memory) RateCoveringDate(_ context.Context, d ledger.Date) (*ledger.PayRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *ledger.PayRate
	for _, r := range m.rates {
		r := r
		if r.IsDeleted() || !r.Covers(d) {
			continue
		}
		// Overlaps are an invariant violation; prefer the most recently
		// effective rate rather than crashing.
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = &r
		}
	}
	return best, nil
}

func (m *Memory) ListRates(_ context.Context, includeDeleted bool) ([]ledger.PayRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.PayRate
	for _, r := range m.rates {
		if !includeDeleted && r.IsDeleted() {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveDate.After(result[j].EffectiveDate)
	})
	return result, nil
}

func (m *Memory) SoftDeleteRate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rates[id]
	if !ok {
		return ledger.ErrRateNotFound
	}
	now := time.Now().UTC()
	r.DeletedAt = &now
	m.rates[id] = r
	return nil
}

// WithTx gives single-writer all-or-nothing semantics: the rate table is
// snapshotted up front and restored when fn fails. Good enough for tests;
// the sqlite store provides real transactional isolation.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.RateStore) error) error {
	m.mu.Lock()
	snapshot := make(map[int64]ledger.PayRate, len(m.rates))
	for id, r := range m.rates {
		snapshot[id] = r
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rates = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// =============================================================================
// ENTRY STORE
// =============================================================================

func (m *Memory) InsertEntry(_ context.Context, e *ledger.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = m.allocID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.entries[e.ID] = *e
	return nil
}

func (m *Memory) UpdateEntry(_ context.Context, e *ledger.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[e.ID]; !ok {
		return ledger.ErrEntryNotFound
	}
	m.entries[e.ID] = *e
	return nil
}

func (m *Memory) EntryByID(_ context.Context, id int64) (*ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) EntriesInRange(_ context.Context, from, to ledger.Date) ([]ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TimeEntry
	for _, e := range m.entries {
		if e.IsDeleted() {
			continue
		}
		if e.Date.AfterOrEqual(from) && e.Date.BeforeOrEqual(to) {
			result = append(result, e)
		}
	}
	sortEntriesAsc(result)
	return result, nil
}

func (m *Memory) EntriesByProject(_ context.Context, projectID int64) ([]ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TimeEntry
	for _, e := range m.entries {
		if !e.IsDeleted() && e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	sortEntriesAsc(result)
	return result, nil
}

func (m *Memory) ListEntries(_ context.Context, includeDeleted bool) ([]ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TimeEntry
	for _, e := range m.entries {
		if !includeDeleted && e.IsDeleted() {
			continue
		}
		result = append(result, e)
	}
	sortEntriesAsc(result)
	return result, nil
}

func (m *Memory) RecentEntries(_ context.Context, n int) ([]ledger.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.TimeEntry
	for _, e := range m.entries {
		if !e.IsDeleted() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].Start.Minutes() > result[j].Start.Minutes()
	})
	if len(result) > n {
		result = result[:n]
	}
	return result, nil
}

func (m *Memory) SoftDeleteEntry(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return ledger.ErrEntryNotFound
	}
	now := time.Now().UTC()
	e.DeletedAt = &now
	m.entries[id] = e
	return nil
}

func sortEntriesAsc(entries []ledger.TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].Start.Minutes() < entries[j].Start.Minutes()
	})
}

// =============================================================================
// PROJECT STORE
// =============================================================================

func (m *Memory) InsertProject(_ context.Context, p *ledger.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.allocID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProject(_ context.Context, p *ledger.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.ID]; !ok {
		return ledger.ErrProjectNotFound
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *Memory) ProjectByID(_ context.Context, id int64) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) ProjectByName(_ context.Context, name string) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.projects {
		if !p.IsDeleted() && strings.EqualFold(p.Name, name) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListProjects(_ context.Context, includeDeleted bool) ([]ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Project
	for _, p := range m.projects {
		if !includeDeleted && p.IsDeleted() {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

func (m *Memory) SoftDeleteProject(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return ledger.ErrProjectNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	m.projects[id] = p
	return nil
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

func (m *Memory) InsertPayment(_ context.Context, p *ledger.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.allocID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *Memory) UpdatePayment(_ context.Context, p *ledger.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[p.ID]; !ok {
		return ledger.ErrPaymentNotFound
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *Memory) PaymentByID(_ context.Context, id int64) (*ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) PaymentsInRange(_ context.Context, from, to ledger.Date) ([]ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Payment
	for _, p := range m.payments {
		if p.IsDeleted() {
			continue
		}
		if p.Date.AfterOrEqual(from) && p.Date.BeforeOrEqual(to) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *Memory) ListPayments(_ context.Context, includeDeleted bool) ([]ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Payment
	for _, p := range m.payments {
		if !includeDeleted && p.IsDeleted() {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *Memory) SoftDeletePayment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[id]
	if !ok {
		return ledger.ErrPaymentNotFound
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	m.payments[id] = p
	return nil
}

// =============================================================================
// INCIDENTAL STORE
// =============================================================================

func (m *Memory) InsertIncidental(_ context.Context, i *ledger.Incidental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i.ID = m.allocID()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	m.incidentals[i.ID] = *i
	return nil
}

func (m *Memory) UpdateIncidental(_ context.Context, i *ledger.Incidental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incidentals[i.ID]; !ok {
		return ledger.ErrIncidentalNotFound
	}
	m.incidentals[i.ID] = *i
	return nil
}

func (m *Memory) IncidentalByID(_ context.Context, id int64) (*ledger.Incidental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.incidentals[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (m *Memory) IncidentalsInRange(_ context.Context, from, to ledger.Date) ([]ledger.Incidental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Incidental
	for _, i := range m.incidentals {
		if i.IsDeleted() {
			continue
		}
		if i.Date.AfterOrEqual(from) && i.Date.BeforeOrEqual(to) {
			result = append(result, i)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *Memory) ListIncidentals(_ context.Context, includeDeleted bool) ([]ledger.Incidental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Incidental
	for _, i := range m.incidentals {
		if !includeDeleted && i.IsDeleted() {
			continue
		}
		result = append(result, i)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *Memory) SoftDeleteIncidental(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.incidentals[id]
	if !ok {
		return ledger.ErrIncidentalNotFound
	}
	now := time.Now().UTC()
	i.DeletedAt = &now
	m.incidentals[id] = i
	return nil
}
