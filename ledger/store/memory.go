// Package store provides an in-memory ledger.Store for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/woodline/sitebook/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	*ledger.Hub

	mu         sync.RWMutex
	workers    map[ledger.WorkerID]ledger.Worker
	projects   map[ledger.ProjectID]ledger.Project
	attendance map[ledger.AttendanceKey]ledger.AttendanceRecord
	payments   []ledger.Payment
	rates      []ledger.Rate
}

func NewMemory() *Memory {
	return &Memory{
		Hub:        ledger.NewHub(),
		workers:    make(map[ledger.WorkerID]ledger.Worker),
		projects:   make(map[ledger.ProjectID]ledger.Project),
		attendance: make(map[ledger.AttendanceKey]ledger.AttendanceRecord),
	}
}

var _ ledger.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Workers
// -----------------------------------------------------------------------------

func (m *Memory) SaveWorker(_ context.Context, w ledger.Worker) error {
	m.mu.Lock()
	m.workers[w.ID] = w
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "workers", Key: string(w.ID), Kind: ledger.ChangeUpserted})
	return nil
}

func (m *Memory) GetWorker(_ context.Context, id ledger.WorkerID) (*ledger.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.workers[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]ledger.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteWorker(_ context.Context, id ledger.WorkerID) error {
	m.mu.Lock()
	delete(m.workers, id)
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "workers", Key: string(id), Kind: ledger.ChangeDeleted})
	return nil
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (m *Memory) SaveProject(_ context.Context, p ledger.Project) error {
	m.mu.Lock()
	m.projects[p.ID] = p
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "projects", Key: string(p.ID), Kind: ledger.ChangeUpserted})
	return nil
}

func (m *Memory) GetProject(_ context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteProject(_ context.Context, id ledger.ProjectID) error {
	m.mu.Lock()
	delete(m.projects, id)
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "projects", Key: string(id), Kind: ledger.ChangeDeleted})
	return nil
}

// -----------------------------------------------------------------------------
// Attendance
// -----------------------------------------------------------------------------

func (m *Memory) UpsertAttendance(_ context.Context, rec ledger.AttendanceRecord) error {
	m.mu.Lock()
	m.attendance[rec.Key()] = rec
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "attendance", Key: rec.ID, Kind: ledger.ChangeUpserted})
	return nil
}

func (m *Memory) GetAttendance(_ context.Context, key ledger.AttendanceKey) (*ledger.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.attendance[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (m *Memory) DeleteAttendance(_ context.Context, key ledger.AttendanceKey) (bool, error) {
	m.mu.Lock()
	rec, ok := m.attendance[key]
	if ok {
		delete(m.attendance, key)
	}
	m.mu.Unlock()
	if ok {
		m.Publish(ledger.ChangeEvent{Collection: "attendance", Key: rec.ID, Kind: ledger.ChangeDeleted})
	}
	return ok, nil
}

func (m *Memory) ListAttendance(_ context.Context, f ledger.AttendanceFilter) ([]ledger.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.AttendanceRecord
	for _, rec := range m.attendance {
		if f.WorkerID != "" && rec.WorkerID != f.WorkerID {
			continue
		}
		if f.ProjectID != "" && rec.ProjectID != f.ProjectID {
			continue
		}
		if f.From != nil && rec.Day < ledger.DayOf(*f.From) {
			continue
		}
		if f.To != nil && rec.Day > ledger.DayOf(*f.To) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

func (m *Memory) AppendPayment(_ context.Context, p ledger.Payment) error {
	m.mu.Lock()
	m.payments = append(m.payments, p)
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "payments", Key: p.ID, Kind: ledger.ChangeUpserted})
	return nil
}

func (m *Memory) ListPayments(_ context.Context, f ledger.PaymentFilter) ([]ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Payment
	for _, p := range m.payments {
		if f.WorkerID != "" && p.WorkerID != f.WorkerID {
			continue
		}
		if f.ProjectID != "" && p.ProjectID != f.ProjectID {
			continue
		}
		if f.From != nil && p.Day < ledger.DayOf(*f.From) {
			continue
		}
		if f.To != nil && p.Day > ledger.DayOf(*f.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// -----------------------------------------------------------------------------
// Rates
// -----------------------------------------------------------------------------

func (m *Memory) CurrentRate(_ context.Context) (*ledger.Rate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.rates) == 0 {
		return nil, nil
	}
	r := m.rates[len(m.rates)-1]
	return &r, nil
}

func (m *Memory) SetRate(_ context.Context, r ledger.Rate) error {
	m.mu.Lock()
	m.rates = append(m.rates, r)
	m.mu.Unlock()
	m.Publish(ledger.ChangeEvent{Collection: "rates", Key: r.EffectiveAt.Format("2006-01-02T15:04:05"), Kind: ledger.ChangeUpserted})
	return nil
}

func (m *Memory) RateHistory(_ context.Context) ([]ledger.Rate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Rate, len(m.rates))
	copy(out, m.rates)
	return out, nil
}
