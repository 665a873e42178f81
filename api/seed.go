/*
seed.go - Demo data loader

Populates an empty database with a small, realistic data set: a rate,
three workers, two projects, a week of attendance, and a couple of
payments. Intended for demos and local development; refuses to run
against a database that already has workers.
*/
package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodline/sitebook/ledger"
)

// SeedDemo handles POST /api/admin/seed.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := h.Store.ListWorkers(ctx)
	if err != nil {
		h.fail(w, "seed", err)
		return
	}
	if len(existing) > 0 {
		h.fail(w, "seed", ledger.ErrConflict)
		return
	}

	if err := h.Store.SetRate(ctx, ledger.NewRate(ledger.Rupees(150), time.Now().UTC())); err != nil {
		h.fail(w, "seed", err)
		return
	}

	workers := []ledger.Worker{
		{ID: "w-ramesh", Name: "Ramesh", Phone: "9800000001", Specialty: "carpenter", DailyWage: ledger.Rupees(500)},
		{ID: "w-suresh", Name: "Suresh", Phone: "9800000002", Specialty: "polisher", DailyWage: ledger.Rupees(400)},
		{ID: "w-mahesh", Name: "Mahesh", Phone: "9800000003", Specialty: "helper", DailyWage: ledger.Rupees(300)},
	}
	for _, wk := range workers {
		if err := h.Store.SaveWorker(ctx, wk); err != nil {
			h.fail(w, "seed", err)
			return
		}
	}

	rate, err := h.Store.CurrentRate(ctx)
	if err != nil {
		h.fail(w, "seed", err)
		return
	}
	names := []struct {
		name, village string
		size          float64
	}{
		{"Sharma house wardrobe", "Bilaspur", 120},
		{"Temple door restoration", "Kotla", 80},
	}
	var projectIDs []ledger.ProjectID
	for _, n := range names {
		p, err := ledger.NewProject(ledger.NewProjectInput{
			Name:    n.name,
			Village: n.village,
			Size:    decimal.NewFromFloat(n.size),
		}, rate)
		if err != nil {
			h.fail(w, "seed", err)
			return
		}
		if err := h.Store.SaveProject(ctx, p); err != nil {
			h.fail(w, "seed", err)
			return
		}
		projectIDs = append(projectIDs, p.ID)
	}

	// A week of marks on the first project.
	day := time.Now().UTC().AddDate(0, 0, -7)
	statuses := []ledger.Status{ledger.StatusFull, ledger.StatusFull, ledger.StatusHalf, ledger.StatusFull, ledger.StatusNight, ledger.StatusAbsent, ledger.StatusFull}
	for i, st := range statuses {
		for _, wk := range workers[:2] {
			if _, err := h.Recorder.Mark(ctx, wk.ID, projectIDs[0], day.AddDate(0, 0, i), st); err != nil {
				h.fail(w, "seed", err)
				return
			}
		}
	}

	for _, wk := range workers[:2] {
		if _, err := h.Payments.RecordPayment(ctx, wk.ID, ledger.Rupees(1000), time.Now().UTC(), projectIDs[0], "weekly advance"); err != nil {
			h.fail(w, "seed", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workers":  len(workers),
		"projects": len(projectIDs),
	})
}
