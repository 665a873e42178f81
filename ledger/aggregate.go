/*
aggregate.go - Derived financial totals

PURPOSE:
  Pure functions that replay attendance and payment records into
  per-worker, per-project, and per-month totals. Same input set, same
  totals - there is no caching and no dependence on record order.

SIGN CONVENTION:
  balance = earned - paid. Positive balance means the worker is still
  owed money.

PROFIT:
  Profit is only defined for completed projects (final income is unknown
  before completion). ProjectSummary.Profit is nil while the project is
  ongoing; callers must render that as "pending", never as a numeric
  zero or as -laborCost.

MONTHLY SERIES:
  Income is bucketed by project completion month; labor by attendance
  day's month. The two series are independent and are NOT expected to
  reconcile when a project spans a month boundary. That simplification
  is deliberate; this is not accrual accounting.
*/
package ledger

// =============================================================================
// PER-WORKER TOTALS
// =============================================================================

// WorkerSummary is the reconciled financial position of one worker.
type WorkerSummary struct {
	WorkerID    WorkerID
	WorkerName  string
	TotalEarned Money // sum of attendance amounts
	TotalPaid   Money // legacy paid + sum of payment amounts
	Balance     Money // earned - paid; positive = worker is owed
	DaysMarked  int   // attendance rows counted (absences included)
}

// SummarizeWorker computes totals for one worker. Records belonging to
// other workers are ignored, so callers may pass unfiltered sets.
func SummarizeWorker(w Worker, attendance []AttendanceRecord, payments []Payment) WorkerSummary {
	s := WorkerSummary{
		WorkerID:    w.ID,
		WorkerName:  w.Name,
		TotalEarned: Rupees(0),
		TotalPaid:   w.LegacyPaid,
	}
	for _, rec := range attendance {
		if rec.WorkerID != w.ID {
			continue
		}
		s.TotalEarned = s.TotalEarned.Add(rec.Amount)
		s.DaysMarked++
	}
	for _, p := range payments {
		if p.WorkerID != w.ID {
			continue
		}
		s.TotalPaid = s.TotalPaid.Add(p.Amount)
	}
	s.Balance = s.TotalEarned.Sub(s.TotalPaid)
	return s
}

// SummarizeWorkers computes a summary per worker over shared record sets.
func SummarizeWorkers(workers []Worker, attendance []AttendanceRecord, payments []Payment) []WorkerSummary {
	out := make([]WorkerSummary, 0, len(workers))
	for _, w := range workers {
		out = append(out, SummarizeWorker(w, attendance, payments))
	}
	return out
}

// =============================================================================
// PER-PROJECT TOTALS
// =============================================================================

// ProjectSummary is the financial position of one project.
type ProjectSummary struct {
	ProjectID ProjectID
	LaborCost Money

	// Profit is final amount minus labor cost, defined only once the
	// project is completed. Nil means pending.
	Profit *Money
}

// SummarizeProject computes labor cost and (for completed projects) profit.
func SummarizeProject(p Project, attendance []AttendanceRecord) ProjectSummary {
	s := ProjectSummary{ProjectID: p.ID, LaborCost: Rupees(0)}
	for _, rec := range attendance {
		if rec.ProjectID != p.ID {
			continue
		}
		s.LaborCost = s.LaborCost.Add(rec.Amount)
	}
	if p.Status == ProjectCompleted && p.FinalAmount != nil {
		profit := p.FinalAmount.Sub(s.LaborCost)
		s.Profit = &profit
	}
	return s
}

// =============================================================================
// MONTHLY SERIES
// =============================================================================

// MonthlySeries holds independent month-keyed ("2006-01") totals for
// completed-project income and attendance labor cost.
type MonthlySeries struct {
	Income map[string]Money
	Labor  map[string]Money
}

// MonthlyTotals buckets completed-project income by completion month and
// attendance payable amounts by attendance month.
func MonthlyTotals(projects []Project, attendance []AttendanceRecord) MonthlySeries {
	s := MonthlySeries{
		Income: make(map[string]Money),
		Labor:  make(map[string]Money),
	}
	for _, p := range projects {
		if p.Status != ProjectCompleted || p.FinalAmount == nil || p.EndDate == nil {
			continue
		}
		month := MonthOf(DayOf(*p.EndDate))
		cur, ok := s.Income[month]
		if !ok {
			cur = Rupees(0)
		}
		s.Income[month] = cur.Add(*p.FinalAmount)
	}
	for _, rec := range attendance {
		month := MonthOf(rec.Day)
		cur, ok := s.Labor[month]
		if !ok {
			cur = Rupees(0)
		}
		s.Labor[month] = cur.Add(rec.Amount)
	}
	return s
}
