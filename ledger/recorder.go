/*
recorder.go - Attendance marking

PURPOSE:
  Records a worker's daily status for a project and computes the payable
  amount for that mark. The write is an idempotent upsert keyed by
  (worker, project, day): marking the same key twice replaces the prior
  status and amount, it never duplicates the row.

AMOUNT RULE:
  amount = worker.DailyWage x multiplier(status), rounded to whole
  rupees, using the wage AT THE MOMENT OF MARKING. A later wage change
  does not rewrite history.

SNAPSHOTS:
  WorkerName and ProjectName are copied onto the record at write time.
  Renaming a worker or project later does not relabel old rows. This is
  a deliberate read-path trade-off, not a bug.

TOGGLE:
  The core contract is upsert + explicit delete. Toggle - reselecting
  the currently active status removes the mark - is a convenience
  composed from those two, so UIs can adopt either behavior.
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder writes attendance marks against a Store.
type Recorder struct {
	Store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{Store: store}
}

// Mark validates references, computes the payable amount from the worker's
// current wage, snapshots names, and upserts the record for its key.
func (r *Recorder) Mark(ctx context.Context, workerID WorkerID, projectID ProjectID, day time.Time, status Status) (*AttendanceRecord, error) {
	if workerID == "" {
		return nil, &ValidationError{Field: "worker_id", Reason: "required"}
	}
	if projectID == "" {
		return nil, &ValidationError{Field: "project_id", Reason: "no project selected"}
	}
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "must be one of full, half, night, absent"}
	}

	worker, err := r.Store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, &NotFoundError{Kind: "worker", ID: string(workerID)}
	}

	project, err := r.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &NotFoundError{Kind: "project", ID: string(projectID)}
	}

	now := time.Now().UTC()
	rec := AttendanceRecord{
		ID:          uuid.NewString(),
		WorkerID:    worker.ID,
		WorkerName:  worker.Name,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Day:         DayOf(day),
		Status:      status,
		Amount:      PayableAmount(worker.DailyWage, status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// If a record already exists for the key, keep its identity and
	// creation time; only status, amount, and snapshots move.
	existing, err := r.Store.GetAttendance(ctx, rec.Key())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}

	if err := r.Store.UpsertAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Unmark removes the record for (worker, project, day).
func (r *Recorder) Unmark(ctx context.Context, workerID WorkerID, projectID ProjectID, day time.Time) error {
	key := AttendanceKey{WorkerID: workerID, ProjectID: projectID, Day: DayOf(day)}
	removed, err := r.Store.DeleteAttendance(ctx, key)
	if err != nil {
		return err
	}
	if !removed {
		return &NotFoundError{Kind: "attendance", ID: key.Day + "/" + string(workerID) + "/" + string(projectID)}
	}
	return nil
}

// Toggle marks the status unless it is already the active status for the
// key, in which case the record is removed. Returns the written record,
// or (nil, true, nil) when the mark was toggled off.
func (r *Recorder) Toggle(ctx context.Context, workerID WorkerID, projectID ProjectID, day time.Time, status Status) (*AttendanceRecord, bool, error) {
	if !status.Valid() {
		return nil, false, &ValidationError{Field: "status", Reason: "must be one of full, half, night, absent"}
	}
	key := AttendanceKey{WorkerID: workerID, ProjectID: projectID, Day: DayOf(day)}
	existing, err := r.Store.GetAttendance(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.Status == status {
		if err := r.Unmark(ctx, workerID, projectID, day); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	rec, err := r.Mark(ctx, workerID, projectID, day, status)
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}
