/*
store.go - Persistence interfaces for business records

PURPOSE:
  Defines the interface between the domain logic and the record store.
  Different implementations can use SQLite or in-memory storage; the
  domain only depends on the operations below.

CONTRACTS:
  - Attendance is UPSERTED by its composite key (worker, project, day):
    writing the same key twice replaces the prior status and amount.
    No history of corrections is kept.
  - Payments are APPENDED, never merged. Two payments on the same day
    remain two rows.
  - Rates are appended; CurrentRate returns the latest. Older values are
    kept so locked project estimates stay explainable.
  - Deletes do not cascade. Deleting a worker leaves its attendance and
    payment rows orphaned; aggregation tolerates that.

CHANGE NOTIFICATION:
  Stores publish a ChangeEvent after every successful write (see
  notify.go). Consumers recompute summaries from scratch on each event
  rather than maintaining incremental state.

IMPLEMENTATIONS:
  - store/sqlite:      production store
  - ledger/store:      in-memory store for tests and dev
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// FILTERS
// =============================================================================

// AttendanceFilter narrows an attendance query. Zero fields match all.
type AttendanceFilter struct {
	WorkerID  WorkerID
	ProjectID ProjectID
	From      *time.Time // inclusive, compared by calendar day
	To        *time.Time // inclusive
}

// PaymentFilter narrows a payment query. Zero fields match all.
type PaymentFilter struct {
	WorkerID  WorkerID
	ProjectID ProjectID
	From      *time.Time
	To        *time.Time
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

type WorkerStore interface {
	// SaveWorker creates or replaces a worker record.
	SaveWorker(ctx context.Context, w Worker) error

	// GetWorker returns nil (not an error) when the worker is absent.
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)

	ListWorkers(ctx context.Context) ([]Worker, error)

	// DeleteWorker removes the worker only. No cascade.
	DeleteWorker(ctx context.Context, id WorkerID) error
}

type ProjectStore interface {
	SaveProject(ctx context.Context, p Project) error
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id ProjectID) error
}

type AttendanceStore interface {
	// UpsertAttendance writes or replaces the record for its composite key.
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) error

	// GetAttendance returns nil when no record exists for the key.
	GetAttendance(ctx context.Context, key AttendanceKey) (*AttendanceRecord, error)

	// DeleteAttendance removes the record for the key if present.
	// Reports whether a record was actually removed.
	DeleteAttendance(ctx context.Context, key AttendanceKey) (bool, error)

	ListAttendance(ctx context.Context, f AttendanceFilter) ([]AttendanceRecord, error)
}

type PaymentStore interface {
	// AppendPayment adds a payment row. Append-only; no upsert path exists.
	AppendPayment(ctx context.Context, p Payment) error

	ListPayments(ctx context.Context, f PaymentFilter) ([]Payment, error)
}

type RateStore interface {
	// CurrentRate returns nil when no rate has ever been set.
	CurrentRate(ctx context.Context) (*Rate, error)

	// SetRate appends a new current rate. Existing projects keep their
	// locked snapshots.
	SetRate(ctx context.Context, r Rate) error

	// RateHistory returns all rates, oldest first.
	RateHistory(ctx context.Context) ([]Rate, error)
}

// Store is the full persistence surface consumed by the domain and API.
type Store interface {
	WorkerStore
	ProjectStore
	AttendanceStore
	PaymentStore
	RateStore
	Notifier
}
