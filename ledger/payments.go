/*
payments.go - Cash payment ledger

PURPOSE:
  Records ad-hoc cash payments to workers. Payments are purely additive:
  they never mutate the worker or any attendance record, and they are
  never merged - two payments to the same worker on the same day stay
  two rows and are both summed by the aggregator.

SIGN CONVENTION:
  Amount is signed. Negative payments are allowed as corrections; only
  zero is rejected, since a zero row carries no information and usually
  indicates a form submitted without an amount.
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentLedger appends payments against a Store.
type PaymentLedger struct {
	Store Store
}

func NewPaymentLedger(store Store) *PaymentLedger {
	return &PaymentLedger{Store: store}
}

// RecordPayment validates and appends one payment. projectID may be empty;
// when set it must reference an existing project and its name is
// snapshotted onto the row.
func (l *PaymentLedger) RecordPayment(ctx context.Context, workerID WorkerID, amount Money, day time.Time, projectID ProjectID, note string) (*Payment, error) {
	if workerID == "" {
		return nil, &ValidationError{Field: "worker_id", Reason: "required"}
	}
	if amount.IsZero() {
		return nil, &ValidationError{Field: "amount", Reason: "must be non-zero"}
	}

	worker, err := l.Store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, &NotFoundError{Kind: "worker", ID: string(workerID)}
	}

	projectName := ""
	if projectID != "" {
		project, err := l.Store.GetProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, &NotFoundError{Kind: "project", ID: string(projectID)}
		}
		projectName = project.Name
	}

	p := Payment{
		ID:          uuid.NewString(),
		WorkerID:    worker.ID,
		WorkerName:  worker.Name,
		Amount:      amount.RoundRupees(),
		Day:         DayOf(day),
		ProjectID:   projectID,
		ProjectName: projectName,
		Note:        note,
		CreatedAt:   time.Now().UTC(),
	}

	if err := l.Store.AppendPayment(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}
