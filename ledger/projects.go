/*
projects.go - Project lifecycle

PURPOSE:
  Project creation (with rate locking) and the one-way completion
  transition. Status is ProjectCompleted iff an end date and final
  amount have been recorded; there is no reopen - deletion is the
  escape hatch.
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProjectInput carries the fields an admin supplies when opening a job.
// TotalAmount may be entered directly; when zero it is derived from
// Size x the locked rate.
type NewProjectInput struct {
	Name            string
	Village         string
	WorkTypes       []string
	Size            decimal.Decimal
	TotalAmount     Money
	StartDate       time.Time
	ExpectedEndDate *time.Time
}

// NewProject builds an ongoing project, locking the current rate onto it.
// Fails closed when the rate is unusable, so a project is never written
// with a zero locked rate.
func NewProject(in NewProjectInput, current *Rate) (Project, error) {
	if in.Name == "" {
		return Project{}, &ValidationError{Field: "name", Reason: "required"}
	}
	locked, err := LockRate(current)
	if err != nil {
		return Project{}, err
	}

	total := in.TotalAmount.RoundRupees()
	if total.IsZero() {
		if !in.Size.IsPositive() {
			return Project{}, &ValidationError{Field: "size", Reason: "required when total_amount is not given"}
		}
		total = EstimateAmount(in.Size, locked)
	}

	start := in.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}

	return Project{
		ID:              ProjectID(uuid.NewString()),
		Name:            in.Name,
		Village:         in.Village,
		WorkTypes:       in.WorkTypes,
		Size:            in.Size,
		LockedRate:      locked,
		TotalAmount:     total,
		Status:          ProjectOngoing,
		StartDate:       start,
		ExpectedEndDate: in.ExpectedEndDate,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Complete records the end date and negotiated final amount and moves the
// project to ProjectCompleted. The transition is one-way.
func (p *Project) Complete(endDate time.Time, finalAmount Money) error {
	if p.Status == ProjectCompleted {
		return ErrConflict
	}
	if endDate.IsZero() {
		return &ValidationError{Field: "end_date", Reason: "required"}
	}
	if !finalAmount.IsPositive() {
		return &ValidationError{Field: "final_amount", Reason: "must be positive"}
	}
	final := finalAmount.RoundRupees()
	p.EndDate = &endDate
	p.FinalAmount = &final
	p.Status = ProjectCompleted
	return nil
}

// AddPhoto appends a gallery entry. Order of addition is display order.
func (p *Project) AddPhoto(url, category string) {
	p.Photos = append(p.Photos, ProjectPhoto{URL: url, Category: category, AddedAt: time.Now().UTC()})
}
