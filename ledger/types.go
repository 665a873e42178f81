/*
Package ledger is the core record model for the carpentry business.

PURPOSE:
  This package contains the domain types and the computations that turn
  daily attendance marks, wage rates, and cash payments into per-worker
  and per-project financial summaries. Everything here is a pure function
  of the record set held by a Store - there is no hidden process state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount in whole rupees (decimal-backed)
  - Status: An attendance status with its wage multiplier
  - Worker/Project/AttendanceRecord/Payment/Rate: The record types

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. One rounding rule: round half away from zero to whole rupees,
     applied at every amount-producing boundary
  3. Snapshots: attendance and payment rows carry worker/project names
     copied at write time; renames never rewrite history
  4. Type Safety: WorkerID and ProjectID are distinct types

SEE ALSO:
  - recorder.go: Attendance marking (idempotent upsert by day/worker/project)
  - aggregate.go: Totals derived by replaying records
  - rate.go: Per-foot rate locking and estimates
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Whole-rupee currency amount
// =============================================================================

// Money is a currency amount. Values produced by wage and estimate math are
// always rounded to whole rupees; stored values keep whatever was written.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money     { return Money{Value: decimal.NewFromFloat(value)} }
func Rupees(value int64) Money         { return Money{Value: decimal.NewFromInt(value)} }
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }

// ParseMoney parses a stored decimal string. Invalid input yields zero.
func ParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money             { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money             { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money   { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                    { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                  { return m.Value.IsZero() }
func (m Money) IsNegative() bool              { return m.Value.IsNegative() }
func (m Money) IsPositive() bool              { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool            { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool      { return m.Value.GreaterThan(o.Value) }
func (m Money) String() string                { return m.Value.String() }

// RoundRupees applies the canonical rounding rule: half away from zero,
// to whole rupee units.
func (m Money) RoundRupees() Money { return Money{Value: m.Value.Round(0)} }

// =============================================================================
// ATTENDANCE STATUS - Presence status and its wage multiplier
// =============================================================================

type Status string

const (
	StatusFull   Status = "full"   // full day, 1.0x daily wage
	StatusHalf   Status = "half"   // half day, 0.5x
	StatusNight  Status = "night"  // night shift, 1.5x
	StatusAbsent Status = "absent" // recorded absence, 0x
)

var multipliers = map[Status]decimal.Decimal{
	StatusFull:   decimal.NewFromInt(1),
	StatusHalf:   decimal.New(5, -1),
	StatusNight:  decimal.New(15, -1),
	StatusAbsent: decimal.Zero,
}

// Valid reports whether s is one of the four recognized statuses.
func (s Status) Valid() bool {
	_, ok := multipliers[s]
	return ok
}

// Multiplier returns the fraction of a full day's wage paid for this status.
func (s Status) Multiplier() decimal.Decimal {
	return multipliers[s]
}

// ParseStatus normalizes a wire value ("present" is accepted as an alias
// for "full", matching older clients).
func ParseStatus(s string) (Status, error) {
	if s == "present" {
		return StatusFull, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Reason: "must be one of full, half, night, absent"}
	}
	return st, nil
}

// PayableAmount computes the amount owed for marking a status against a
// daily wage. This is the single place wage x multiplier math happens.
func PayableAmount(dailyWage Money, status Status) Money {
	return dailyWage.Mul(status.Multiplier()).RoundRupees()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type ProjectID string

// =============================================================================
// WORKER
// =============================================================================

// Worker is a carpenter or laborer on the payroll. Workers are never
// hard-deleted in the normal flow; deletion is an explicit admin action
// with no cascade, so orphaned attendance/payment rows may remain.
type Worker struct {
	ID        WorkerID
	Name      string
	Phone     string
	Specialty string
	DailyWage Money

	// LegacyPaid carries forward amounts paid before ledger tracking
	// started. It is added to the payment sum when computing totals.
	LegacyPaid Money

	CreatedAt time.Time
}

// =============================================================================
// PROJECT
// =============================================================================

type ProjectStatus string

const (
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
)

// ProjectPhoto is one gallery entry. Order in the slice is display order.
type ProjectPhoto struct {
	URL      string
	Category string
	AddedAt  time.Time
}

// Project is a job at a customer site.
//
// INVARIANT: Status is ProjectCompleted iff EndDate and FinalAmount are both
// set. Completion is one-way; there is no reopen (deletion is the escape
// hatch). LockedRate is the per-foot rate snapshotted at creation and is
// immune to later changes of the global rate.
type Project struct {
	ID        ProjectID
	Name      string
	Village   string
	WorkTypes []string

	// Size in feet, used with LockedRate to derive TotalAmount.
	Size decimal.Decimal

	LockedRate  Money  // per-foot rate at creation time
	TotalAmount Money  // estimate: Size x LockedRate, or entered directly
	FinalAmount *Money // negotiated actual, set at completion

	Status          ProjectStatus
	StartDate       time.Time
	ExpectedEndDate *time.Time
	EndDate         *time.Time

	Photos []ProjectPhoto

	CreatedAt time.Time
}

// =============================================================================
// ATTENDANCE RECORD - One worker/project/day mark
// =============================================================================

// AttendanceKey is the composite identity of a mark: at most one record
// exists per worker per project per calendar day.
type AttendanceKey struct {
	WorkerID  WorkerID
	ProjectID ProjectID
	Day       string // "2006-01-02"
}

// AttendanceRecord is a single mark and its payable amount.
//
// Amount is computed from the worker's wage at the moment of marking and is
// NOT recomputed if the wage later changes. WorkerName and ProjectName are
// point-in-time snapshots; renames never relabel historical rows.
type AttendanceRecord struct {
	ID          string
	WorkerID    WorkerID
	WorkerName  string
	ProjectID   ProjectID
	ProjectName string
	Day         string // "2006-01-02", no time component
	Status      Status
	Amount      Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{WorkerID: r.WorkerID, ProjectID: r.ProjectID, Day: r.Day}
}

// DayOf truncates a timestamp to its calendar day key.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthOf returns the month bucket key for a day key ("2006-01").
// Malformed input maps to the empty bucket.
func MonthOf(day string) string {
	if len(day) < 7 {
		return ""
	}
	return day[:7]
}

// =============================================================================
// PAYMENT - Cash disbursed to a worker
// =============================================================================

// Payment is an ad-hoc cash payment. Payments are append-only: multiple
// payments to the same worker on the same day accumulate independently.
// Amount is signed; negative payments act as corrections.
type Payment struct {
	ID          string
	WorkerID    WorkerID
	WorkerName  string
	Amount      Money
	Day         string // "2006-01-02"
	ProjectID   ProjectID // optional link
	ProjectName string
	Note        string
	CreatedAt   time.Time
}

// =============================================================================
// RATE - Versioned per-foot price
// =============================================================================

// Rate is the global per-foot price as an explicit versioned value object.
// Projects snapshot the current rate at creation; the stored history makes
// "what was the rate then" answerable.
type Rate struct {
	PerFoot     Money
	EffectiveAt time.Time
}
