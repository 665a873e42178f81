/*
rate.go - Per-foot rate policy

PURPOSE:
  Resolves the per-foot price used for project estimates. The current
  global rate is read once at project creation and LOCKED onto the
  project; later rate changes never alter existing estimates. Only
  FinalAmount, entered manually at completion, reflects real negotiated
  income. That separation is the one genuine design decision in this
  system and is preserved here.

FAIL CLOSED:
  If no usable rate exists when a project is created, creation is
  rejected (ErrRateUnavailable) instead of silently writing a zero rate.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewRate builds a versioned rate value object.
func NewRate(perFoot Money, effectiveAt time.Time) Rate {
	return Rate{PerFoot: perFoot, EffectiveAt: effectiveAt}
}

// LockRate returns the per-foot price to snapshot onto a new project.
// A nil or non-positive rate fails closed.
func LockRate(r *Rate) (Money, error) {
	if r == nil || !r.PerFoot.IsPositive() {
		return Money{}, ErrRateUnavailable
	}
	return r.PerFoot, nil
}

// EstimateAmount computes size x perFoot, rounded to whole rupees.
func EstimateAmount(size decimal.Decimal, perFoot Money) Money {
	return perFoot.Mul(size).RoundRupees()
}
