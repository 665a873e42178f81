package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodline/sitebook/ledger"
)

func testRate() *ledger.Rate {
	r := ledger.NewRate(ledger.Rupees(150), time.Now().UTC())
	return &r
}

func TestNewProject_DerivesTotalFromSize(t *testing.T) {
	p, err := ledger.NewProject(ledger.NewProjectInput{
		Name:    "Sharma house wardrobe",
		Village: "Bilaspur",
		Size:    decimal.NewFromInt(120),
	}, testRate())
	require.NoError(t, err)

	assert.Equal(t, "18000", p.TotalAmount.String())
	assert.Equal(t, "150", p.LockedRate.String())
	assert.Equal(t, ledger.ProjectOngoing, p.Status)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.StartDate.IsZero(), "start date defaults to now")
}

func TestNewProject_ExplicitTotalWins(t *testing.T) {
	p, err := ledger.NewProject(ledger.NewProjectInput{
		Name:        "Temple door restoration",
		Size:        decimal.NewFromInt(120),
		TotalAmount: ledger.Rupees(25000),
	}, testRate())
	require.NoError(t, err)
	assert.Equal(t, "25000", p.TotalAmount.String(), "a manually entered total is not overwritten by the estimate")
}

func TestNewProject_Validation(t *testing.T) {
	_, err := ledger.NewProject(ledger.NewProjectInput{Size: decimal.NewFromInt(10)}, testRate())
	assert.True(t, ledger.IsValidation(err), "name required")

	_, err = ledger.NewProject(ledger.NewProjectInput{Name: "x"}, testRate())
	assert.True(t, ledger.IsValidation(err), "size required when no total given")

	_, err = ledger.NewProject(ledger.NewProjectInput{Name: "x", Size: decimal.NewFromInt(10)}, nil)
	assert.True(t, errors.Is(err, ledger.ErrRateUnavailable), "creation fails closed without a rate")
}

func TestComplete_OneWayTransition(t *testing.T) {
	// GIVEN: An ongoing project
	// WHEN: Completing it with an end date and final amount
	// THEN: Status flips to completed; a second completion is a conflict

	p, err := ledger.NewProject(ledger.NewProjectInput{Name: "x", Size: decimal.NewFromInt(10)}, testRate())
	require.NoError(t, err)

	end := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Complete(end, ledger.Rupees(50000)))

	assert.Equal(t, ledger.ProjectCompleted, p.Status)
	require.NotNil(t, p.FinalAmount)
	assert.Equal(t, "50000", p.FinalAmount.String())
	require.NotNil(t, p.EndDate)
	assert.True(t, p.EndDate.Equal(end))

	err = p.Complete(end.AddDate(0, 0, 1), ledger.Rupees(60000))
	assert.True(t, errors.Is(err, ledger.ErrConflict), "completion is one-way")
	assert.Equal(t, "50000", p.FinalAmount.String(), "first completion stands")
}

func TestComplete_Validation(t *testing.T) {
	p, err := ledger.NewProject(ledger.NewProjectInput{Name: "x", Size: decimal.NewFromInt(10)}, testRate())
	require.NoError(t, err)

	assert.True(t, ledger.IsValidation(p.Complete(time.Time{}, ledger.Rupees(100))))
	assert.True(t, ledger.IsValidation(p.Complete(time.Now(), ledger.Rupees(0))))
	assert.True(t, ledger.IsValidation(p.Complete(time.Now(), ledger.Rupees(-5))))
	assert.Equal(t, ledger.ProjectOngoing, p.Status, "failed completion leaves the project untouched")
}

func TestAddPhoto_PreservesOrder(t *testing.T) {
	p, err := ledger.NewProject(ledger.NewProjectInput{Name: "x", Size: decimal.NewFromInt(10)}, testRate())
	require.NoError(t, err)

	p.AddPhoto("/uploads/a.jpg", "before")
	p.AddPhoto("https://cdn.example.com/b.jpg", "after")

	require.Len(t, p.Photos, 2)
	assert.Equal(t, "/uploads/a.jpg", p.Photos[0].URL)
	assert.Equal(t, "after", p.Photos[1].Category)
}
