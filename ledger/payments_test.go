package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodline/sitebook/ledger"
	memstore "github.com/woodline/sitebook/ledger/store"
)

func newPaymentFixture(t *testing.T) (*ledger.PaymentLedger, *memstore.Memory) {
	t.Helper()
	store := memstore.NewMemory()
	seedWorkerAndProject(t, store)
	return ledger.NewPaymentLedger(store), store
}

func TestRecordPayment_SnapshotsNamesAndRounds(t *testing.T) {
	pl, _ := newPaymentFixture(t)

	p, err := pl.RecordPayment(context.Background(), "w-1", ledger.NewMoney(999.6), may1, "p-1", "advance")
	require.NoError(t, err)

	assert.Equal(t, "1000", p.Amount.String(), "amounts stored in whole rupees")
	assert.Equal(t, "Ramesh", p.WorkerName)
	assert.Equal(t, "Sharma house wardrobe", p.ProjectName)
	assert.Equal(t, "2024-05-01", p.Day)
	assert.Equal(t, "advance", p.Note)
}

func TestRecordPayment_ZeroRejected(t *testing.T) {
	pl, _ := newPaymentFixture(t)

	_, err := pl.RecordPayment(context.Background(), "w-1", ledger.Rupees(0), may1, "", "")
	assert.True(t, ledger.IsValidation(err), "a zero payment carries no information")
}

func TestRecordPayment_NegativeAllowedAsCorrection(t *testing.T) {
	pl, _ := newPaymentFixture(t)

	p, err := pl.RecordPayment(context.Background(), "w-1", ledger.Rupees(-500), may1, "", "entered twice yesterday")
	require.NoError(t, err)
	assert.Equal(t, "-500", p.Amount.String())
}

func TestRecordPayment_SameDayPaymentsStaySeparate(t *testing.T) {
	// GIVEN: Two payments to the same worker on the same day
	// WHEN: Listing payments
	// THEN: Both rows exist and both count toward the paid total

	pl, store := newPaymentFixture(t)
	ctx := context.Background()

	_, err := pl.RecordPayment(ctx, "w-1", ledger.Rupees(300), may1, "", "")
	require.NoError(t, err)
	_, err = pl.RecordPayment(ctx, "w-1", ledger.Rupees(200), may1, "", "")
	require.NoError(t, err)

	all, err := store.ListPayments(ctx, ledger.PaymentFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	require.Len(t, all, 2, "payments are append-only, never merged")

	w, err := store.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	s := ledger.SummarizeWorker(*w, nil, all)
	assert.Equal(t, "500", s.TotalPaid.String())
}

func TestRecordPayment_MissingWorkerOrProject(t *testing.T) {
	pl, _ := newPaymentFixture(t)
	ctx := context.Background()

	_, err := pl.RecordPayment(ctx, "w-ghost", ledger.Rupees(100), may1, "", "")
	assert.True(t, ledger.IsNotFound(err))

	_, err = pl.RecordPayment(ctx, "w-1", ledger.Rupees(100), may1, "p-ghost", "")
	assert.True(t, ledger.IsNotFound(err))

	_, err = pl.RecordPayment(ctx, "", ledger.Rupees(100), may1, "", "")
	assert.True(t, ledger.IsValidation(err))
}

func TestRecordPayment_ProjectOptional(t *testing.T) {
	pl, _ := newPaymentFixture(t)

	p, err := pl.RecordPayment(context.Background(), "w-1", ledger.Rupees(100), time.Now().UTC(), "", "")
	require.NoError(t, err)
	assert.Empty(t, p.ProjectID)
	assert.Empty(t, p.ProjectName)
}
