package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodline/sitebook/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testWorker() ledger.Worker {
	return ledger.Worker{
		ID:         "w-1",
		Name:       "Ramesh",
		Phone:      "9800000001",
		Specialty:  "carpenter",
		DailyWage:  ledger.Rupees(500),
		LegacyPaid: ledger.Rupees(2000),
		CreatedAt:  time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testProject() ledger.Project {
	expected := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	return ledger.Project{
		ID:              "p-1",
		Name:            "Sharma house wardrobe",
		Village:         "Bilaspur",
		WorkTypes:       []string{"wardrobe", "polish"},
		Size:            decimal.NewFromInt(120),
		LockedRate:      ledger.Rupees(150),
		TotalAmount:     ledger.Rupees(18000),
		Status:          ledger.ProjectOngoing,
		StartDate:       time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		ExpectedEndDate: &expected,
		CreatedAt:       time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testAttendance(day string) ledger.AttendanceRecord {
	return ledger.AttendanceRecord{
		ID:          "a-" + day,
		WorkerID:    "w-1",
		WorkerName:  "Ramesh",
		ProjectID:   "p-1",
		ProjectName: "Sharma house wardrobe",
		Day:         day,
		Status:      ledger.StatusFull,
		Amount:      ledger.Rupees(500),
		CreatedAt:   time.Now().UTC(),
	}
}

// =============================================================================
// WORKER TESTS
// =============================================================================

func TestWorkers_Roundtrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	w := testWorker()
	require.NoError(t, s.SaveWorker(ctx, w))

	got, err := s.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.Name, got.Name)
	assert.Equal(t, w.Phone, got.Phone)
	assert.True(t, got.DailyWage.Equal(w.DailyWage))
	assert.True(t, got.LegacyPaid.Equal(w.LegacyPaid))
}

func TestWorkers_SaveIsUpsert(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	w := testWorker()
	require.NoError(t, s.SaveWorker(ctx, w))
	w.DailyWage = ledger.Rupees(600)
	require.NoError(t, s.SaveWorker(ctx, w))

	all, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "600", all[0].DailyWage.String())
}

func TestWorkers_GetMissingReturnsNil(t *testing.T) {
	s := setupStore(t)
	got, err := s.GetWorker(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got, "absent worker is nil, not an error")
}

func TestWorkers_DeleteLeavesHistory(t *testing.T) {
	// GIVEN: A worker with an attendance row and a payment
	// WHEN: The worker is deleted
	// THEN: The attendance and payment rows survive (no cascade)

	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWorker(ctx, testWorker()))
	require.NoError(t, s.SaveProject(ctx, testProject()))
	require.NoError(t, s.UpsertAttendance(ctx, testAttendance("2024-05-01")))
	require.NoError(t, s.AppendPayment(ctx, ledger.Payment{
		ID: "pay-1", WorkerID: "w-1", WorkerName: "Ramesh",
		Amount: ledger.Rupees(1000), Day: "2024-05-01", CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, s.DeleteWorker(ctx, "w-1"))

	att, err := s.ListAttendance(ctx, ledger.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, att, 1)
	assert.Equal(t, "Ramesh", att[0].WorkerName, "snapshotted name outlives the worker row")

	pays, err := s.ListPayments(ctx, ledger.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, pays, 1)
}

// =============================================================================
// PROJECT TESTS
// =============================================================================

func TestProjects_Roundtrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	p := testProject()
	p.Photos = []ledger.ProjectPhoto{{URL: "/uploads/a.jpg", Category: "before", AddedAt: time.Now().UTC()}}
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Village, got.Village)
	assert.Equal(t, []string{"wardrobe", "polish"}, got.WorkTypes)
	assert.True(t, got.LockedRate.Equal(p.LockedRate))
	assert.Equal(t, ledger.ProjectOngoing, got.Status)
	require.NotNil(t, got.ExpectedEndDate)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "/uploads/a.jpg", got.Photos[0].URL)
	assert.Nil(t, got.FinalAmount)
	assert.Nil(t, got.EndDate)
}

func TestProjects_CompletionFieldsPersist(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	p := testProject()
	require.NoError(t, s.SaveProject(ctx, p))

	end := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Complete(end, ledger.Rupees(50000)))
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ProjectCompleted, got.Status)
	require.NotNil(t, got.FinalAmount)
	assert.Equal(t, "50000", got.FinalAmount.String())
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
}

func TestProjects_LockedRateSurvivesResave(t *testing.T) {
	// GIVEN: A stored project with locked rate 150
	// WHEN: The project is saved again with a different locked rate in memory
	// THEN: The stored snapshot is untouched

	s := setupStore(t)
	ctx := context.Background()

	p := testProject()
	require.NoError(t, s.SaveProject(ctx, p))

	p.LockedRate = ledger.Rupees(200)
	p.Village = "Kotla"
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kotla", got.Village, "mutable fields do update")
	assert.Equal(t, "150", got.LockedRate.String(), "rate snapshot is write-once")
}

// =============================================================================
// ATTENDANCE TESTS
// =============================================================================

func TestAttendance_UpsertReplacesInPlace(t *testing.T) {
	// GIVEN: A Full mark on 2024-05-01
	// WHEN: The same key is written again as Night
	// THEN: The table holds a single row with the new status and amount

	s := setupStore(t)
	ctx := context.Background()

	first := testAttendance("2024-05-01")
	require.NoError(t, s.UpsertAttendance(ctx, first))

	second := first
	second.Status = ledger.StatusNight
	second.Amount = ledger.Rupees(750)
	require.NoError(t, s.UpsertAttendance(ctx, second))

	all, err := s.ListAttendance(ctx, ledger.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1, "unique (worker, project, day) enforced")
	assert.Equal(t, ledger.StatusNight, all[0].Status)
	assert.Equal(t, "750", all[0].Amount.String())
}

func TestAttendance_FilterByWorkerProjectAndRange(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, day := range []string{"2024-05-01", "2024-05-02", "2024-05-10"} {
		require.NoError(t, s.UpsertAttendance(ctx, testAttendance(day)))
	}
	other := testAttendance("2024-05-01")
	other.ID = "a-other"
	other.WorkerID = "w-2"
	other.WorkerName = "Suresh"
	require.NoError(t, s.UpsertAttendance(ctx, other))

	byWorker, err := s.ListAttendance(ctx, ledger.AttendanceFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	assert.Len(t, byWorker, 3)

	from := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC)
	ranged, err := s.ListAttendance(ctx, ledger.AttendanceFilter{WorkerID: "w-1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "2024-05-02", ranged[0].Day)
}

func TestAttendance_DeleteReportsWhetherRowExisted(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAttendance(ctx, testAttendance("2024-05-01")))
	key := ledger.AttendanceKey{WorkerID: "w-1", ProjectID: "p-1", Day: "2024-05-01"}

	removed, err := s.DeleteAttendance(ctx, key)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteAttendance(ctx, key)
	require.NoError(t, err)
	assert.False(t, removed)
}

// =============================================================================
// PAYMENT TESTS
// =============================================================================

func TestPayments_AppendOnly(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.May, 1, 18, 0, 0, 0, time.UTC)
	for i, id := range []string{"pay-1", "pay-2"} {
		require.NoError(t, s.AppendPayment(ctx, ledger.Payment{
			ID: id, WorkerID: "w-1", WorkerName: "Ramesh",
			Amount: ledger.Rupees(int64(300 + i*200)), Day: "2024-05-01",
			Note: "weekly advance", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.ListPayments(ctx, ledger.PaymentFilter{WorkerID: "w-1"})
	require.NoError(t, err)
	require.Len(t, all, 2, "same-day payments stay separate rows")
	assert.Equal(t, "300", all[0].Amount.String())
	assert.Equal(t, "500", all[1].Amount.String())
}

// =============================================================================
// RATE TESTS
// =============================================================================

func TestRates_CurrentIsLatest(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	cur, err := s.CurrentRate(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur, "no rate configured yet")

	require.NoError(t, s.SetRate(ctx, ledger.NewRate(ledger.Rupees(150), time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, s.SetRate(ctx, ledger.NewRate(ledger.Rupees(200), time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))))

	cur, err = s.CurrentRate(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "200", cur.PerFoot.String())

	history, err := s.RateHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2, "old rates are kept, not overwritten")
	assert.Equal(t, "150", history[0].PerFoot.String())
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestWrites_PublishChangeEvents(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe(4)
	defer cancel()

	require.NoError(t, s.SaveWorker(ctx, testWorker()))

	select {
	case ev := <-ch:
		assert.Equal(t, "workers", ev.Collection)
		assert.Equal(t, "w-1", ev.Key)
		assert.Equal(t, ledger.ChangeUpserted, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("no change event published")
	}
}
