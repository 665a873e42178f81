package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/woodline/sitebook/ledger"
	memstore "github.com/woodline/sitebook/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	testAdmin    = "admin"
	testPassword = "workshop-secret"
)

type testEnv struct {
	server *httptest.Server
	store  *memstore.Memory
	token  string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := memstore.NewMemory()
	auth := &Auth{
		AdminUser:    testAdmin,
		PasswordHash: string(hash),
		Allowlist:    []string{testAdmin},
		Secret:       []byte("test-secret"),
		TokenTTL:     time.Hour,
	}
	h := NewHandler(store, nil, auth, zap.NewNop())
	server := httptest.NewServer(NewRouter(h))
	t.Cleanup(server.Close)

	env := &testEnv{server: server, store: store}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	var resp LoginResponse
	status := e.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Username: testAdmin, Password: testPassword}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// do performs a JSON request; body and out may be nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) seedRate(t *testing.T, perFoot int64) {
	t.Helper()
	require.NoError(t, e.store.SetRate(context.Background(),
		ledger.NewRate(ledger.Rupees(perFoot), time.Now().UTC())))
}

func (e *testEnv) createWorker(t *testing.T, name string, wage float64) WorkerDTO {
	t.Helper()
	var dto WorkerDTO
	status := e.do(t, http.MethodPost, "/api/workers", e.token,
		SaveWorkerRequest{Name: name, DailyWage: wage}, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

func (e *testEnv) createProject(t *testing.T, name string, size float64) ProjectDTO {
	t.Helper()
	var dto ProjectDTO
	status := e.do(t, http.MethodPost, "/api/projects", e.token,
		CreateProjectRequest{Name: name, Size: size}, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestAuth_MutationsRequireToken(t *testing.T) {
	env := setupEnv(t)

	status := env.do(t, http.MethodPost, "/api/workers", "",
		SaveWorkerRequest{Name: "Ramesh", DailyWage: 500}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = env.do(t, http.MethodPost, "/api/workers", "not-a-jwt",
		SaveWorkerRequest{Name: "Ramesh", DailyWage: 500}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_BadCredentialsRejected(t *testing.T) {
	env := setupEnv(t)
	status := env.do(t, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Username: testAdmin, Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_PublicReadsNeedNoToken(t *testing.T) {
	env := setupEnv(t)

	var workers []WorkerDTO
	status := env.do(t, http.MethodGet, "/api/workers", "", nil, &workers)
	assert.Equal(t, http.StatusOK, status)

	status = env.do(t, http.MethodGet, "/api/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

// =============================================================================
// WORKER FLOW TESTS
// =============================================================================

func TestWorkerFlow_MarkThenSummary(t *testing.T) {
	// GIVEN: A worker on 500/day and a project
	// WHEN: Marking full, half, and night days and paying a 1000 advance
	// THEN: The summary reconciles to earned 1500, paid 1000, balance 500

	env := setupEnv(t)
	env.seedRate(t, 150)
	worker := env.createWorker(t, "Ramesh", 500)
	project := env.createProject(t, "Sharma house wardrobe", 120)

	days := []struct {
		day, status string
	}{
		{"2024-05-01", "full"},
		{"2024-05-02", "half"},
		{"2024-05-03", "night"},
	}
	for _, d := range days {
		var resp MarkAttendanceResponse
		status := env.do(t, http.MethodPost, "/api/attendance", env.token, MarkAttendanceRequest{
			WorkerID: worker.ID, ProjectID: project.ID, Day: d.day, Status: d.status,
		}, &resp)
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, resp.Record)
	}

	var payment PaymentDTO
	status := env.do(t, http.MethodPost, "/api/payments", env.token, RecordPaymentRequest{
		WorkerID: worker.ID, Amount: 1000, Day: "2024-05-03", Note: "weekly advance",
	}, &payment)
	require.Equal(t, http.StatusCreated, status)

	var summary WorkerSummaryDTO
	status = env.do(t, http.MethodGet, "/api/workers/"+worker.ID+"/summary", env.token, nil, &summary)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "1500", summary.TotalEarned)
	assert.Equal(t, "1000", summary.TotalPaid)
	assert.Equal(t, "500", summary.Balance)
	assert.Equal(t, 3, summary.DaysMarked)
}

func TestMarkAttendance_ToggleRemoves(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	worker := env.createWorker(t, "Ramesh", 500)
	project := env.createProject(t, "x", 10)

	req := MarkAttendanceRequest{
		WorkerID: worker.ID, ProjectID: project.ID, Day: "2024-05-01", Status: "full", Toggle: true,
	}
	var first MarkAttendanceResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/attendance", env.token, req, &first))
	assert.False(t, first.Removed)

	var second MarkAttendanceResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/attendance", env.token, req, &second))
	assert.True(t, second.Removed)
	assert.Nil(t, second.Record)
}

func TestUnmarkAttendance_QueryParams(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	worker := env.createWorker(t, "Ramesh", 500)
	project := env.createProject(t, "x", 10)

	status := env.do(t, http.MethodPost, "/api/attendance", env.token, MarkAttendanceRequest{
		WorkerID: worker.ID, ProjectID: project.ID, Day: "2024-05-01", Status: "full",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	path := fmt.Sprintf("/api/attendance?worker_id=%s&project_id=%s&day=2024-05-01", worker.ID, project.ID)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, env.token, nil, nil))
}

func TestSaveWorker_Validation(t *testing.T) {
	env := setupEnv(t)

	status := env.do(t, http.MethodPost, "/api/workers", env.token, SaveWorkerRequest{DailyWage: 500}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "name required")

	status = env.do(t, http.MethodPost, "/api/workers", env.token, SaveWorkerRequest{Name: "x", DailyWage: -1}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "negative wage rejected")
}

// =============================================================================
// PROJECT FLOW TESTS
// =============================================================================

func TestCreateProject_NoRateConfiguredIsConflict(t *testing.T) {
	// GIVEN: No per-foot rate has ever been set
	// WHEN: Creating a project priced by size
	// THEN: Creation fails closed with 409

	env := setupEnv(t)
	status := env.do(t, http.MethodPost, "/api/projects", env.token,
		CreateProjectRequest{Name: "x", Size: 100}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestProjectFlow_CompleteAndProfit(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	worker := env.createWorker(t, "Ramesh", 500)
	project := env.createProject(t, "Sharma house wardrobe", 120)
	assert.Equal(t, "18000", project.TotalAmount)
	assert.Equal(t, "150", project.LockedRate)

	status := env.do(t, http.MethodPost, "/api/attendance", env.token, MarkAttendanceRequest{
		WorkerID: worker.ID, ProjectID: project.ID, Day: "2024-05-01", Status: "full",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	// Profit is pending while ongoing.
	var summary ProjectSummaryDTO
	status = env.do(t, http.MethodGet, "/api/projects/"+project.ID+"/summary", env.token, nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending", summary.Profit)
	assert.Equal(t, "500", summary.LaborCost)

	var completed ProjectDTO
	status = env.do(t, http.MethodPost, "/api/projects/"+project.ID+"/complete", env.token,
		CompleteProjectRequest{EndDate: "2024-06-15", FinalAmount: 20000}, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", completed.Status)

	status = env.do(t, http.MethodGet, "/api/projects/"+project.ID+"/summary", env.token, nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "19500", summary.Profit)

	// Completion is one-way.
	status = env.do(t, http.MethodPost, "/api/projects/"+project.ID+"/complete", env.token,
		CompleteProjectRequest{EndDate: "2024-06-16", FinalAmount: 99999}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRateChange_LeavesExistingProjectAlone(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	project := env.createProject(t, "x", 100)
	assert.Equal(t, "15000", project.TotalAmount)

	var rate RateDTO
	status := env.do(t, http.MethodPut, "/api/rate", env.token, SetRateRequest{PerFoot: 200}, &rate)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "200", rate.PerFoot)

	var got ProjectDTO
	status = env.do(t, http.MethodGet, "/api/projects/"+project.ID, "", nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "150", got.LockedRate)
	assert.Equal(t, "15000", got.TotalAmount)
}

func TestRateHistory_KeepsEveryVersion(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)

	status := env.do(t, http.MethodPut, "/api/rate", env.token, SetRateRequest{PerFoot: 200}, nil)
	require.Equal(t, http.StatusOK, status)

	var history []RateDTO
	status = env.do(t, http.MethodGet, "/api/rate/history", env.token, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 2)
	assert.Equal(t, "150", history[0].PerFoot)
	assert.Equal(t, "200", history[1].PerFoot)
}

// =============================================================================
// CALCULATOR TESTS
// =============================================================================

func TestCalculator_PublicEstimate(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)

	var resp CalculatorResponse
	status := env.do(t, http.MethodGet, "/api/calculator?size=120", "", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "18000", resp.Estimate)
	assert.Equal(t, "150", resp.PerFoot)
}

func TestCalculator_Validation(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calculator?size=abc", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calculator?size=-5", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calculator", "", nil, nil))
}

func TestCalculator_NoRateIsConflict(t *testing.T) {
	env := setupEnv(t)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, "/api/calculator?size=10", "", nil, nil))
}

// =============================================================================
// DASHBOARD TESTS
// =============================================================================

func TestDashboard_CountsAndSeries(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	worker := env.createWorker(t, "Ramesh", 500)
	p1 := env.createProject(t, "done", 10)
	env.createProject(t, "open", 10)

	status := env.do(t, http.MethodPost, "/api/attendance", env.token, MarkAttendanceRequest{
		WorkerID: worker.ID, ProjectID: p1.ID, Day: "2024-05-01", Status: "full",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	status = env.do(t, http.MethodPost, "/api/projects/"+p1.ID+"/complete", env.token,
		CompleteProjectRequest{EndDate: "2024-06-15", FinalAmount: 5000}, nil)
	require.Equal(t, http.StatusOK, status)

	var dash DashboardDTO
	status = env.do(t, http.MethodGet, "/api/dashboard", env.token, nil, &dash)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 1, dash.Ongoing)
	assert.Equal(t, 1, dash.Finished)
	require.Len(t, dash.Income, 1)
	assert.Equal(t, MonthTotalDTO{Month: "2024-06", Amount: "5000"}, dash.Income[0])
	require.Len(t, dash.Labor, 1)
	assert.Equal(t, MonthTotalDTO{Month: "2024-05", Amount: "500"}, dash.Labor[0])
	require.Len(t, dash.Workers, 1)
	assert.Equal(t, "500", dash.Workers[0].Balance)
}

// =============================================================================
// SEED & EXPORT TESTS
// =============================================================================

func TestSeedDemo_RefusesNonEmptyDatabase(t *testing.T) {
	env := setupEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/admin/seed", env.token, nil, nil))
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/admin/seed", env.token, nil, nil))
}

func TestExportPayroll_StreamsWorkbook(t *testing.T) {
	env := setupEnv(t)
	env.seedRate(t, 150)
	env.createWorker(t, "Ramesh", 500)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/reports/payroll.xlsx", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "payroll.xlsx")
}
