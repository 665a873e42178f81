/*
handlers.go - HTTP handlers for the carpentry business API

PURPOSE:
  Exposes workers, projects, attendance, payments, the per-foot rate,
  and derived summaries over REST. Handlers parse and validate HTTP
  input, delegate to the ledger domain, and serialize responses.

ERROR MAPPING:
  ledger.ValidationError -> 400
  ledger.AuthError       -> 401
  ledger.NotFoundError   -> 404
  ledger.ErrConflict     -> 409
  ledger.UpstreamError   -> 502
  anything else          -> 500

Every mutating action reports success or failure synchronously; there is
no background retry queue. A failed write is retried by the operator.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing and middleware
  - upload.go: photo upload proxy
*/
package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodline/sitebook/ledger"
	"github.com/woodline/sitebook/report"
)

func newID() string { return uuid.NewString() }

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    ledger.Store
	Recorder *ledger.Recorder
	Payments *ledger.PaymentLedger
	Uploader *Uploader
	Auth     *Auth
	Log      *zap.Logger
}

func NewHandler(store ledger.Store, uploader *Uploader, auth *Auth, log *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Recorder: ledger.NewRecorder(store),
		Payments: ledger.NewPaymentLedger(store),
		Uploader: uploader,
		Auth:     auth,
		Log:      log,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		h.fail(w, "list workers", err)
		return
	}
	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := ledger.WorkerID(chi.URLParam(r, "id"))
	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		h.fail(w, "get worker", err)
		return
	}
	if worker == nil {
		h.fail(w, "get worker", &ledger.NotFoundError{Kind: "worker", ID: string(id)})
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*worker))
}

func (h *Handler) SaveWorker(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "save worker", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if req.Name == "" {
		h.fail(w, "save worker", &ledger.ValidationError{Field: "name", Reason: "required"})
		return
	}
	if req.DailyWage < 0 || math.IsNaN(req.DailyWage) || math.IsInf(req.DailyWage, 0) {
		h.fail(w, "save worker", &ledger.ValidationError{Field: "daily_wage", Reason: "must be a non-negative number"})
		return
	}

	id := req.ID
	if id == "" {
		id = chi.URLParam(r, "id")
	}
	status := http.StatusOK
	var createdAt time.Time
	if id == "" {
		id = newID()
		status = http.StatusCreated
	} else {
		// Preserve creation time across wage/name updates.
		if existing, err := h.Store.GetWorker(r.Context(), ledger.WorkerID(id)); err == nil && existing != nil {
			createdAt = existing.CreatedAt
		} else {
			status = http.StatusCreated
		}
	}

	worker := ledger.Worker{
		ID:         ledger.WorkerID(id),
		Name:       req.Name,
		Phone:      req.Phone,
		Specialty:  req.Specialty,
		DailyWage:  ledger.NewMoney(req.DailyWage).RoundRupees(),
		LegacyPaid: ledger.NewMoney(req.LegacyPaid).RoundRupees(),
		CreatedAt:  createdAt,
	}
	if err := h.Store.SaveWorker(r.Context(), worker); err != nil {
		h.fail(w, "save worker", err)
		return
	}
	writeJSON(w, status, toWorkerDTO(worker))
}

func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := ledger.WorkerID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteWorker(r.Context(), id); err != nil {
		h.fail(w, "delete worker", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkerSummary reconciles earned vs paid for one worker.
func (h *Handler) GetWorkerSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.WorkerID(chi.URLParam(r, "id"))

	worker, err := h.Store.GetWorker(ctx, id)
	if err != nil {
		h.fail(w, "worker summary", err)
		return
	}
	if worker == nil {
		h.fail(w, "worker summary", &ledger.NotFoundError{Kind: "worker", ID: string(id)})
		return
	}

	attendance, err := h.Store.ListAttendance(ctx, ledger.AttendanceFilter{WorkerID: id})
	if err != nil {
		h.fail(w, "worker summary", err)
		return
	}
	payments, err := h.Store.ListPayments(ctx, ledger.PaymentFilter{WorkerID: id})
	if err != nil {
		h.fail(w, "worker summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerSummaryDTO(ledger.SummarizeWorker(*worker, attendance, payments)))
}

func (h *Handler) ListWorkerPayments(w http.ResponseWriter, r *http.Request) {
	id := ledger.WorkerID(chi.URLParam(r, "id"))
	payments, err := h.Store.ListPayments(r.Context(), ledger.PaymentFilter{WorkerID: id})
	if err != nil {
		h.fail(w, "list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		h.fail(w, "list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProjectID(chi.URLParam(r, "id"))
	project, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		h.fail(w, "get project", err)
		return
	}
	if project == nil {
		h.fail(w, "get project", &ledger.NotFoundError{Kind: "project", ID: string(id)})
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*project))
}

// CreateProject opens a job, locking the current per-foot rate onto it.
// Creation fails when no usable rate exists.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "create project", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	in := ledger.NewProjectInput{
		Name:        req.Name,
		Village:     req.Village,
		WorkTypes:   req.WorkTypes,
		Size:        decimal.NewFromFloat(req.Size),
		TotalAmount: ledger.NewMoney(req.TotalAmount),
	}
	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			h.fail(w, "create project", &ledger.ValidationError{Field: "start_date", Reason: "use YYYY-MM-DD"})
			return
		}
		in.StartDate = t
	}
	if req.ExpectedEndDate != "" {
		t, err := time.Parse("2006-01-02", req.ExpectedEndDate)
		if err != nil {
			h.fail(w, "create project", &ledger.ValidationError{Field: "expected_end_date", Reason: "use YYYY-MM-DD"})
			return
		}
		in.ExpectedEndDate = &t
	}

	rate, err := h.Store.CurrentRate(r.Context())
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	project, err := ledger.NewProject(in, rate)
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	if err := h.Store.SaveProject(r.Context(), project); err != nil {
		h.fail(w, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(project))
}

// CompleteProject records the end date and negotiated final amount.
// One-way: completing an already-completed project is a 409.
func (h *Handler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.ProjectID(chi.URLParam(r, "id"))

	var req CompleteProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "complete project", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.fail(w, "complete project", &ledger.ValidationError{Field: "end_date", Reason: "use YYYY-MM-DD"})
		return
	}

	project, err := h.Store.GetProject(ctx, id)
	if err != nil {
		h.fail(w, "complete project", err)
		return
	}
	if project == nil {
		h.fail(w, "complete project", &ledger.NotFoundError{Kind: "project", ID: string(id)})
		return
	}
	if err := project.Complete(endDate, ledger.NewMoney(req.FinalAmount)); err != nil {
		h.fail(w, "complete project", err)
		return
	}
	if err := h.Store.SaveProject(ctx, *project); err != nil {
		h.fail(w, "complete project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*project))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProjectID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		h.fail(w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddProjectPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.ProjectID(chi.URLParam(r, "id"))

	var req AddPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.fail(w, "add photo", &ledger.ValidationError{Field: "url", Reason: "required"})
		return
	}

	project, err := h.Store.GetProject(ctx, id)
	if err != nil {
		h.fail(w, "add photo", err)
		return
	}
	if project == nil {
		h.fail(w, "add photo", &ledger.NotFoundError{Kind: "project", ID: string(id)})
		return
	}
	project.AddPhoto(req.URL, req.Category)
	if err := h.Store.SaveProject(ctx, *project); err != nil {
		h.fail(w, "add photo", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*project))
}

func (h *Handler) GetProjectSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.ProjectID(chi.URLParam(r, "id"))

	project, err := h.Store.GetProject(ctx, id)
	if err != nil {
		h.fail(w, "project summary", err)
		return
	}
	if project == nil {
		h.fail(w, "project summary", &ledger.NotFoundError{Kind: "project", ID: string(id)})
		return
	}
	attendance, err := h.Store.ListAttendance(ctx, ledger.AttendanceFilter{ProjectID: id})
	if err != nil {
		h.fail(w, "project summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectSummaryDTO(ledger.SummarizeProject(*project, attendance)))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	f := ledger.AttendanceFilter{
		WorkerID:  ledger.WorkerID(r.URL.Query().Get("worker_id")),
		ProjectID: ledger.ProjectID(r.URL.Query().Get("project_id")),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.fail(w, "list attendance", &ledger.ValidationError{Field: "from", Reason: "use YYYY-MM-DD"})
			return
		}
		f.From = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.fail(w, "list attendance", &ledger.ValidationError{Field: "to", Reason: "use YYYY-MM-DD"})
			return
		}
		f.To = &t
	}

	records, err := h.Store.ListAttendance(r.Context(), f)
	if err != nil {
		h.fail(w, "list attendance", err)
		return
	}
	dtos := make([]AttendanceDTO, len(records))
	for i, rec := range records {
		dtos[i] = toAttendanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkAttendance upserts the mark for (worker, project, day). With
// toggle=true, reselecting the active status removes the mark instead.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "mark attendance", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		h.fail(w, "mark attendance", &ledger.ValidationError{Field: "day", Reason: "use YYYY-MM-DD"})
		return
	}
	status, err := ledger.ParseStatus(req.Status)
	if err != nil {
		h.fail(w, "mark attendance", err)
		return
	}

	workerID := ledger.WorkerID(req.WorkerID)
	projectID := ledger.ProjectID(req.ProjectID)

	if req.Toggle {
		rec, removed, err := h.Recorder.Toggle(r.Context(), workerID, projectID, day, status)
		if err != nil {
			h.fail(w, "mark attendance", err)
			return
		}
		resp := MarkAttendanceResponse{Removed: removed}
		if rec != nil {
			dto := toAttendanceDTO(*rec)
			resp.Record = &dto
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	rec, err := h.Recorder.Mark(r.Context(), workerID, projectID, day, status)
	if err != nil {
		h.fail(w, "mark attendance", err)
		return
	}
	dto := toAttendanceDTO(*rec)
	writeJSON(w, http.StatusOK, MarkAttendanceResponse{Record: &dto})
}

// UnmarkAttendance removes the mark for (worker, project, day).
func (h *Handler) UnmarkAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := time.Parse("2006-01-02", q.Get("day"))
	if err != nil {
		h.fail(w, "unmark attendance", &ledger.ValidationError{Field: "day", Reason: "use YYYY-MM-DD"})
		return
	}
	err = h.Recorder.Unmark(r.Context(),
		ledger.WorkerID(q.Get("worker_id")), ledger.ProjectID(q.Get("project_id")), day)
	if err != nil {
		h.fail(w, "unmark attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "record payment", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		h.fail(w, "record payment", &ledger.ValidationError{Field: "amount", Reason: "must be a finite number"})
		return
	}
	day := time.Now().UTC()
	if req.Day != "" {
		t, err := time.Parse("2006-01-02", req.Day)
		if err != nil {
			h.fail(w, "record payment", &ledger.ValidationError{Field: "day", Reason: "use YYYY-MM-DD"})
			return
		}
		day = t
	}

	payment, err := h.Payments.RecordPayment(r.Context(),
		ledger.WorkerID(req.WorkerID), ledger.NewMoney(req.Amount), day,
		ledger.ProjectID(req.ProjectID), req.Note)
	if err != nil {
		h.fail(w, "record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*payment))
}

// =============================================================================
// RATE & CALCULATOR
// =============================================================================

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Store.CurrentRate(r.Context())
	if err != nil {
		h.fail(w, "get rate", err)
		return
	}
	if rate == nil {
		h.fail(w, "get rate", &ledger.NotFoundError{Kind: "rate", ID: "current"})
		return
	}
	writeJSON(w, http.StatusOK, RateDTO{
		PerFoot:     rate.PerFoot.String(),
		EffectiveAt: rate.EffectiveAt.Format(time.RFC3339),
	})
}

// SetRate appends a new current rate. Existing projects keep their locked
// snapshots; only future estimates see the new value.
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req SetRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "set rate", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if req.PerFoot <= 0 || math.IsNaN(req.PerFoot) || math.IsInf(req.PerFoot, 0) {
		h.fail(w, "set rate", &ledger.ValidationError{Field: "per_foot", Reason: "must be positive"})
		return
	}
	rate := ledger.NewRate(ledger.NewMoney(req.PerFoot).RoundRupees(), time.Now().UTC())
	if err := h.Store.SetRate(r.Context(), rate); err != nil {
		h.fail(w, "set rate", err)
		return
	}
	writeJSON(w, http.StatusOK, RateDTO{
		PerFoot:     rate.PerFoot.String(),
		EffectiveAt: rate.EffectiveAt.Format(time.RFC3339),
	})
}

// GetRateHistory lists every rate that has been set, oldest first.
func (h *Handler) GetRateHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Store.RateHistory(r.Context())
	if err != nil {
		h.fail(w, "rate history", err)
		return
	}
	dtos := make([]RateDTO, len(history))
	for i, rate := range history {
		dtos[i] = RateDTO{
			PerFoot:     rate.PerFoot.String(),
			EffectiveAt: rate.EffectiveAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Calculate is the public cost calculator: size x current rate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	size, err := decimal.NewFromString(r.URL.Query().Get("size"))
	if err != nil || !size.IsPositive() {
		h.fail(w, "calculate", &ledger.ValidationError{Field: "size", Reason: "must be a positive number"})
		return
	}
	rate, err := h.Store.CurrentRate(r.Context())
	if err != nil {
		h.fail(w, "calculate", err)
		return
	}
	perFoot, err := ledger.LockRate(rate)
	if err != nil {
		h.fail(w, "calculate", err)
		return
	}
	writeJSON(w, http.StatusOK, CalculatorResponse{
		Size:     size.String(),
		PerFoot:  perFoot.String(),
		Estimate: ledger.EstimateAmount(size, perFoot).String(),
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workers, err := h.Store.ListWorkers(ctx)
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	projects, err := h.Store.ListProjects(ctx)
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	attendance, err := h.Store.ListAttendance(ctx, ledger.AttendanceFilter{})
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	payments, err := h.Store.ListPayments(ctx, ledger.PaymentFilter{})
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}

	series := ledger.MonthlyTotals(projects, attendance)
	dto := DashboardDTO{
		Income:  monthDTOs(series.Income),
		Labor:   monthDTOs(series.Labor),
		Workers: make([]WorkerSummaryDTO, 0, len(workers)),
	}
	for _, s := range ledger.SummarizeWorkers(workers, attendance, payments) {
		dto.Workers = append(dto.Workers, toWorkerSummaryDTO(s))
	}
	for _, p := range projects {
		if p.Status == ledger.ProjectCompleted {
			dto.Finished++
		} else {
			dto.Ongoing++
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

func monthDTOs(totals map[string]ledger.Money) []MonthTotalDTO {
	out := make([]MonthTotalDTO, 0, len(totals))
	for month, amount := range totals {
		out = append(out, MonthTotalDTO{Month: month, Amount: amount.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ExportPayroll streams the payroll summary workbook.
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workers, err := h.Store.ListWorkers(ctx)
	if err != nil {
		h.fail(w, "export payroll", err)
		return
	}
	attendance, err := h.Store.ListAttendance(ctx, ledger.AttendanceFilter{})
	if err != nil {
		h.fail(w, "export payroll", err)
		return
	}
	payments, err := h.Store.ListPayments(ctx, ledger.PaymentFilter{})
	if err != nil {
		h.fail(w, "export payroll", err)
		return
	}

	f, err := report.BuildPayroll(ledger.SummarizeWorkers(workers, attendance, payments))
	if err != nil {
		h.fail(w, "export payroll", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll.xlsx"`)
	if err := f.Write(w); err != nil && h.Log != nil {
		h.Log.Error("payroll export write failed", zap.Error(err))
	}
}

// =============================================================================
// MISC
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// fail maps a domain error onto an HTTP status and logs server faults.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrRateUnavailable):
		// Fail closed: nothing can be priced until a rate is configured.
		status = http.StatusConflict
	case ledger.IsValidation(err):
		status = http.StatusBadRequest
	case ledger.IsAuth(err):
		status = http.StatusUnauthorized
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case ledger.IsConflict(err):
		status = http.StatusConflict
	case ledger.IsUpstream(err):
		status = http.StatusBadGateway
	}
	if status >= 500 && h.Log != nil {
		h.Log.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: op, Message: err.Error()})
}
