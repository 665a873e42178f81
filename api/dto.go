/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain
  types. Money travels as decimal strings so clients never see float
  artifacts; profit for ongoing projects is the literal string
  "pending", never a number.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"time"

	"github.com/woodline/sitebook/ledger"
)

// =============================================================================
// WORKERS
// =============================================================================

type WorkerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Specialty  string `json:"specialty,omitempty"`
	DailyWage  string `json:"daily_wage"`
	LegacyPaid string `json:"legacy_paid,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type SaveWorkerRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Specialty  string  `json:"specialty"`
	DailyWage  float64 `json:"daily_wage"`
	LegacyPaid float64 `json:"legacy_paid"`
}

type WorkerSummaryDTO struct {
	WorkerID    string `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
	TotalEarned string `json:"total_earned"`
	TotalPaid   string `json:"total_paid"`
	Balance     string `json:"balance"`
	DaysMarked  int    `json:"days_marked"`
}

// =============================================================================
// PROJECTS
// =============================================================================

type ProjectPhotoDTO struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
}

type ProjectDTO struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Village         string            `json:"village,omitempty"`
	WorkTypes       []string          `json:"work_types,omitempty"`
	Size            string            `json:"size"`
	LockedRate      string            `json:"locked_rate"`
	TotalAmount     string            `json:"total_amount"`
	FinalAmount     *string           `json:"final_amount,omitempty"`
	Status          string            `json:"status"`
	StartDate       string            `json:"start_date"`
	ExpectedEndDate *string           `json:"expected_end_date,omitempty"`
	EndDate         *string           `json:"end_date,omitempty"`
	Photos          []ProjectPhotoDTO `json:"photos"`
}

type CreateProjectRequest struct {
	Name            string   `json:"name"`
	Village         string   `json:"village"`
	WorkTypes       []string `json:"work_types"`
	Size            float64  `json:"size"`
	TotalAmount     float64  `json:"total_amount"` // optional; overrides size x rate
	StartDate       string   `json:"start_date"`
	ExpectedEndDate string   `json:"expected_end_date"`
}

type CompleteProjectRequest struct {
	EndDate     string  `json:"end_date"`
	FinalAmount float64 `json:"final_amount"`
}

type AddPhotoRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ProjectSummaryDTO reports labor cost and profit. Profit is the string
// "pending" until the project completes.
type ProjectSummaryDTO struct {
	ProjectID string `json:"project_id"`
	LaborCost string `json:"labor_cost"`
	Profit    string `json:"profit"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceDTO struct {
	ID          string `json:"id"`
	WorkerID    string `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Day         string `json:"day"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
}

type MarkAttendanceRequest struct {
	WorkerID  string `json:"worker_id"`
	ProjectID string `json:"project_id"`
	Day       string `json:"day"` // YYYY-MM-DD
	Status    string `json:"status"`

	// Toggle opts in to toggle semantics: reselecting the active status
	// removes the mark instead of rewriting it.
	Toggle bool `json:"toggle"`
}

type MarkAttendanceResponse struct {
	Removed bool           `json:"removed"`
	Record  *AttendanceDTO `json:"record,omitempty"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID          string `json:"id"`
	WorkerID    string `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
	Amount      string `json:"amount"`
	Day         string `json:"day"`
	ProjectID   string `json:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Note        string `json:"note,omitempty"`
}

type RecordPaymentRequest struct {
	WorkerID  string  `json:"worker_id"`
	Amount    float64 `json:"amount"`
	Day       string  `json:"day"`
	ProjectID string  `json:"project_id"`
	Note      string  `json:"note"`
}

// =============================================================================
// RATE & CALCULATOR
// =============================================================================

type RateDTO struct {
	PerFoot     string `json:"per_foot"`
	EffectiveAt string `json:"effective_at"`
}

type SetRateRequest struct {
	PerFoot float64 `json:"per_foot"`
}

type CalculatorResponse struct {
	Size     string `json:"size"`
	PerFoot  string `json:"per_foot"`
	Estimate string `json:"estimate"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type MonthTotalDTO struct {
	Month  string `json:"month"` // "2006-01"
	Amount string `json:"amount"`
}

type DashboardDTO struct {
	Income   []MonthTotalDTO    `json:"income_by_month"`
	Labor    []MonthTotalDTO    `json:"labor_by_month"`
	Workers  []WorkerSummaryDTO `json:"workers"`
	Ongoing  int                `json:"ongoing_projects"`
	Finished int                `json:"completed_projects"`
}

// =============================================================================
// AUTH & MISC
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toWorkerDTO(w ledger.Worker) WorkerDTO {
	return WorkerDTO{
		ID:         string(w.ID),
		Name:       w.Name,
		Phone:      w.Phone,
		Specialty:  w.Specialty,
		DailyWage:  w.DailyWage.String(),
		LegacyPaid: w.LegacyPaid.String(),
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
	}
}

func toProjectDTO(p ledger.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          string(p.ID),
		Name:        p.Name,
		Village:     p.Village,
		WorkTypes:   p.WorkTypes,
		Size:        p.Size.String(),
		LockedRate:  p.LockedRate.String(),
		TotalAmount: p.TotalAmount.String(),
		Status:      string(p.Status),
		StartDate:   p.StartDate.Format("2006-01-02"),
		Photos:      make([]ProjectPhotoDTO, 0, len(p.Photos)),
	}
	if p.FinalAmount != nil {
		s := p.FinalAmount.String()
		dto.FinalAmount = &s
	}
	if p.ExpectedEndDate != nil {
		s := p.ExpectedEndDate.Format("2006-01-02")
		dto.ExpectedEndDate = &s
	}
	if p.EndDate != nil {
		s := p.EndDate.Format("2006-01-02")
		dto.EndDate = &s
	}
	for _, ph := range p.Photos {
		dto.Photos = append(dto.Photos, ProjectPhotoDTO{URL: ph.URL, Category: ph.Category})
	}
	return dto
}

func toAttendanceDTO(rec ledger.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:          rec.ID,
		WorkerID:    string(rec.WorkerID),
		WorkerName:  rec.WorkerName,
		ProjectID:   string(rec.ProjectID),
		ProjectName: rec.ProjectName,
		Day:         rec.Day,
		Status:      string(rec.Status),
		Amount:      rec.Amount.String(),
	}
}

func toPaymentDTO(p ledger.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID,
		WorkerID:    string(p.WorkerID),
		WorkerName:  p.WorkerName,
		Amount:      p.Amount.String(),
		Day:         p.Day,
		ProjectID:   string(p.ProjectID),
		ProjectName: p.ProjectName,
		Note:        p.Note,
	}
}

func toWorkerSummaryDTO(s ledger.WorkerSummary) WorkerSummaryDTO {
	return WorkerSummaryDTO{
		WorkerID:    string(s.WorkerID),
		WorkerName:  s.WorkerName,
		TotalEarned: s.TotalEarned.String(),
		TotalPaid:   s.TotalPaid.String(),
		Balance:     s.Balance.String(),
		DaysMarked:  s.DaysMarked,
	}
}

func toProjectSummaryDTO(s ledger.ProjectSummary) ProjectSummaryDTO {
	dto := ProjectSummaryDTO{
		ProjectID: string(s.ProjectID),
		LaborCost: s.LaborCost.String(),
		Profit:    "pending",
	}
	if s.Profit != nil {
		dto.Profit = s.Profit.String()
	}
	return dto
}
