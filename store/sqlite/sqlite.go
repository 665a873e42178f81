/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists workers, projects, attendance marks, payments, and the rate
  history. The same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  workers:    payroll identities and current daily wage
  projects:   jobs with locked rate, estimate, completion fields, photos
  attendance: one row per (worker, project, day), upserted in place
  payments:   append-only cash ledger
  rates:      per-foot rate history; newest row is the current rate

UPSERT ENFORCEMENT:
  A UNIQUE index on attendance(worker_id, project_id, day) backs the
  one-mark-per-key invariant; writes go through INSERT .. ON CONFLICT
  DO UPDATE so re-marking replaces status and amount in place.

MONEY COLUMNS:
  Stored as decimal TEXT and parsed with shopspring/decimal. No float
  columns exist for currency.

WAL MODE:
  SQLite is opened with WAL for better read concurrency. A single
  RWMutex serializes writers within the process.

CHANGE NOTIFICATION:
  Every successful write publishes a ledger.ChangeEvent through the
  embedded hub, which drives summary recomputation in subscribers.

SEE ALSO:
  - ledger/store.go: interface contracts
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/woodline/sitebook/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	*ledger.Hub

	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{Hub: ledger.NewHub(), db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		specialty TEXT,
		daily_wage TEXT NOT NULL,
		legacy_paid TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		village TEXT,
		work_types_json TEXT NOT NULL DEFAULT '[]',
		size TEXT NOT NULL DEFAULT '0',
		locked_rate TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		final_amount TEXT,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		expected_end_date TEXT,
		end_date TEXT,
		photos_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	-- One mark per worker per project per day; re-marking replaces in place.
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		worker_name TEXT NOT NULL,
		project_id TEXT NOT NULL,
		project_name TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(worker_id, project_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_worker_day
		ON attendance(worker_id, day);
	CREATE INDEX IF NOT EXISTS idx_attendance_project_day
		ON attendance(project_id, day);

	-- Append-only cash ledger. No UPDATE path exists for this table.
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		worker_name TEXT NOT NULL,
		amount TEXT NOT NULL,
		day TEXT NOT NULL,
		project_id TEXT,
		project_name TEXT,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_worker_day
		ON payments(worker_id, day);

	-- Rate history; the newest row is the current rate.
	CREATE TABLE IF NOT EXISTS rates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		per_foot TEXT NOT NULL,
		effective_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const timeFormat = time.RFC3339

func storeErr(op string, err error) error {
	return &ledger.UpstreamError{Op: op, Err: err}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(ctx context.Context, w ledger.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, phone, specialty, daily_wage, legacy_paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			specialty = excluded.specialty,
			daily_wage = excluded.daily_wage,
			legacy_paid = excluded.legacy_paid`,
		string(w.ID), w.Name, w.Phone, w.Specialty,
		w.DailyWage.String(), w.LegacyPaid.String(), w.CreatedAt.Format(timeFormat))
	if err != nil {
		return storeErr("save worker", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "workers", Key: string(w.ID), Kind: ledger.ChangeUpserted})
	return nil
}

func (s *Store) GetWorker(ctx context.Context, id ledger.WorkerID) (*ledger.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, specialty, daily_wage, legacy_paid, created_at
		FROM workers WHERE id = ?`, string(id))
	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get worker", err)
	}
	return w, nil
}

func (s *Store) ListWorkers(ctx context.Context) ([]ledger.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, specialty, daily_wage, legacy_paid, created_at
		FROM workers ORDER BY name`)
	if err != nil {
		return nil, storeErr("list workers", err)
	}
	defer rows.Close()

	var out []ledger.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, storeErr("list workers", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *Store) DeleteWorker(ctx context.Context, id ledger.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// No cascade: attendance and payment rows stay behind, carrying their
	// name snapshots.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, string(id)); err != nil {
		return storeErr("delete worker", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "workers", Key: string(id), Kind: ledger.ChangeDeleted})
	return nil
}

func scanWorker(r rowScanner) (*ledger.Worker, error) {
	var (
		id, name, createdAt   string
		phone, specialty      sql.NullString
		dailyWage, legacyPaid string
	)
	if err := r.Scan(&id, &name, &phone, &specialty, &dailyWage, &legacyPaid, &createdAt); err != nil {
		return nil, err
	}
	created, _ := time.Parse(timeFormat, createdAt)
	return &ledger.Worker{
		ID:         ledger.WorkerID(id),
		Name:       name,
		Phone:      phone.String,
		Specialty:  specialty.String,
		DailyWage:  ledger.ParseMoney(dailyWage),
		LegacyPaid: ledger.ParseMoney(legacyPaid),
		CreatedAt:  created,
	}, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) SaveProject(ctx context.Context, p ledger.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	workTypes, err := json.Marshal(p.WorkTypes)
	if err != nil {
		return storeErr("save project", err)
	}
	photos, err := json.Marshal(photoRows(p.Photos))
	if err != nil {
		return storeErr("save project", err)
	}

	var finalAmount, expectedEnd, endDate sql.NullString
	if p.FinalAmount != nil {
		finalAmount = sql.NullString{String: p.FinalAmount.String(), Valid: true}
	}
	if p.ExpectedEndDate != nil {
		expectedEnd = sql.NullString{String: p.ExpectedEndDate.Format(timeFormat), Valid: true}
	}
	if p.EndDate != nil {
		endDate = sql.NullString{String: p.EndDate.Format(timeFormat), Valid: true}
	}

	// locked_rate is deliberately absent from the update set: the snapshot
	// taken at creation must survive later saves.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, village, work_types_json, size, locked_rate,
			total_amount, final_amount, status, start_date, expected_end_date, end_date,
			photos_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			village = excluded.village,
			work_types_json = excluded.work_types_json,
			size = excluded.size,
			total_amount = excluded.total_amount,
			final_amount = excluded.final_amount,
			status = excluded.status,
			start_date = excluded.start_date,
			expected_end_date = excluded.expected_end_date,
			end_date = excluded.end_date,
			photos_json = excluded.photos_json`,
		string(p.ID), p.Name, p.Village, string(workTypes), p.Size.String(),
		p.LockedRate.String(), p.TotalAmount.String(), finalAmount,
		string(p.Status), p.StartDate.Format(timeFormat), expectedEnd, endDate,
		string(photos), p.CreatedAt.Format(timeFormat))
	if err != nil {
		return storeErr("save project", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "projects", Key: string(p.ID), Kind: ledger.ChangeUpserted})
	return nil
}

func (s *Store) GetProject(ctx context.Context, id ledger.ProjectID) (*ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, village, work_types_json, size, locked_rate, total_amount,
			final_amount, status, start_date, expected_end_date, end_date,
			photos_json, created_at
		FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get project", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]ledger.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, village, work_types_json, size, locked_rate, total_amount,
			final_amount, status, start_date, expected_end_date, end_date,
			photos_json, created_at
		FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	defer rows.Close()

	var out []ledger.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, storeErr("list projects", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteProject(ctx context.Context, id ledger.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, string(id)); err != nil {
		return storeErr("delete project", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "projects", Key: string(id), Kind: ledger.ChangeDeleted})
	return nil
}

type photoRow struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
	AddedAt  string `json:"added_at"`
}

func photoRows(photos []ledger.ProjectPhoto) []photoRow {
	out := make([]photoRow, len(photos))
	for i, ph := range photos {
		out[i] = photoRow{URL: ph.URL, Category: ph.Category, AddedAt: ph.AddedAt.Format(timeFormat)}
	}
	return out
}

func scanProject(r rowScanner) (*ledger.Project, error) {
	var (
		id, name, workTypesJSON, sizeStr, lockedRate, totalAmount string
		status, startDate, photosJSON, createdAt                  string
		village                                                   sql.NullString
		finalAmount, expectedEnd, endDate                         sql.NullString
	)
	err := r.Scan(&id, &name, &village, &workTypesJSON, &sizeStr, &lockedRate,
		&totalAmount, &finalAmount, &status, &startDate, &expectedEnd, &endDate,
		&photosJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	var workTypes []string
	_ = json.Unmarshal([]byte(workTypesJSON), &workTypes)

	var rawPhotos []photoRow
	_ = json.Unmarshal([]byte(photosJSON), &rawPhotos)
	photos := make([]ledger.ProjectPhoto, len(rawPhotos))
	for i, ph := range rawPhotos {
		added, _ := time.Parse(timeFormat, ph.AddedAt)
		photos[i] = ledger.ProjectPhoto{URL: ph.URL, Category: ph.Category, AddedAt: added}
	}

	size, err := decimal.NewFromString(sizeStr)
	if err != nil {
		size = decimal.Zero
	}
	start, _ := time.Parse(timeFormat, startDate)
	created, _ := time.Parse(timeFormat, createdAt)

	p := &ledger.Project{
		ID:          ledger.ProjectID(id),
		Name:        name,
		Village:     village.String,
		WorkTypes:   workTypes,
		Size:        size,
		LockedRate:  ledger.ParseMoney(lockedRate),
		TotalAmount: ledger.ParseMoney(totalAmount),
		Status:      ledger.ProjectStatus(status),
		StartDate:   start,
		Photos:      photos,
		CreatedAt:   created,
	}
	if finalAmount.Valid {
		m := ledger.ParseMoney(finalAmount.String)
		p.FinalAmount = &m
	}
	if expectedEnd.Valid {
		if t, err := time.Parse(timeFormat, expectedEnd.String); err == nil {
			p.ExpectedEndDate = &t
		}
	}
	if endDate.Valid {
		if t, err := time.Parse(timeFormat, endDate.String); err == nil {
			p.EndDate = &t
		}
	}
	return p, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) UpsertAttendance(ctx context.Context, rec ledger.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, worker_id, worker_name, project_id, project_name,
			day, status, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, project_id, day) DO UPDATE SET
			worker_name = excluded.worker_name,
			project_name = excluded.project_name,
			status = excluded.status,
			amount = excluded.amount,
			updated_at = excluded.updated_at`,
		rec.ID, string(rec.WorkerID), rec.WorkerName, string(rec.ProjectID), rec.ProjectName,
		rec.Day, string(rec.Status), rec.Amount.String(),
		rec.CreatedAt.Format(timeFormat), rec.UpdatedAt.Format(timeFormat))
	if err != nil {
		return storeErr("upsert attendance", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "attendance", Key: rec.ID, Kind: ledger.ChangeUpserted})
	return nil
}

func (s *Store) GetAttendance(ctx context.Context, key ledger.AttendanceKey) (*ledger.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, worker_name, project_id, project_name, day, status,
			amount, created_at, updated_at
		FROM attendance WHERE worker_id = ? AND project_id = ? AND day = ?`,
		string(key.WorkerID), string(key.ProjectID), key.Day)
	rec, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get attendance", err)
	}
	return rec, nil
}

func (s *Store) DeleteAttendance(ctx context.Context, key ledger.AttendanceKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM attendance WHERE worker_id = ? AND project_id = ? AND day = ?`,
		string(key.WorkerID), string(key.ProjectID), key.Day)
	if err != nil {
		return false, storeErr("delete attendance", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.Publish(ledger.ChangeEvent{
			Collection: "attendance",
			Key:        key.Day + "/" + string(key.WorkerID) + "/" + string(key.ProjectID),
			Kind:       ledger.ChangeDeleted,
		})
	}
	return n > 0, nil
}

func (s *Store) ListAttendance(ctx context.Context, f ledger.AttendanceFilter) ([]ledger.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, worker_id, worker_name, project_id, project_name, day, status,
			amount, created_at, updated_at
		FROM attendance WHERE 1=1`
	var args []any
	if f.WorkerID != "" {
		query += " AND worker_id = ?"
		args = append(args, string(f.WorkerID))
	}
	if f.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, string(f.ProjectID))
	}
	if f.From != nil {
		query += " AND day >= ?"
		args = append(args, ledger.DayOf(*f.From))
	}
	if f.To != nil {
		query += " AND day <= ?"
		args = append(args, ledger.DayOf(*f.To))
	}
	query += " ORDER BY day, worker_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list attendance", err)
	}
	defer rows.Close()

	var out []ledger.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, storeErr("list attendance", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanAttendance(r rowScanner) (*ledger.AttendanceRecord, error) {
	var (
		id, workerID, workerName, projectID, projectName string
		day, status, amount, createdAt, updatedAt        string
	)
	err := r.Scan(&id, &workerID, &workerName, &projectID, &projectName,
		&day, &status, &amount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	created, _ := time.Parse(timeFormat, createdAt)
	updated, _ := time.Parse(timeFormat, updatedAt)
	return &ledger.AttendanceRecord{
		ID:          id,
		WorkerID:    ledger.WorkerID(workerID),
		WorkerName:  workerName,
		ProjectID:   ledger.ProjectID(projectID),
		ProjectName: projectName,
		Day:         day,
		Status:      ledger.Status(status),
		Amount:      ledger.ParseMoney(amount),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) AppendPayment(ctx context.Context, p ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, worker_id, worker_name, amount, day, project_id,
			project_name, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.WorkerID), p.WorkerName, p.Amount.String(), p.Day,
		string(p.ProjectID), p.ProjectName, p.Note, p.CreatedAt.Format(timeFormat))
	if err != nil {
		return storeErr("append payment", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "payments", Key: p.ID, Kind: ledger.ChangeUpserted})
	return nil
}

func (s *Store) ListPayments(ctx context.Context, f ledger.PaymentFilter) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, worker_id, worker_name, amount, day, project_id, project_name,
			note, created_at
		FROM payments WHERE 1=1`
	var args []any
	if f.WorkerID != "" {
		query += " AND worker_id = ?"
		args = append(args, string(f.WorkerID))
	}
	if f.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, string(f.ProjectID))
	}
	if f.From != nil {
		query += " AND day >= ?"
		args = append(args, ledger.DayOf(*f.From))
	}
	if f.To != nil {
		query += " AND day <= ?"
		args = append(args, ledger.DayOf(*f.To))
	}
	query += " ORDER BY day, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	defer rows.Close()

	var out []ledger.Payment
	for rows.Next() {
		var (
			id, workerID, workerName, amount, day, createdAt string
			projectID, projectName, note                     sql.NullString
		)
		err := rows.Scan(&id, &workerID, &workerName, &amount, &day,
			&projectID, &projectName, &note, &createdAt)
		if err != nil {
			return nil, storeErr("list payments", err)
		}
		created, _ := time.Parse(timeFormat, createdAt)
		out = append(out, ledger.Payment{
			ID:          id,
			WorkerID:    ledger.WorkerID(workerID),
			WorkerName:  workerName,
			Amount:      ledger.ParseMoney(amount),
			Day:         day,
			ProjectID:   ledger.ProjectID(projectID.String),
			ProjectName: projectName.String,
			Note:        note.String,
			CreatedAt:   created,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// RATES
// =============================================================================

func (s *Store) CurrentRate(ctx context.Context) (*ledger.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT per_foot, effective_at FROM rates ORDER BY id DESC LIMIT 1`)
	var perFoot, effectiveAt string
	err := row.Scan(&perFoot, &effectiveAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("current rate", err)
	}
	at, _ := time.Parse(timeFormat, effectiveAt)
	return &ledger.Rate{PerFoot: ledger.ParseMoney(perFoot), EffectiveAt: at}, nil
}

func (s *Store) SetRate(ctx context.Context, r ledger.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.EffectiveAt.IsZero() {
		r.EffectiveAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rates (per_foot, effective_at) VALUES (?, ?)`,
		r.PerFoot.String(), r.EffectiveAt.Format(timeFormat))
	if err != nil {
		return storeErr("set rate", err)
	}
	s.Publish(ledger.ChangeEvent{Collection: "rates", Key: r.EffectiveAt.Format(timeFormat), Kind: ledger.ChangeUpserted})
	return nil
}

func (s *Store) RateHistory(ctx context.Context) ([]ledger.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT per_foot, effective_at FROM rates ORDER BY id`)
	if err != nil {
		return nil, storeErr("rate history", err)
	}
	defer rows.Close()

	var out []ledger.Rate
	for rows.Next() {
		var perFoot, effectiveAt string
		if err := rows.Scan(&perFoot, &effectiveAt); err != nil {
			return nil, storeErr("rate history", err)
		}
		at, _ := time.Parse(timeFormat, effectiveAt)
		out = append(out, ledger.Rate{PerFoot: ledger.ParseMoney(perFoot), EffectiveAt: at})
	}
	return out, rows.Err()
}
