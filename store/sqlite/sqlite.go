/*
Package sqlite provides a SQLite-backed implementation of the leave collaborator interfaces.

PURPOSE:
  Persists employees, leave types and leave records for the host application
  and serves them back to the engine as in-memory collections. The engine
  itself never sees SQL.

INTERFACES IMPLEMENTED:
  leave.EmployeeSource:    ListEmployees
  leave.LeaveTypeSource:   ListLeaveTypes
  leave.LeaveRecordSource: ListLeaveRecords (optionally filtered by employee keys)
  leave.LeaveRecordWriter: CreateLeaveRecord

APPEND-ONLY RECORDS:
  Leave records are created once and never updated. There is no UPDATE
  statement on leave_records; Reset() is the only path that removes rows.

KEY TABLES:
  employees:     Internal ID, human employee code, employment type
  leave_types:   Unit, quota (decimal string), employment type scope
  leave_records: Denormalized type name/unit, top-level amount, day entries
                 and attachment references as JSON columns

LOOSE KEYS:
  Legacy records may reference an employee by code only, in any case and
  with stray whitespace. Each record stores employee_key_id and
  employee_key_code, written with generic.NormalizeKey at insert time, and
  employee filtering compares those. SQL trim() only strips spaces, so the
  normalization happens in Go, the same way the engine and the memory
  store match. employees.code_key holds the normalized code and is unique.

NON-FINITE AMOUNTS:
  SQLite and JSON cannot hold NaN or Inf. They are stored as NULL, which the
  amount resolver treats exactly like a non-finite value.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, as in the original ledger store.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, logger, time.UTC)

SEE ALSO:
  - leave/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives per connection.
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema. Databases created before the
// normalized key columns existed get them added and backfilled.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(tableSchema); err != nil {
		return err
	}
	for _, c := range keyColumns {
		if err := s.ensureColumn(c.table, c.column); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(indexSchema); err != nil {
		return err
	}
	return s.backfillKeys()
}

var keyColumns = []struct{ table, column string }{
	{"employees", "code_key"},
	{"leave_records", "employee_key_id"},
	{"leave_records", "employee_key_code"},
}

const tableSchema = `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL DEFAULT '',
		code_key TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL,
		quota TEXT NOT NULL,
		employment_type TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Leave records (append-only)
	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		employee_code TEXT NOT NULL DEFAULT '',
		employee_key_id TEXT NOT NULL DEFAULT '',
		employee_key_code TEXT NOT NULL DEFAULT '',
		leave_type_id TEXT NOT NULL DEFAULT '',
		type_name TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		amount REAL,
		start_date TEXT,
		end_date TEXT,
		days_json TEXT,
		note TEXT,
		attachments_json TEXT,
		created_at TEXT NOT NULL,
		seq INTEGER NOT NULL
	);
`

const indexSchema = `
	CREATE INDEX IF NOT EXISTS idx_employees_code_key
		ON employees(code_key);
	CREATE INDEX IF NOT EXISTS idx_leave_records_employee_key_id
		ON leave_records(employee_key_id);
	CREATE INDEX IF NOT EXISTS idx_leave_records_employee_key_code
		ON leave_records(employee_key_code);
	CREATE INDEX IF NOT EXISTS idx_leave_records_seq
		ON leave_records(seq);
`

func (s *Store) ensureColumn(table, column string) error {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	found := false
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if found {
		return nil
	}
	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT NOT NULL DEFAULT ''", table, column))
	return err
}

// backfillKeys fills normalized keys of rows written without them.
func (s *Store) backfillKeys() error {
	type pending struct{ id, a, b string }

	collect := func(query string) ([]pending, error) {
		rows, err := s.db.Query(query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []pending
		for rows.Next() {
			var p pending
			if err := rows.Scan(&p.id, &p.a, &p.b); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	}

	employees, err := collect(`SELECT id, code, '' FROM employees WHERE code_key = '' AND code != ''`)
	if err != nil {
		return fmt.Errorf("failed to backfill employee keys: %w", err)
	}
	for _, p := range employees {
		if _, err := s.db.Exec("UPDATE employees SET code_key = ? WHERE id = ?", generic.NormalizeKey(p.a), p.id); err != nil {
			return fmt.Errorf("failed to backfill employee keys: %w", err)
		}
	}

	records, err := collect(`
		SELECT id, employee_id, employee_code FROM leave_records
		WHERE employee_key_id = '' AND employee_key_code = ''
		  AND (employee_id != '' OR employee_code != '')`)
	if err != nil {
		return fmt.Errorf("failed to backfill record keys: %w", err)
	}
	for _, p := range records {
		_, err := s.db.Exec("UPDATE leave_records SET employee_key_id = ?, employee_key_code = ? WHERE id = ?",
			generic.NormalizeKey(p.a), generic.NormalizeKey(p.b), p.id)
		if err != nil {
			return fmt.Errorf("failed to backfill record keys: %w", err)
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee inserts or updates an employee. Codes are unique after
// normalization.
func (s *Store) SaveEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	codeKey := generic.NormalizeKey(e.Code)
	if codeKey != "" {
		var other string
		err := s.db.QueryRowContext(ctx,
			"SELECT id FROM employees WHERE code_key = ? AND id != ? LIMIT 1", codeKey, e.ID,
		).Scan(&other)
		switch {
		case err == nil:
			return fmt.Errorf("employee %q code %q held by %q: %w", e.ID, e.Code, other, leave.ErrDuplicateEmployeeCode)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check employee code: %w", err)
		}
	}

	query := `
		INSERT INTO employees (id, code, code_key, name, department, employment_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			code_key = excluded.code_key,
			name = excluded.name,
			department = excluded.department,
			employment_type = excluded.employment_type
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Code, codeKey, e.Name, e.Department, e.EmploymentType,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, code, name, department, employment_type FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		var e leave.Employee
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Department, &e.EmploymentType); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// LEAVE TYPE STORE
// =============================================================================

// SaveLeaveType inserts or updates a leave type.
func (s *Store) SaveLeaveType(ctx context.Context, lt leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_types (id, name, code, unit, quota, employment_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			unit = excluded.unit,
			quota = excluded.quota,
			employment_type = excluded.employment_type,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		lt.ID, lt.Name, lt.Code, string(lt.Unit), lt.Quota.String(), lt.EmploymentType, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save leave type: %w", err)
	}
	return nil
}

// DeleteLeaveType removes a leave type. Existing records keep their
// denormalized type name and unit.
func (s *Store) DeleteLeaveType(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM leave_types WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete leave type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("leave type %q: %w", id, generic.ErrEntityNotFound)
	}
	return nil
}

// ListLeaveTypes returns all leave types.
func (s *Store) ListLeaveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, code, unit, quota, employment_type FROM leave_types ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		var (
			lt    leave.LeaveType
			unit  string
			quota string
		)
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Code, &unit, &quota, &lt.EmploymentType); err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		lt.Unit = generic.Unit(unit)
		lt.Quota, err = decimal.NewFromString(quota)
		if err != nil {
			lt.Quota = decimal.Zero
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

// =============================================================================
// LEAVE RECORD STORE (append-only)
// =============================================================================

type dayEntryJSON struct {
	Date              string          `json:"date"`
	Amount            *float64        `json:"amount,omitempty"`
	CountsTowardQuota leave.QuotaFlag `json:"countsTowardQuota,omitempty"`
}

// CreateLeaveRecord appends a record.
func (s *Store) CreateLeaveRecord(ctx context.Context, r leave.LeaveRecord) (leave.LeaveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	daysJSON, err := encodeDays(r.Days)
	if err != nil {
		return leave.LeaveRecord{}, err
	}
	attachmentsJSON, err := json.Marshal(r.Attachments)
	if err != nil {
		return leave.LeaveRecord{}, fmt.Errorf("failed to encode attachments: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leave_records
		(id, employee_id, employee_code, employee_key_id, employee_key_code,
		 leave_type_id, type_name, unit, amount,
		 start_date, end_date, days_json, note, attachments_json, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		        (SELECT COALESCE(MAX(seq), 0) + 1 FROM leave_records))
	`

	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.EmployeeID,
		r.EmployeeCode,
		generic.NormalizeKey(r.EmployeeID),
		generic.NormalizeKey(r.EmployeeCode),
		r.LeaveTypeID,
		r.TypeName,
		string(r.Unit),
		finiteOrNull(r.Amount),
		dateOrNull(r.StartDate),
		dateOrNull(r.EndDate),
		daysJSON,
		r.Note,
		string(attachmentsJSON),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return leave.LeaveRecord{}, fmt.Errorf("leave record %q: %w", r.ID, generic.ErrDuplicateID)
		}
		return leave.LeaveRecord{}, fmt.Errorf("failed to create leave record: %w", err)
	}

	return r, nil
}

// ListLeaveRecords returns records in insertion order, optionally narrowed to
// those whose employee_id or employee_code matches one of filter.EmployeeKeys.
func (s *Store) ListLeaveRecords(ctx context.Context, filter leave.RecordFilter) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, employee_code, leave_type_id, type_name, unit, amount,
		       start_date, end_date, days_json, note, attachments_json, created_at
		FROM leave_records
	`

	var keys []any
	for _, k := range filter.EmployeeKeys {
		if n := generic.NormalizeKey(k); n != "" {
			keys = append(keys, n)
		}
	}

	var args []any
	if len(keys) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
		query += fmt.Sprintf(`
		WHERE employee_key_id IN (%s)
		   OR employee_key_code IN (%s)`, placeholders, placeholders)
		args = append(args, keys...)
		args = append(args, keys...)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.LeaveRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (leave.LeaveRecord, error) {
	var (
		r               leave.LeaveRecord
		unit            string
		amount          sql.NullFloat64
		startDate       sql.NullString
		endDate         sql.NullString
		daysJSON        sql.NullString
		note            sql.NullString
		attachmentsJSON sql.NullString
		createdAt       string
	)

	err := rows.Scan(
		&r.ID, &r.EmployeeID, &r.EmployeeCode, &r.LeaveTypeID, &r.TypeName, &unit, &amount,
		&startDate, &endDate, &daysJSON, &note, &attachmentsJSON, &createdAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan leave record: %w", err)
	}

	r.Unit = generic.Unit(unit)
	if amount.Valid {
		r.Amount = leave.Float(amount.Float64)
	}
	if startDate.Valid {
		r.StartDate, _ = generic.ParseDate(startDate.String)
	}
	if endDate.Valid {
		r.EndDate, _ = generic.ParseDate(endDate.String)
	}
	r.Note = note.String
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	if daysJSON.Valid && daysJSON.String != "" {
		r.Days, err = decodeDays(daysJSON.String)
		if err != nil {
			return r, err
		}
	}
	if attachmentsJSON.Valid && attachmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(attachmentsJSON.String), &r.Attachments); err != nil {
			return r, fmt.Errorf("failed to decode attachments of %s: %w", r.ID, err)
		}
	}

	return r, nil
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"leave_records", "leave_types", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func encodeDays(days []leave.DayEntry) (sql.NullString, error) {
	if days == nil {
		return sql.NullString{}, nil
	}
	rows := make([]dayEntryJSON, len(days))
	for i, d := range days {
		rows[i] = dayEntryJSON{
			Date:              d.Date.String(),
			Amount:            finitePtr(d.Amount),
			CountsTowardQuota: d.CountsTowardQuota,
		}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode day entries: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeDays(s string) ([]leave.DayEntry, error) {
	var rows []dayEntryJSON
	if err := json.Unmarshal([]byte(s), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode day entries: %w", err)
	}
	days := make([]leave.DayEntry, len(rows))
	for i, row := range rows {
		date, _ := generic.ParseDate(row.Date)
		days[i] = leave.DayEntry{Date: date, Amount: row.Amount, CountsTowardQuota: row.CountsTowardQuota}
	}
	return days, nil
}

func finitePtr(f *float64) *float64 {
	if f == nil || !generic.IsFinite(*f) {
		return nil
	}
	return f
}

func finiteOrNull(f *float64) sql.NullFloat64 {
	if p := finitePtr(f); p != nil {
		return sql.NullFloat64{Float64: *p, Valid: true}
	}
	return sql.NullFloat64{}
}

func dateOrNull(tp generic.TimePoint) sql.NullString {
	if tp.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
