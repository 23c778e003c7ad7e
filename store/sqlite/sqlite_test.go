package sqlite_test

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

// =============================================================================
// EMPLOYEES & LEAVE TYPES
// =============================================================================

func TestStore_Employees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-1", Code: "EMP001", Name: "Alice", Department: "Eng", EmploymentType: "Full-time"}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-1", Code: "EMP001", Name: "Alice", Department: "Ops", EmploymentType: "Full-time"}))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Ops", employees[0].Department)
	assert.Equal(t, "Full-time", employees[0].EmploymentType)
}

func TestStore_Employees_CodeIsUniqueAfterNormalization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-1", Code: "EMP001", Name: "Alice"}))

	// Re-saving the same employee keeps its code
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-1", Code: " emp001 ", Name: "Alice J."}))

	err := store.SaveEmployee(ctx, leave.Employee{ID: "e-2", Code: "\tEMP001\n", Name: "Bob"})
	assert.ErrorIs(t, err, leave.ErrDuplicateEmployeeCode)
	assert.True(t, generic.IsConflict(err))

	// Blank codes never collide
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-3", Name: "Carol"}))
	require.NoError(t, store.SaveEmployee(ctx, leave.Employee{ID: "e-4", Code: "  ", Name: "Dan"}))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 3)
}

func TestStore_LeaveTypes_QuotaRoundTripsExactly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lt := leave.LeaveType{
		ID: "lt-1", Name: "Personal Hours", Code: "PH", Unit: generic.UnitHour,
		Quota: decimal.RequireFromString("37.5"), EmploymentType: "Part-time",
	}
	require.NoError(t, store.SaveLeaveType(ctx, lt))

	types, err := store.ListLeaveTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.True(t, types[0].Quota.Equal(lt.Quota))
	assert.Equal(t, generic.UnitHour, types[0].Unit)

	require.NoError(t, store.DeleteLeaveType(ctx, "lt-1"))
	assert.True(t, generic.IsNotFound(store.DeleteLeaveType(ctx, "lt-1")))
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func TestStore_LeaveRecords_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	in := leave.LeaveRecord{
		ID:           "r1",
		EmployeeID:   "e-1",
		EmployeeCode: "EMP001",
		LeaveTypeID:  "lt-1",
		TypeName:     "Annual Leave",
		Unit:         generic.UnitDay,
		Amount:       leave.Float(2),
		StartDate:    date(2024, time.March, 1),
		EndDate:      date(2024, time.March, 2),
		Days: []leave.DayEntry{
			{Date: date(2024, time.March, 1), Amount: leave.Float(1), CountsTowardQuota: leave.QuotaFlagTrue},
			{Date: date(2024, time.March, 2), CountsTowardQuota: leave.QuotaFlagFalse},
			{Date: date(2024, time.March, 3)},
		},
		Note:        "Trip",
		Attachments: []string{"doc-1"},
		CreatedAt:   created,
	}

	_, err := store.CreateLeaveRecord(ctx, in)
	require.NoError(t, err)

	records, err := store.ListLeaveRecords(ctx, leave.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]

	assert.Equal(t, in.EmployeeCode, got.EmployeeCode)
	assert.Equal(t, in.TypeName, got.TypeName)
	require.NotNil(t, got.Amount)
	assert.Equal(t, 2.0, *got.Amount)
	assert.True(t, got.StartDate.Equal(in.StartDate))
	assert.True(t, got.EndDate.Equal(in.EndDate))
	require.Len(t, got.Days, 3)
	assert.Equal(t, leave.QuotaFlagTrue, got.Days[0].CountsTowardQuota)
	assert.Equal(t, leave.QuotaFlagFalse, got.Days[1].CountsTowardQuota)
	assert.Equal(t, leave.QuotaFlagUnset, got.Days[2].CountsTowardQuota)
	assert.Nil(t, got.Days[1].Amount)
	assert.Equal(t, []string{"doc-1"}, got.Attachments)
	assert.True(t, got.CreatedAt.Equal(created))

	// Same resolved amount before and after persistence
	assert.True(t, leave.ResolveLeaveAmount(got).Value.Equal(leave.ResolveLeaveAmount(in).Value))
}

func TestStore_LeaveRecords_NonFiniteAmountsStoredAsAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := leave.LeaveRecord{
		ID:         "r1",
		EmployeeID: "e-1",
		Amount:     leave.Float(math.NaN()),
		Days:       []leave.DayEntry{{Date: date(2024, time.March, 1), Amount: leave.Float(math.Inf(1))}},
	}
	_, err := store.CreateLeaveRecord(ctx, in)
	require.NoError(t, err)

	records, err := store.ListLeaveRecords(ctx, leave.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Amount)
	assert.Nil(t, records[0].Days[0].Amount)
	assert.True(t, leave.ResolveLeaveAmount(records[0]).Value.Equal(leave.ResolveLeaveAmount(in).Value))
}

func TestStore_LeaveRecords_FilterByIDOrCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, r := range []leave.LeaveRecord{
		{ID: "r1", EmployeeID: "e-1"},
		{ID: "r2", EmployeeCode: " emp001 "},
		{ID: "r3", EmployeeID: "e-2", EmployeeCode: "EMP002"},
	} {
		_, err := store.CreateLeaveRecord(ctx, r)
		require.NoError(t, err)
	}

	records, err := store.ListLeaveRecords(ctx, leave.RecordFilter{EmployeeKeys: []string{"E-1", "EMP001"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r2", records[1].ID)

	_, err = store.CreateLeaveRecord(ctx, leave.LeaveRecord{ID: "r1"})
	assert.True(t, generic.IsConflict(err))

	require.NoError(t, store.Reset(ctx))
	records, err = store.ListLeaveRecords(ctx, leave.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_LeaveRecords_FilterMatchesMemoryStore(t *testing.T) {
	// GIVEN: Legacy records whose employee references carry tabs and newlines
	ctx := context.Background()
	sqliteStore := newTestStore(t)
	memoryStore := memory.New()

	records := []leave.LeaveRecord{
		{ID: "r1", EmployeeCode: "\tEMP001\n", TypeName: "casual", Amount: leave.Float(2)},
		{ID: "r2", EmployeeID: "\r\ne-2 ", TypeName: "casual", Amount: leave.Float(1)},
		{ID: "r3", EmployeeCode: "EMP0010", TypeName: "casual", Amount: leave.Float(5)},
	}
	for _, r := range records {
		_, err := sqliteStore.CreateLeaveRecord(ctx, r)
		require.NoError(t, err)
		_, err = memoryStore.CreateLeaveRecord(ctx, r)
		require.NoError(t, err)
	}

	e := leave.Employee{ID: "e-2", Code: "EMP001"}
	casual := leave.LeaveType{ID: "lt-casual", Name: "Casual", Unit: generic.UnitDay}
	filter := leave.RecordFilter{EmployeeKeys: []string{e.ID, e.Code}}

	// WHEN: Both stores are filtered by the employee's keys
	fromSQLite, err := sqliteStore.ListLeaveRecords(ctx, filter)
	require.NoError(t, err)
	fromMemory, err := memoryStore.ListLeaveRecords(ctx, filter)
	require.NoError(t, err)
	all, err := sqliteStore.ListLeaveRecords(ctx, leave.RecordFilter{})
	require.NoError(t, err)

	// THEN: Same records, and the same consumption as the unfiltered engine
	ids := func(rs []leave.LeaveRecord) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []string{"r1", "r2"}, ids(fromSQLite))
	assert.Equal(t, ids(fromMemory), ids(fromSQLite))

	want := leave.ComputeConsumption(all, e, casual)
	assert.True(t, want.Value.Equal(decimal.NewFromInt(3)))
	assert.True(t, leave.ComputeConsumption(fromSQLite, e, casual).Value.Equal(want.Value))
}

func TestStore_MigratesDatabaseWithoutKeyColumns(t *testing.T) {
	// GIVEN: A database written before normalized keys were stored
	path := filepath.Join(t.TempDir(), "legacy.db")
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE employees (
			id TEXT PRIMARY KEY, code TEXT NOT NULL DEFAULT '', name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '', employment_type TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL);
		CREATE TABLE leave_records (
			id TEXT PRIMARY KEY, employee_id TEXT NOT NULL DEFAULT '',
			employee_code TEXT NOT NULL DEFAULT '', leave_type_id TEXT NOT NULL DEFAULT '',
			type_name TEXT NOT NULL DEFAULT '', unit TEXT NOT NULL DEFAULT '', amount REAL,
			start_date TEXT, end_date TEXT, days_json TEXT, note TEXT, attachments_json TEXT,
			created_at TEXT NOT NULL, seq INTEGER NOT NULL);
		INSERT INTO employees (id, code, name, created_at) VALUES ('e-1', ' EMP001 ', 'Alice', '2024-01-01T00:00:00Z');
		INSERT INTO leave_records (id, employee_code, amount, created_at, seq)
			VALUES ('old-1', char(9) || 'emp001' || char(10), 2, '2024-01-01T00:00:00Z', 1);
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: The store opens it
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	// THEN: Old rows are found by normalized key and old codes stay unique
	records, err := store.ListLeaveRecords(ctx, leave.RecordFilter{EmployeeKeys: []string{"EMP001"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old-1", records[0].ID)

	err = store.SaveEmployee(ctx, leave.Employee{ID: "e-2", Code: "emp001", Name: "Bob"})
	assert.True(t, generic.IsConflict(err))
}
