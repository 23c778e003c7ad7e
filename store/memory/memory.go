// Package memory provides an in-memory implementation of the leave collaborator interfaces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[string]leave.Employee
	leaveTypes map[string]leave.LeaveType
	records    []leave.LeaveRecord
	recordIDs  map[string]bool
}

func New() *Memory {
	return &Memory{
		employees:  make(map[string]leave.Employee),
		leaveTypes: make(map[string]leave.LeaveType),
		recordIDs:  make(map[string]bool),
	}
}

// =============================================================================
// EMPLOYEES & LEAVE TYPES
// =============================================================================

// SaveEmployee inserts or replaces an employee by ID. Codes are unique
// after normalization.
func (m *Memory) SaveEmployee(_ context.Context, e leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if code := generic.NormalizeKey(e.Code); code != "" {
		for id, other := range m.employees {
			if id != e.ID && generic.NormalizeKey(other.Code) == code {
				return fmt.Errorf("employee %q code %q: %w", e.ID, e.Code, leave.ErrDuplicateEmployeeCode)
			}
		}
	}
	m.employees[e.ID] = e
	return nil
}

// ListEmployees returns employees ordered by name, then ID.
func (m *Memory) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]leave.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// SaveLeaveType inserts or replaces a leave type by ID.
func (m *Memory) SaveLeaveType(_ context.Context, lt leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveTypes[lt.ID] = lt
	return nil
}

// DeleteLeaveType removes a leave type. Records keep their denormalized name.
func (m *Memory) DeleteLeaveType(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leaveTypes[id]; !ok {
		return fmt.Errorf("leave type %q: %w", id, generic.ErrEntityNotFound)
	}
	delete(m.leaveTypes, id)
	return nil
}

// ListLeaveTypes returns leave types ordered by name, then ID.
func (m *Memory) ListLeaveTypes(_ context.Context) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]leave.LeaveType, 0, len(m.leaveTypes))
	for _, lt := range m.leaveTypes {
		result = append(result, lt)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// LEAVE RECORDS (append-only)
// =============================================================================

// CreateLeaveRecord appends a record. IDs must be unique.
func (m *Memory) CreateLeaveRecord(_ context.Context, r leave.LeaveRecord) (leave.LeaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID != "" && m.recordIDs[r.ID] {
		return leave.LeaveRecord{}, fmt.Errorf("leave record %q: %w", r.ID, generic.ErrDuplicateID)
	}
	stored := cloneRecord(r)
	m.records = append(m.records, stored)
	if r.ID != "" {
		m.recordIDs[r.ID] = true
	}
	return cloneRecord(stored), nil
}

// ListLeaveRecords returns records in insertion order.
func (m *Memory) ListLeaveRecords(_ context.Context, filter leave.RecordFilter) ([]leave.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := generic.NewKeySet(filter.EmployeeKeys...)
	var result []leave.LeaveRecord
	for _, r := range m.records {
		if !keys.Empty() && !keys.Matches(r.EmployeeID) && !keys.Matches(r.EmployeeCode) {
			continue
		}
		result = append(result, cloneRecord(r))
	}
	return result, nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[string]leave.Employee)
	m.leaveTypes = make(map[string]leave.LeaveType)
	m.records = nil
	m.recordIDs = make(map[string]bool)
	return nil
}

// cloneRecord copies the slices so callers cannot mutate stored state.
func cloneRecord(r leave.LeaveRecord) leave.LeaveRecord {
	if r.Amount != nil {
		r.Amount = leave.Float(*r.Amount)
	}
	if r.Days != nil {
		days := make([]leave.DayEntry, len(r.Days))
		for i, d := range r.Days {
			if d.Amount != nil {
				d.Amount = leave.Float(*d.Amount)
			}
			days[i] = d
		}
		r.Days = days
	}
	if r.Attachments != nil {
		r.Attachments = append([]string(nil), r.Attachments...)
	}
	return r
}
