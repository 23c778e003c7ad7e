package leave

import "context"

// =============================================================================
// COLLABORATOR INTERFACES - Data owned by the host application
// =============================================================================

type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

type LeaveTypeSource interface {
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
}

// RecordFilter narrows ListLeaveRecords. EmployeeKeys, when set, selects
// records whose employee ID or code equals any key after trimming and
// lowercasing. The zero filter selects every record.
type RecordFilter struct {
	EmployeeKeys []string
}

type LeaveRecordSource interface {
	ListLeaveRecords(ctx context.Context, filter RecordFilter) ([]LeaveRecord, error)
}

// LeaveRecordWriter persists a built record and returns it as stored.
type LeaveRecordWriter interface {
	CreateLeaveRecord(ctx context.Context, record LeaveRecord) (LeaveRecord, error)
}

// Store is everything Service needs from the host's data layer.
type Store interface {
	EmployeeSource
	LeaveTypeSource
	LeaveRecordSource
	LeaveRecordWriter
}
