package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// SERVICE - Engine functions over the host's collaborators
// =============================================================================

// Service fetches collections from the Store and runs the pure engine
// functions over them. It holds no state of its own between calls.
type Service struct {
	Store    Store
	Builder  *RequestBuilder
	Logger   *slog.Logger
	Location *time.Location

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string
}

func NewService(store Store, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:    store,
		Builder:  NewRequestBuilder(loc),
		Logger:   logger,
		Location: loc,
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString() },
	}
}

// now is the single clock snapshot for one call, in the service location.
func (s *Service) now() time.Time { return s.Now().In(s.Location) }

// =============================================================================
// LOOKUPS
// =============================================================================

// Employee resolves ref against employee IDs and codes.
func (s *Service) Employee(ctx context.Context, ref string) (Employee, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to list employees: %w", err)
	}
	e, ok := FindEmployee(employees, ref)
	if !ok {
		return Employee{}, fmt.Errorf("%q: %w", ref, ErrEmployeeNotFound)
	}
	return e, nil
}

// LeaveType resolves ref against leave type IDs, then names.
func (s *Service) LeaveType(ctx context.Context, ref string) (LeaveType, error) {
	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return LeaveType{}, fmt.Errorf("failed to list leave types: %w", err)
	}
	lt, ok := FindLeaveType(types, ref)
	if !ok {
		return LeaveType{}, fmt.Errorf("%q: %w", ref, ErrLeaveTypeNotFound)
	}
	return lt, nil
}

func (s *Service) recordsFor(ctx context.Context, e Employee) ([]LeaveRecord, error) {
	records, err := s.Store.ListLeaveRecords(ctx, RecordFilter{EmployeeKeys: []string{e.ID, e.Code}})
	if err != nil {
		return nil, fmt.Errorf("failed to list leave records: %w", err)
	}
	return records, nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitResult is a persisted submission plus the advisory balance after it.
type SubmitResult struct {
	Record    LeaveRecord
	Requested generic.Amount
	Balance   LeaveBalance
}

// SubmitLeave validates and builds the request, then persists it as one
// record. Exceeding the quota does not block the submission; it only shows
// up as Balance.OverQuota.
func (s *Service) SubmitLeave(ctx context.Context, employeeRef, leaveTypeRef string, in RequestInput) (*SubmitResult, error) {
	e, err := s.Employee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}
	lt, err := s.LeaveType(ctx, leaveTypeRef)
	if err != nil {
		return nil, err
	}

	req, err := s.Builder.Build(e, lt, in)
	if err != nil {
		return nil, err
	}

	record, err := s.Store.CreateLeaveRecord(ctx, req.ToRecord(s.NewID(), s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create leave record: %w", err)
	}

	records, err := s.recordsFor(ctx, e)
	if err != nil {
		return nil, err
	}
	balance := balanceFor(e, lt, RecordsForEmployee(records, e), record.AccountingDate().Year())

	s.Logger.Info("leave submitted",
		slog.String("record_id", record.ID),
		slog.String("employee_id", e.ID),
		slog.String("leave_type", lt.Name),
		slog.String("requested", req.Requested.Display()),
		slog.Bool("over_quota", balance.OverQuota),
	)
	if !lt.AppliesTo(e) {
		s.Logger.Warn("leave submitted for a leave type outside the employee's employment type",
			slog.String("employee_id", e.ID),
			slog.String("leave_type_id", lt.ID),
		)
	}

	return &SubmitResult{Record: record, Requested: req.Requested, Balance: balance}, nil
}

// ImportRecords persists externally-sourced records as-is. Records without
// an ID get one. Returns the number stored before the first failure.
func (s *Service) ImportRecords(ctx context.Context, records []LeaveRecord) (int, error) {
	for i, r := range records {
		if r.ID == "" {
			r.ID = s.NewID()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		if _, err := s.Store.CreateLeaveRecord(ctx, r); err != nil {
			return i, fmt.Errorf("failed to import record %d: %w", i, err)
		}
	}
	return len(records), nil
}

// =============================================================================
// READ VIEWS
// =============================================================================

// Consumption returns the employee's consumption of one leave type in year
// (0 for all years).
func (s *Service) Consumption(ctx context.Context, employeeRef, leaveTypeRef string, year int) (generic.Amount, error) {
	e, err := s.Employee(ctx, employeeRef)
	if err != nil {
		return generic.Amount{}, err
	}
	lt, err := s.LeaveType(ctx, leaveTypeRef)
	if err != nil {
		return generic.Amount{}, err
	}
	records, err := s.recordsFor(ctx, e)
	if err != nil {
		return generic.Amount{}, err
	}
	return ComputeConsumptionInYear(records, e, lt, year), nil
}

// Balances returns the employee's balance for every leave type in year.
func (s *Service) Balances(ctx context.Context, employeeRef string, year int) ([]LeaveBalance, error) {
	e, err := s.Employee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}
	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	records, err := s.recordsFor(ctx, e)
	if err != nil {
		return nil, err
	}
	return ComputeLeaveBalance(e, types, records, year), nil
}

// History returns the employee's records oldest first.
func (s *Service) History(ctx context.Context, employeeRef string) ([]HistoryEntry, error) {
	e, err := s.Employee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}
	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	records, err := s.recordsFor(ctx, e)
	if err != nil {
		return nil, err
	}
	entries := History(records, e, types)
	for _, h := range entries {
		if h.Source == SourceDefault {
			s.Logger.Debug("leave record has no usable quantity, counted as 1",
				slog.String("record_id", h.Record.ID),
				slog.String("employee_id", e.ID),
			)
		}
	}
	return entries, nil
}

// TeamLeaveTotals returns every employee's balances in year.
func (s *Service) TeamLeaveTotals(ctx context.Context, year int) ([]TeamLeaveTotalsRow, error) {
	employees, types, records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return TeamLeaveTotals(employees, types, records, year), nil
}

// AttendanceOn returns the employee's status on date.
func (s *Service) AttendanceOn(ctx context.Context, employeeRef string, date generic.TimePoint) (AttendanceDayStatus, error) {
	e, err := s.Employee(ctx, employeeRef)
	if err != nil {
		return AttendanceDayStatus{}, err
	}
	records, err := s.recordsFor(ctx, e)
	if err != nil {
		return AttendanceDayStatus{}, err
	}
	return ResolveAttendanceStatus(e, date, records), nil
}

// AttendanceGrid returns the rolling window around today and every
// employee's status over it. The clock is read once.
func (s *Service) AttendanceGrid(ctx context.Context) ([]generic.TimePoint, []AttendanceRow, error) {
	window := AttendanceWindow(s.now())
	employees, _, records, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return window, AttendanceGrid(employees, window, records), nil
}

func (s *Service) snapshot(ctx context.Context) ([]Employee, []LeaveType, []LeaveRecord, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list employees: %w", err)
	}
	types, err := s.Store.ListLeaveTypes(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	records, err := s.Store.ListLeaveRecords(ctx, RecordFilter{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list leave records: %w", err)
	}
	return employees, types, records, nil
}
