/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the leave engine's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NOT APPLICABLE vs ZERO:
  A balance for a leave type outside the employee's employment type renders
  with status "not_applicable" and null quota/used/remaining. A zero quota
  renders as 0. Clients must not treat the two alike.

VALIDATION:
  *Request types carry go-playground/validator tags for shape checks
  (required fields, enums). Leave submissions are validated by the engine
  itself so every cause gets its own error and field.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/consumption.go: LeaveBalance
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES & LEAVE TYPES
// =============================================================================

type EmployeeDTO struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Department     string `json:"department,omitempty"`
	EmploymentType string `json:"employment_type"`
}

type CreateEmployeeRequest struct {
	ID             string `json:"id"`
	Code           string `json:"code" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Department     string `json:"department"`
	EmploymentType string `json:"employment_type" validate:"required"`
}

type LeaveTypeDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code,omitempty"`
	Unit           string  `json:"unit"`
	Quota          float64 `json:"quota"`
	EmploymentType string  `json:"employment_type"`
}

type CreateLeaveTypeRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name" validate:"required"`
	Code           string  `json:"code"`
	Unit           string  `json:"unit" validate:"required,oneof=Day Hour day hour days hours"`
	Quota          float64 `json:"quota" validate:"gte=0"`
	EmploymentType string  `json:"employment_type" validate:"required"`
}

// =============================================================================
// BALANCES & CONSUMPTION
// =============================================================================

// BalanceDTO is one leave type's balance. Quota, Used and Remaining are nil
// when the leave type is not applicable to the employee.
type BalanceDTO struct {
	LeaveTypeID   string   `json:"leave_type_id"`
	LeaveTypeName string   `json:"leave_type_name"`
	Unit          string   `json:"unit"`
	Year          int      `json:"year,omitempty"`
	Status        string   `json:"status"`
	Quota         *float64 `json:"quota"`
	Used          *float64 `json:"used"`
	Remaining     *float64 `json:"remaining"`
	OverQuota     bool     `json:"over_quota"`
	Display       string   `json:"display"`
}

type ConsumptionDTO struct {
	EmployeeID  string  `json:"employee_id"`
	LeaveTypeID string  `json:"leave_type_id"`
	Year        int     `json:"year,omitempty"`
	Used        float64 `json:"used"`
	Unit        string  `json:"unit"`
	Display     string  `json:"display"`
}

// =============================================================================
// LEAVE SUBMISSION & RECORDS
// =============================================================================

// SubmitLeaveRequest is the body of POST /api/employees/{id}/leaves.
// Day leave uses start_date/end_date; hour leave uses start_date plus
// start_time/end_time.
type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Note        string `json:"note"`
	Attachment  string `json:"attachment"`
}

type SubmitLeaveResponse struct {
	Record           LeaveRecordDTO `json:"record"`
	Requested        float64        `json:"requested"`
	RequestedDisplay string         `json:"requested_display"`
	Balance          BalanceDTO     `json:"balance"`
}

type DayEntryDTO struct {
	Date              string   `json:"date"`
	Amount            *float64 `json:"amount,omitempty"`
	CountsTowardQuota bool     `json:"counts_toward_quota"`
}

type LeaveRecordDTO struct {
	ID             string        `json:"id"`
	EmployeeID     string        `json:"employee_id,omitempty"`
	EmployeeCode   string        `json:"employee_code,omitempty"`
	LeaveTypeID    string        `json:"leave_type_id,omitempty"`
	Type           string        `json:"type,omitempty"`
	Unit           string        `json:"unit,omitempty"`
	Amount         *float64      `json:"amount,omitempty"`
	StartDate      string        `json:"start_date,omitempty"`
	EndDate        string        `json:"end_date,omitempty"`
	LeaveDays      []DayEntryDTO `json:"leave_days,omitempty"`
	Note           string        `json:"note,omitempty"`
	Attachments    []string      `json:"attachments,omitempty"`
	ResolvedAmount float64       `json:"resolved_amount"`
	CreatedAt      string        `json:"created_at,omitempty"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type HistoryEntryDTO struct {
	RecordID      string  `json:"record_id"`
	Date          string  `json:"date,omitempty"`
	LeaveTypeName string  `json:"leave_type_name"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	Display       string  `json:"display"`
	Source        string  `json:"source"`
	Note          string  `json:"note,omitempty"`
	HasDocument   bool    `json:"has_document"`
}

// =============================================================================
// ATTENDANCE & REPORTS
// =============================================================================

type AttendanceDTO struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	HasDocument   bool   `json:"has_document"`
	RecordID      string `json:"record_id,omitempty"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`
}

type AttendanceRowDTO struct {
	Employee EmployeeDTO     `json:"employee"`
	Days     []AttendanceDTO `json:"days"`
}

type AttendanceGridResponse struct {
	Dates []string           `json:"dates"`
	Rows  []AttendanceRowDTO `json:"rows"`
}

type TeamLeaveTotalsRowDTO struct {
	Employee EmployeeDTO  `json:"employee"`
	Balances []BalanceDTO `json:"balances"`
}

type TeamLeaveTotalsResponse struct {
	Year int                     `json:"year,omitempty"`
	Rows []TeamLeaveTotalsRowDTO `json:"rows"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Field   string            `json:"field,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		Code:           e.Code,
		Name:           e.Name,
		Department:     e.Department,
		EmploymentType: e.EmploymentType,
	}
}

func toLeaveTypeDTO(lt leave.LeaveType) LeaveTypeDTO {
	return LeaveTypeDTO{
		ID:             lt.ID,
		Name:           lt.Name,
		Code:           lt.Code,
		Unit:           string(lt.AccountingUnit()),
		Quota:          lt.QuotaAmount().Float64(),
		EmploymentType: lt.EmploymentType,
	}
}

func toBalanceDTO(b leave.LeaveBalance) BalanceDTO {
	dto := BalanceDTO{
		LeaveTypeID:   b.LeaveType.ID,
		LeaveTypeName: b.LeaveType.Name,
		Unit:          string(b.LeaveType.AccountingUnit()),
		Year:          b.Year,
		Status:        string(b.Status),
		OverQuota:     b.OverQuota,
		Display:       "N/A",
	}
	if b.Applicable() {
		dto.Quota = leave.Float(b.Quota.Float64())
		dto.Used = leave.Float(b.Used.Float64())
		dto.Remaining = leave.Float(b.Remaining.Float64())
		dto.Display = b.Used.String() + " / " + b.Quota.String()
	}
	return dto
}

func toBalanceDTOs(balances []leave.LeaveBalance) []BalanceDTO {
	dtos := make([]BalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = toBalanceDTO(b)
	}
	return dtos
}

func toLeaveRecordDTO(r leave.LeaveRecord) LeaveRecordDTO {
	dto := LeaveRecordDTO{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeCode:   r.EmployeeCode,
		LeaveTypeID:    r.LeaveTypeID,
		Type:           r.TypeName,
		Unit:           string(r.Unit),
		Amount:         finite(r.Amount),
		StartDate:      dateString(r.StartDate),
		EndDate:        dateString(r.EndDate),
		Note:           r.Note,
		Attachments:    r.Attachments,
		ResolvedAmount: leave.ResolveLeaveAmount(r).Float64(),
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, d := range r.Days {
		dto.LeaveDays = append(dto.LeaveDays, DayEntryDTO{
			Date:              dateString(d.Date),
			Amount:            finite(d.Amount),
			CountsTowardQuota: d.CountsTowardQuota.Counts(),
		})
	}
	return dto
}

func toHistoryEntryDTO(h leave.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		RecordID:      h.Record.ID,
		Date:          dateString(h.Date),
		LeaveTypeName: h.LeaveTypeName,
		Amount:        h.Amount.Float64(),
		Unit:          string(h.Amount.Unit),
		Display:       h.Amount.Display(),
		Source:        string(h.Source),
		Note:          h.Record.Note,
		HasDocument:   h.Record.HasDocument(),
	}
}

func toAttendanceDTO(s leave.AttendanceDayStatus) AttendanceDTO {
	return AttendanceDTO{
		Date:          s.Date.String(),
		Status:        string(s.Status),
		HasDocument:   s.HasDocument,
		RecordID:      s.RecordID,
		LeaveTypeName: s.LeaveTypeName,
	}
}

// finite drops NaN and infinities, which encoding/json cannot encode.
func finite(f *float64) *float64 {
	if f == nil || !generic.IsFinite(*f) {
		return nil
	}
	return leave.Float(*f)
}

func dateString(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}
