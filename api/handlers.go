/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes leave accounting and attendance via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to leave.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List all employees
    POST   /api/employees                        Create employee
    GET    /api/employees/{id}                   Get employee (id or code)
    GET    /api/employees/{id}/balances?year=    Balance per leave type
    GET    /api/employees/{id}/history           Leave history, oldest first
    GET    /api/employees/{id}/consumption       ?leave_type_id=&year=
    GET    /api/employees/{id}/attendance?date=  Status on one day
    POST   /api/employees/{id}/leaves            Submit leave

  Leave types:
    GET    /api/leave-types?employee=            List (eligible only if employee set)
    POST   /api/leave-types                      Create leave type
    DELETE /api/leave-types/{id}                 Delete (records keep their name)

  Leave records:
    GET    /api/leave-records?employee=          List raw records
    POST   /api/leave-records/import             Import loose external JSON

  Reports:
    GET    /api/reports/leave-totals?year=       Team leave totals
    GET    /api/attendance                       Rolling attendance grid

  Scenarios:
    GET    /api/scenarios                        List demo scenarios
    POST   /api/scenarios/load                   Load a demo scenario
    POST   /api/reset                            Clear all data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (field set when known)
  - 404: Employee or leave type not found
  - 409: Duplicate record ID or employee code
  - 413: Import body over 10 MiB
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the data layer behind the API: the engine's collaborators plus
// the admin writes the API exposes. Implemented by store/sqlite and
// store/memory.
type Store interface {
	leave.Store
	SaveEmployee(ctx context.Context, e leave.Employee) error
	SaveLeaveType(ctx context.Context, lt leave.LeaveType) error
	DeleteLeaveType(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}

// Request body limits.
const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 10 << 20
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Service  *leave.Service
	Logger   *slog.Logger
	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(store Store, service *leave.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Service:  service,
		Logger:   logger,
		validate: validator.New(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates an employee. The ID is generated when omitted.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	e := leave.Employee{
		ID:             strings.TrimSpace(req.ID),
		Code:           strings.TrimSpace(req.Code),
		Name:           strings.TrimSpace(req.Name),
		Department:     strings.TrimSpace(req.Department),
		EmploymentType: strings.TrimSpace(req.EmploymentType),
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		if generic.IsConflict(err) {
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Employee code already in use", Field: "code", Details: err.Error()})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// GetEmployee returns one employee looked up by internal ID or code.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// GetBalances returns the employee's balance for every leave type.
// GET /api/employees/{id}/balances?year=2024
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	balances, err := h.Service.Balances(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTOs(balances))
}

// GetHistory returns the employee's leave records with resolved amounts.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetConsumption returns the employee's consumption of one leave type.
// GET /api/employees/{id}/consumption?leave_type_id=lt-casual&year=2024
func (h *Handler) GetConsumption(w http.ResponseWriter, r *http.Request) {
	leaveTypeRef := r.URL.Query().Get("leave_type_id")
	if strings.TrimSpace(leaveTypeRef) == "" {
		writeFieldError(w, "leave_type_id", "leave_type_id is required", nil)
		return
	}
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	e, err := h.Service.Employee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	lt, err := h.Service.LeaveType(ctx, leaveTypeRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	used, err := h.Service.Consumption(ctx, e.ID, lt.ID, year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConsumptionDTO{
		EmployeeID:  e.ID,
		LeaveTypeID: lt.ID,
		Year:        year,
		Used:        used.Float64(),
		Unit:        string(used.Unit),
		Display:     used.Display(),
	})
}

// GetAttendance returns the employee's status on one day (today by default).
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	date := generic.DateOf(h.Service.Now().In(h.Service.Location))
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := generic.ParseDate(s)
		if err != nil {
			writeFieldError(w, "date", "Invalid date", err)
			return
		}
		date = parsed
	}

	status, err := h.Service.AttendanceOn(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(status))
}

// =============================================================================
// LEAVE SUBMISSION
// =============================================================================

// SubmitLeave validates a leave submission, persists it, and returns the
// record with the advisory balance after it. Over-quota leave is accepted.
// POST /api/employees/{id}/leaves
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.Service.SubmitLeave(r.Context(), chi.URLParam(r, "id"), req.LeaveTypeID, leave.RequestInput{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Note:       req.Note,
		Attachment: req.Attachment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitLeaveResponse{
		Record:           toLeaveRecordDTO(result.Record),
		Requested:        result.Requested.Float64(),
		RequestedDisplay: result.Requested.Display(),
		Balance:          toBalanceDTO(result.Balance),
	})
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListLeaveTypes returns all leave types, or only those eligible for
// ?employee= when set.
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	types, err := h.Store.ListLeaveTypes(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}

	if ref := r.URL.Query().Get("employee"); ref != "" {
		e, err := h.Service.Employee(ctx, ref)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		types = leave.EligibleLeaveTypes(e, types)
	}

	dtos := make([]LeaveTypeDTO, len(types))
	for i, lt := range types {
		dtos[i] = toLeaveTypeDTO(lt)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeaveType creates a leave type. The ID is generated when omitted.
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveTypeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	unit, ok := generic.ParseUnit(req.Unit)
	if !ok {
		writeFieldError(w, "unit", "Invalid unit", generic.ErrInvalidUnit)
		return
	}

	lt := leave.LeaveType{
		ID:             strings.TrimSpace(req.ID),
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.TrimSpace(req.Code),
		Unit:           unit,
		Quota:          decimal.NewFromFloat(req.Quota),
		EmploymentType: strings.TrimSpace(req.EmploymentType),
	}
	if lt.ID == "" {
		lt.ID = uuid.NewString()
	}

	if err := h.Store.SaveLeaveType(r.Context(), lt); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(lt))
}

// DeleteLeaveType removes a leave type. Existing records keep their
// denormalized type name and still match by name.
func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLeaveType(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEAVE RECORD HANDLERS
// =============================================================================

// ListLeaveRecords returns raw records, filtered by ?employee= (id or code)
// when set. The filter matches the reference itself, not a resolved employee,
// so records of unknown employees remain reachable.
func (h *Handler) ListLeaveRecords(w http.ResponseWriter, r *http.Request) {
	var filter leave.RecordFilter
	if ref := r.URL.Query().Get("employee"); ref != "" {
		filter.EmployeeKeys = []string{ref}
		if e, err := h.Service.Employee(r.Context(), ref); err == nil {
			filter.EmployeeKeys = append(filter.EmployeeKeys, e.ID, e.Code)
		}
	}

	records, err := h.Store.ListLeaveRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave records", err)
		return
	}

	dtos := make([]LeaveRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLeaveRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ImportLeaveRecords stores externally-sourced records as-is.
// POST /api/leave-records/import
func (h *Handler) ImportLeaveRecords(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Import body too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	records, err := factory.ParseLeaveRecords(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave records", err)
		return
	}

	n, err := h.Service.ImportRecords(r.Context(), records)
	if err != nil {
		if generic.IsConflict(err) {
			writeError(w, http.StatusConflict, "Duplicate leave record", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import leave records", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{Imported: n})
}

// =============================================================================
// REPORTS
// =============================================================================

// GetLeaveTotals returns every employee's balance for every leave type.
// GET /api/reports/leave-totals?year=2024
func (h *Handler) GetLeaveTotals(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.TeamLeaveTotals(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := TeamLeaveTotalsResponse{Year: year, Rows: make([]TeamLeaveTotalsRowDTO, len(rows))}
	for i, row := range rows {
		resp.Rows[i] = TeamLeaveTotalsRowDTO{
			Employee: toEmployeeDTO(row.Employee),
			Balances: toBalanceDTOs(row.Balances),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAttendanceGrid returns every employee's status over the rolling window
// centered on today.
func (h *Handler) GetAttendanceGrid(w http.ResponseWriter, r *http.Request) {
	window, rows, err := h.Service.AttendanceGrid(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := AttendanceGridResponse{
		Dates: make([]string, len(window)),
		Rows:  make([]AttendanceRowDTO, len(rows)),
	}
	for i, d := range window {
		resp.Dates[i] = d.String()
	}
	for i, row := range rows {
		days := make([]AttendanceDTO, len(row.Days))
		for j, s := range row.Days {
			days[j] = toAttendanceDTO(s)
		}
		resp.Rows[i] = AttendanceRowDTO{Employee: toEmployeeDTO(row.Employee), Days: days}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. It writes the error response and returns false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Field:   ve[0].Field(),
				Details: err.Error(),
				Fields:  fields,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return 0, true
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 0 {
		writeFieldError(w, "year", "Invalid year", err)
		return 0, false
	}
	return year, true
}

// writeServiceError maps engine and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var reqErr *leave.RequestError
	switch {
	case errors.As(err, &reqErr):
		writeFieldError(w, reqErr.Field, "Invalid leave request", reqErr.Err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeFieldError(w http.ResponseWriter, field, message string, err error) {
	resp := ErrorResponse{Error: message, Field: field}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
