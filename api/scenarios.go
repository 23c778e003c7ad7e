/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates employees, leave
	types, and leave records that exercise specific engine behavior.

AVAILABLE SCENARIOS:

	over-quota:   One full-time employee submits 3 + 9 days against a
	              10-day quota. Used 12, remaining 0, over quota.
	mixed-team:   Full-time and part-time staff, day and hour leave types,
	              and leave around today for the attendance grid.
	legacy-data:  Imported external records keyed by employee code and
	              leave type name, with string booleans and bad amounts.

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create leave types
 3. Create employees
 4. Submit leave through leave.Service, or import raw JSON via factory

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "over-quota"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and loader

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
	Dates in mixed-team are relative to the service clock so the rolling
	attendance window always shows them.

SEE ALSO:
  - handlers.go: Handler and error helpers
  - factory/record.go: Loose record JSON used by legacy-data
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	load func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "over-quota",
			Name:        "Over Quota",
			Description: "Two requests of 3 and 9 days against a 10-day annual quota",
		},
		load: loadOverQuotaScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-team",
			Name:        "Mixed Team",
			Description: "Full-time and part-time employees with day and hour leave around today",
		},
		load: loadMixedTeamScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "legacy-data",
			Name:        "Legacy Data",
			Description: "Imported records keyed by employee code and leave type name",
		},
		load: loadLegacyDataScenario,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeFieldError(w, "scenario_id", "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := s.load(ctx, h); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = s.ID

	h.Logger.Info("scenario loaded", "scenario", s.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const (
	fullTime = "Full-time"
	partTime = "Part-time"
)

func loadOverQuotaScenario(ctx context.Context, h *Handler) error {
	if err := h.Store.SaveLeaveType(ctx, leave.LeaveType{
		ID:             "lt-annual",
		Name:           "Annual Leave",
		Code:           "AL",
		Unit:           generic.UnitDay,
		Quota:          decimal.NewFromInt(10),
		EmploymentType: fullTime,
	}); err != nil {
		return err
	}
	if err := h.Store.SaveEmployee(ctx, leave.Employee{
		ID:             "emp-001",
		Code:           "EMP001",
		Name:           "Alice Johnson",
		Department:     "Engineering",
		EmploymentType: fullTime,
	}); err != nil {
		return err
	}

	year := h.Service.Now().In(h.Service.Location).Year()
	requests := []leave.RequestInput{
		{
			StartDate: fmt.Sprintf("%d-03-04", year),
			EndDate:   fmt.Sprintf("%d-03-06", year),
			Note:      "Family visit",
		},
		{
			StartDate: fmt.Sprintf("%d-07-01", year),
			EndDate:   fmt.Sprintf("%d-07-09", year),
			Note:      "Summer holiday",
		},
	}
	return submitAll(ctx, h, "emp-001", "lt-annual", requests)
}

func loadMixedTeamScenario(ctx context.Context, h *Handler) error {
	types := []leave.LeaveType{
		{ID: "lt-casual-ft", Name: "Casual Leave", Code: "CL", Unit: generic.UnitDay, Quota: decimal.NewFromInt(12), EmploymentType: fullTime},
		{ID: "lt-sick-ft", Name: "Sick Leave", Code: "SL", Unit: generic.UnitDay, Quota: decimal.NewFromInt(10), EmploymentType: fullTime},
		{ID: "lt-hourly-pt", Name: "Personal Hours", Code: "PH", Unit: generic.UnitHour, Quota: decimal.NewFromInt(40), EmploymentType: partTime},
		{ID: "lt-none-ct", Name: "Contractor Leave", Code: "CT", Unit: generic.UnitDay, Quota: decimal.Zero, EmploymentType: "Contract"},
	}
	for _, lt := range types {
		if err := h.Store.SaveLeaveType(ctx, lt); err != nil {
			return err
		}
	}

	employees := []leave.Employee{
		{ID: "emp-101", Code: "EMP101", Name: "Bob Smith", Department: "Operations", EmploymentType: fullTime},
		{ID: "emp-102", Code: "EMP102", Name: "Carol Diaz", Department: "Support", EmploymentType: partTime},
		{ID: "emp-103", Code: "EMP103", Name: "Dan Lee", Department: "Engineering", EmploymentType: fullTime},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	today := generic.DateOf(h.Service.Now().In(h.Service.Location))
	if err := submitAll(ctx, h, "emp-101", "lt-casual-ft", []leave.RequestInput{{
		StartDate:  today.AddDays(-3).String(),
		EndDate:    today.AddDays(-1).String(),
		Note:       "Moving house",
		Attachment: "doc-lease-101",
	}}); err != nil {
		return err
	}
	if err := submitAll(ctx, h, "emp-103", "lt-sick-ft", []leave.RequestInput{{
		StartDate: today.AddDays(2).String(),
		EndDate:   today.AddDays(2).String(),
		Note:      "Dentist",
	}}); err != nil {
		return err
	}
	return submitAll(ctx, h, "emp-102", "lt-hourly-pt", []leave.RequestInput{{
		StartDate: today.String(),
		StartTime: "09:00",
		EndTime:   "13:30",
		Note:      "School event",
	}})
}

func loadLegacyDataScenario(ctx context.Context, h *Handler) error {
	if err := h.Store.SaveLeaveType(ctx, leave.LeaveType{
		ID:             "lt-casual",
		Name:           "Casual Leave",
		Code:           "CL",
		Unit:           generic.UnitDay,
		Quota:          decimal.NewFromInt(12),
		EmploymentType: fullTime,
	}); err != nil {
		return err
	}
	if err := h.Store.SaveEmployee(ctx, leave.Employee{
		ID:             "emp-201",
		Code:           "EMP201",
		Name:           "Erin Park",
		Department:     "Finance",
		EmploymentType: fullTime,
	}); err != nil {
		return err
	}

	year := h.Service.Now().In(h.Service.Location).Year()
	legacy := fmt.Sprintf(`[
  {"id": "legacy-1", "employee_code": " emp201 ", "type": "casual leave", "unit": "Day",
   "amount": "2", "startDate": "%[1]d-02-05", "endDate": "%[1]d-02-06"},
  {"id": "legacy-2", "employeeCode": "EMP201", "type": "Casual Leave", "unit": "Day", "amount": 1.5,
   "leaveDays": [
     {"date": "%[1]d-04-10", "amount": 1, "countsTowardQuota": "false"},
     {"date": "%[1]d-04-11", "amount": 1, "countsTowardQuota": "false"}
   ]},
  {"id": "legacy-3", "employeeId": "emp-201", "leaveTypeId": "lt-casual", "unit": "Day",
   "leaveDays": [{"date": "%[1]d-05-20", "amount": "n/a"}], "attachment": "doc-legacy-3"}
]`, year)

	records, err := factory.ParseLeaveRecords([]byte(legacy))
	if err != nil {
		return err
	}
	_, err = h.Service.ImportRecords(ctx, records)
	return err
}

func submitAll(ctx context.Context, h *Handler, employeeRef, leaveTypeRef string, requests []leave.RequestInput) error {
	for _, in := range requests {
		if _, err := h.Service.SubmitLeave(ctx, employeeRef, leaveTypeRef, in); err != nil {
			return fmt.Errorf("failed to submit leave for %s: %w", employeeRef, err)
		}
	}
	return nil
}
