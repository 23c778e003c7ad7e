/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Loads each scenario through the API and checks the state it leaves:
	- Employees and leave types are created
	- Leave is recorded through the engine or imported
	- Balances and attendance match expected values
*/
package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/store/memory"
)

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestScenario_OverQuota(t *testing.T) {
	// GIVEN: The over-quota scenario
	srv := newTestServer(t, memory.New())

	// WHEN: Loading it
	loadScenario(t, srv, "over-quota")

	// THEN: 3 + 9 days against a quota of 10
	resp, body := do(t, srv, http.MethodGet, "/api/employees/EMP001/balances?year=2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances := decode[[]api.BalanceDTO](t, body)
	require.Len(t, balances, 1)
	assert.Equal(t, 12.0, *balances[0].Used)
	assert.Equal(t, 0.0, *balances[0].Remaining)
	assert.True(t, balances[0].OverQuota)

	_, body = do(t, srv, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "over-quota", decode[api.ScenarioDTO](t, body).ID)
}

func TestScenario_MixedTeam(t *testing.T) {
	srv := newTestServer(t, memory.New())

	loadScenario(t, srv, "mixed-team")

	// Part-timer: only the hour leave type applies
	_, body := do(t, srv, http.MethodGet, "/api/employees/emp-102/balances", nil)
	balances := decode[[]api.BalanceDTO](t, body)
	require.Len(t, balances, 4)
	applicable := 0
	for _, b := range balances {
		if b.Status != "applicable" {
			assert.Nil(t, b.Used, b.LeaveTypeID)
			continue
		}
		applicable++
		assert.Equal(t, "lt-hourly-pt", b.LeaveTypeID)
		assert.Equal(t, 4.5, *b.Used)
		assert.Equal(t, "4.50 / 40", b.Display)
	}
	assert.Equal(t, 1, applicable)

	// Grid rows are ordered by name: Bob, Carol, Dan. Index 15 is today.
	_, body = do(t, srv, http.MethodGet, "/api/attendance", nil)
	grid := decode[api.AttendanceGridResponse](t, body)
	require.Len(t, grid.Rows, 3)

	bob := grid.Rows[0]
	assert.Equal(t, "emp-101", bob.Employee.ID)
	assert.Equal(t, "on-leave", bob.Days[12].Status)
	assert.Equal(t, "on-leave", bob.Days[14].Status)
	assert.True(t, bob.Days[14].HasDocument)
	assert.Equal(t, "present", bob.Days[15].Status)

	assert.Equal(t, "on-leave", grid.Rows[1].Days[15].Status)
	assert.Equal(t, "on-leave", grid.Rows[2].Days[17].Status, "leave wins over the weekend")
}

func TestScenario_LegacyData(t *testing.T) {
	srv := newTestServer(t, memory.New())

	loadScenario(t, srv, "legacy-data")

	// 2 (explicit) + 1.5 (all days excluded, falls back to amount) + 1 (bad day amount)
	resp, body := do(t, srv, http.MethodGet, "/api/employees/emp-201/consumption?leave_type_id=lt-casual&year=2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 4.5, decode[api.ConsumptionDTO](t, body).Used)

	_, body = do(t, srv, http.MethodGet, "/api/employees/emp-201/history", nil)
	history := decode[[]api.HistoryEntryDTO](t, body)
	require.Len(t, history, 3)
	assert.True(t, history[2].HasDocument)
}

func TestScenario_UnknownAndReset(t *testing.T) {
	srv := newTestServer(t, memory.New())

	resp, body := do(t, srv, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "scenario_id", decode[api.ErrorResponse](t, body).Field)

	_, body = do(t, srv, http.MethodGet, "/api/scenarios", nil)
	assert.Len(t, decode[[]api.ScenarioDTO](t, body), 3)

	loadScenario(t, srv, "over-quota")
	resp, _ = do(t, srv, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = do(t, srv, http.MethodGet, "/api/employees", nil)
	assert.Empty(t, decode[[]api.EmployeeDTO](t, body))
}
