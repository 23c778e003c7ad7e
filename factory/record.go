/*
Package factory converts externally-sourced JSON leave records into leave.LeaveRecord.

PURPOSE:
  Leave records arrive from older versions of the application and from
  external systems. Their JSON is loosely typed: booleans serialized as
  strings, amounts as numeric strings, snake_case or camelCase keys, and
  sometimes only an employee code or a leave type name. This package is the
  single ingestion boundary that interprets all of that, so the engine only
  ever sees typed values.

JSON SCHEMA (every field optional):
  {
    "id": "rec-001",
    "employeeId": "e-1",        // or "employee_id"
    "employeeCode": "EMP001",   // or "employee_code"
    "leaveTypeId": "lt-casual", // or "leave_type_id"
    "type": "Casual Leave",     // or "typeName" / "type_name"
    "unit": "Day",
    "amount": 2,                // number or numeric string
    "startDate": "2024-03-01",  // or "start_date"
    "endDate": "2024-03-02",    // or "end_date"
    "leaveDays": [              // or "leave_days"
      {"date": "2024-03-01", "amount": 1, "countsTowardQuota": "false"}
    ],
    "note": "family event",
    "attachments": ["doc-123"], // or a single "attachment" string
    "createdAt": "2024-02-20T10:00:00Z"
  }

DATA QUALITY:
  Nothing here rejects a record for bad values. An amount that is not a
  number becomes NaN, which the resolver counts as 1. An unparseable date
  becomes the zero day, which never matches an attendance date. Only JSON
  that is not syntactically valid is an error.

USAGE:
  records, err := factory.ParseLeaveRecords(body)
  if err != nil {
      return err
  }
  n, err := svc.ImportRecords(ctx, records)

SEE ALSO:
  - leave/types.go: LeaveRecord, DayEntry, ParseQuotaFlag
  - leave/amount.go: How the parsed quantities are resolved
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RecordJSON is the loose JSON representation of a leave record.
type RecordJSON struct {
	ID string `json:"id"`

	EmployeeID        string `json:"employeeId"`
	EmployeeIDSnake   string `json:"employee_id"`
	EmployeeCode      string `json:"employeeCode"`
	EmployeeCodeSnake string `json:"employee_code"`

	LeaveTypeID      string `json:"leaveTypeId"`
	LeaveTypeIDSnake string `json:"leave_type_id"`
	Type             string `json:"type"`
	TypeName         string `json:"typeName"`
	TypeNameSnake    string `json:"type_name"`

	Unit   string      `json:"unit"`
	Amount LooseNumber `json:"amount"`

	StartDate      string `json:"startDate"`
	StartDateSnake string `json:"start_date"`
	EndDate        string `json:"endDate"`
	EndDateSnake   string `json:"end_date"`

	LeaveDays      []DayJSON `json:"leaveDays"`
	LeaveDaysSnake []DayJSON `json:"leave_days"`

	Note        string   `json:"note"`
	Attachments []string `json:"attachments"`
	Attachment  string   `json:"attachment"`
	CreatedAt   string   `json:"createdAt"`
}

// DayJSON is one loose day entry.
type DayJSON struct {
	Date                   string          `json:"date"`
	Amount                 LooseNumber     `json:"amount"`
	CountsTowardQuota      leave.QuotaFlag `json:"countsTowardQuota"`
	CountsTowardQuotaSnake leave.QuotaFlag `json:"counts_toward_quota"`
}

// LooseNumber accepts a JSON number, a numeric string, or null.
// Set is false when the value was absent or null.
type LooseNumber struct {
	Value float64
	Set   bool
}

func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = LooseNumber{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = LooseNumber{Value: f, Set: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a number and not a string: keep it as an invalid quantity.
		*n = LooseNumber{Value: math.NaN(), Set: true}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = LooseNumber{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f = math.NaN()
	}
	*n = LooseNumber{Value: f, Set: true}
	return nil
}

func (n LooseNumber) ptr() *float64 {
	if !n.Set {
		return nil
	}
	return leave.Float(n.Value)
}

// =============================================================================
// PARSING
// =============================================================================

// ParseLeaveRecords accepts a JSON array of records or a single record object.
func ParseLeaveRecords(data []byte) ([]leave.LeaveRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty leave record payload: %w", generic.ErrInvalidInput)
	}

	var raw []RecordJSON
	if trimmed[0] == '{' {
		var one RecordJSON
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("invalid leave record JSON: %v: %w", err, generic.ErrInvalidInput)
		}
		raw = []RecordJSON{one}
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("invalid leave record JSON: %v: %w", err, generic.ErrInvalidInput)
	}

	records := make([]leave.LeaveRecord, len(raw))
	for i, r := range raw {
		records[i] = r.ToRecord()
	}
	return records, nil
}

// ToRecord interprets the loose fields. camelCase keys win over snake_case.
func (r RecordJSON) ToRecord() leave.LeaveRecord {
	unit, _ := generic.ParseUnit(r.Unit)

	record := leave.LeaveRecord{
		ID:           strings.TrimSpace(r.ID),
		EmployeeID:   strings.TrimSpace(generic.FirstNonBlank(r.EmployeeID, r.EmployeeIDSnake)),
		EmployeeCode: strings.TrimSpace(generic.FirstNonBlank(r.EmployeeCode, r.EmployeeCodeSnake)),
		LeaveTypeID:  strings.TrimSpace(generic.FirstNonBlank(r.LeaveTypeID, r.LeaveTypeIDSnake)),
		TypeName:     strings.TrimSpace(generic.FirstNonBlank(r.Type, r.TypeName, r.TypeNameSnake)),
		Unit:         unit,
		Amount:       r.Amount.ptr(),
		StartDate:    parseDate(generic.FirstNonBlank(r.StartDate, r.StartDateSnake)),
		EndDate:      parseDate(generic.FirstNonBlank(r.EndDate, r.EndDateSnake)),
		Note:         r.Note,
		CreatedAt:    parseTimestamp(r.CreatedAt),
	}

	days := r.LeaveDays
	if len(days) == 0 {
		days = r.LeaveDaysSnake
	}
	if len(days) > 0 {
		record.Days = make([]leave.DayEntry, len(days))
		for i, d := range days {
			flag := d.CountsTowardQuota
			if flag == leave.QuotaFlagUnset {
				flag = d.CountsTowardQuotaSnake
			}
			record.Days[i] = leave.DayEntry{
				Date:              parseDate(d.Date),
				Amount:            d.Amount.ptr(),
				CountsTowardQuota: flag,
			}
		}
	}

	for _, a := range append(r.Attachments, r.Attachment) {
		if a = strings.TrimSpace(a); a != "" {
			record.Attachments = append(record.Attachments, a)
		}
	}

	return record
}

func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
