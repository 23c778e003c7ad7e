package leave

import (
	"strings"
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE REQUEST VALIDATOR & BUILDER
// =============================================================================

// RequestInput is a raw leave submission as typed by the user.
//
// Day-unit leave uses StartDate and EndDate (YYYY-MM-DD). Hour-unit leave
// uses StartDate plus StartTime and EndTime (HH:MM or HH:MM:SS); EndDate is
// ignored.
type RequestInput struct {
	StartDate  string
	EndDate    string
	StartTime  string
	EndTime    string
	Note       string
	Attachment string
}

// LeaveRequest is a validated submission decomposed into day entries. It is
// not persisted; ToRecord turns it into the record the caller stores.
type LeaveRequest struct {
	Employee   Employee
	LeaveType  LeaveType
	Period     generic.Period
	Start      time.Time // hour unit only
	End        time.Time // hour unit only
	Days       []DayEntry
	Requested  generic.Amount
	Note       string
	Attachment string
}

var timeLayouts = []string{"15:04", "15:04:05"}

// MaxRequestDays bounds a day-unit request; a leap year fits in one request.
const MaxRequestDays = 366

// RequestBuilder validates submissions and builds their day entries.
// Location anchors hour-unit timestamps; it does not affect day-unit leave.
type RequestBuilder struct {
	Location *time.Location
}

func NewRequestBuilder(loc *time.Location) *RequestBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &RequestBuilder{Location: loc}
}

// ValidateAndBuildLeaveRequest builds with UTC as the hour-unit location.
func ValidateAndBuildLeaveRequest(e Employee, lt LeaveType, in RequestInput) (*LeaveRequest, error) {
	return NewRequestBuilder(time.UTC).Build(e, lt, in)
}

// Build validates the submission against the leave type's unit and returns
// its decomposition. Every rejection is a *RequestError wrapping one of the
// validation sentinels.
//
// The requested quantity is not checked against the remaining quota; over
// quota leave is recorded and only flagged by the balance view.
func (b *RequestBuilder) Build(e Employee, lt LeaveType, in RequestInput) (*LeaveRequest, error) {
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return nil, fieldError("note", ErrNoteRequired)
	}

	req := &LeaveRequest{
		Employee:   e,
		LeaveType:  lt,
		Note:       note,
		Attachment: strings.TrimSpace(in.Attachment),
	}

	var err error
	switch lt.Unit {
	case generic.UnitDay:
		err = b.buildDays(req, in)
	case generic.UnitHour:
		err = b.buildHours(req, in)
	default:
		err = fieldError("unit", ErrUnsupportedUnit)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// buildDays emits one full-day entry per calendar day in [start, end].
// Weekends are included.
func (b *RequestBuilder) buildDays(req *LeaveRequest, in RequestInput) error {
	if strings.TrimSpace(in.StartDate) == "" {
		return fieldError("startDate", ErrDatesRequired)
	}
	if strings.TrimSpace(in.EndDate) == "" {
		return fieldError("endDate", ErrDatesRequired)
	}
	start, err := generic.ParseDate(in.StartDate)
	if err != nil {
		return fieldError("startDate", ErrInvalidDate)
	}
	end, err := generic.ParseDate(in.EndDate)
	if err != nil {
		return fieldError("endDate", ErrInvalidDate)
	}

	period := generic.Period{Start: start, End: end}
	if !period.Valid() {
		return fieldError("endDate", ErrInvertedRange)
	}
	if end.After(start.AddDays(MaxRequestDays - 1)) {
		return fieldError("endDate", ErrRangeTooLong)
	}

	days := period.Days()
	req.Period = period
	req.Days = make([]DayEntry, len(days))
	for i, d := range days {
		req.Days[i] = DayEntry{Date: d, Amount: Float(1), CountsTowardQuota: QuotaFlagTrue}
	}
	req.Requested = generic.NewAmountFromInt(len(days), generic.UnitDay)
	return nil
}

// buildHours emits a single entry on the given date carrying the elapsed hours.
func (b *RequestBuilder) buildHours(req *LeaveRequest, in RequestInput) error {
	if strings.TrimSpace(in.StartDate) == "" {
		return fieldError("startDate", ErrDatesRequired)
	}
	if strings.TrimSpace(in.StartTime) == "" {
		return fieldError("startTime", ErrTimesRequired)
	}
	if strings.TrimSpace(in.EndTime) == "" {
		return fieldError("endTime", ErrTimesRequired)
	}
	date, err := generic.ParseDate(in.StartDate)
	if err != nil {
		return fieldError("startDate", ErrInvalidDate)
	}
	start, ok := b.clockOn(date, in.StartTime)
	if !ok {
		return fieldError("startTime", ErrInvalidTime)
	}
	end, ok := b.clockOn(date, in.EndTime)
	if !ok {
		return fieldError("endTime", ErrInvalidTime)
	}
	if !end.After(start) {
		return fieldError("endTime", ErrEmptyTimeRange)
	}

	hours := generic.NormalizeFloat(end.Sub(start).Hours())
	req.Period = generic.Period{Start: date, End: date}
	req.Start = start
	req.End = end
	req.Days = []DayEntry{{Date: date, Amount: Float(hours.InexactFloat64()), CountsTowardQuota: QuotaFlagTrue}}
	req.Requested = generic.Amount{Value: hours, Unit: generic.UnitHour}
	return nil
}

func (b *RequestBuilder) clockOn(date generic.TimePoint, clock string) (time.Time, bool) {
	clock = strings.TrimSpace(clock)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, b.Location), true
	}
	return time.Time{}, false
}

// ToRecord builds the immutable record to persist for this request.
func (r *LeaveRequest) ToRecord(id string, createdAt time.Time) LeaveRecord {
	var attachments []string
	if r.Attachment != "" {
		attachments = []string{r.Attachment}
	}
	days := make([]DayEntry, len(r.Days))
	copy(days, r.Days)
	return LeaveRecord{
		ID:           id,
		EmployeeID:   r.Employee.ID,
		EmployeeCode: r.Employee.Code,
		LeaveTypeID:  r.LeaveType.ID,
		TypeName:     r.LeaveType.Name,
		Unit:         r.LeaveType.Unit,
		Amount:       Float(r.Requested.Float64()),
		StartDate:    r.Period.Start,
		EndDate:      r.Period.End,
		Days:         days,
		Note:         r.Note,
		Attachments:  attachments,
		CreatedAt:    createdAt,
	}
}
