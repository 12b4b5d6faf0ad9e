package locpoint

import (
	"fmt"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
)

// Report is the raw device payload, as posted. Coordinates are
// pointers so that absent and zero are distinguishable.
type Report struct {
	EmployeeID   string   `json:"employee_id"`
	Timestamp    string   `json:"timestamp"`
	Lat          *float64 `json:"latitude"`
	Lng          *float64 `json:"longitude"`
	AttendanceID uint64   `json:"attendance_id,omitempty"`
	TaskID       uint64   `json:"task_id,omitempty"`
	CustomerID   uint64   `json:"customer_id,omitempty"`
	ContactID    uint64   `json:"contact_id,omitempty"`
	TrackingType string   `json:"tracking_type,omitempty"`
	Comment      string   `json:"comment,omitempty"`
}

// timestamp layouts accepted from devices, tried in order.
var reportTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses the report timestamp and normalizes it to a UTC
// instant with 1-second granularity.
func (r *Report) ParseTime() (time.Time, error) {
	if r.Timestamp == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	for _, layout := range reportTimeLayouts {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, r.Timestamp)
}

// ToPoint validates the raw payload and builds the would-be stored
// record. Reference fields (attendance, task, customer) are carried
// through unverified; resolution against the store happens at ingest.
func (r *Report) ToPoint() (*LocationPoint, error) {
	if r.EmployeeID == "" {
		return nil, ErrMissingEmployee
	}
	ts, err := r.ParseTime()
	if err != nil {
		return nil, err
	}
	if r.Lat == nil {
		return nil, fmt.Errorf("%w: missing", ErrBadLatitude)
	}
	if r.Lng == nil {
		return nil, fmt.Errorf("%w: missing", ErrBadLongitude)
	}
	tt := TrackingType(r.TrackingType)
	if r.TrackingType == "" {
		tt = TrackingRoutePoint
	}
	p := &LocationPoint{
		EmployeeID:   conceptual.EmployeeID(r.EmployeeID),
		Time:         ts,
		Lat:          *r.Lat,
		Lng:          *r.Lng,
		Type:         tt,
		AttendanceID: r.AttendanceID,
		TaskID:       r.TaskID,
		CustomerID:   r.CustomerID,
		ContactID:    r.ContactID,
		Comment:      r.Comment,
		Synced:       true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
