package locpoint

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TrackingType classifies a location point.
type TrackingType string

const (
	TrackingCheckIn          TrackingType = "check_in"
	TrackingCheckOut         TrackingType = "check_out"
	TrackingCustomerCheckIn  TrackingType = "customer_check_in"
	TrackingCustomerCheckOut TrackingType = "customer_check_out"
	TrackingRoutePoint       TrackingType = "route_point"
)

func (t TrackingType) Valid() bool {
	switch t {
	case TrackingCheckIn, TrackingCheckOut,
		TrackingCustomerCheckIn, TrackingCustomerCheckOut,
		TrackingRoutePoint:
		return true
	}
	return false
}

var (
	ErrMissingEmployee  = errors.New("missing employee_id")
	ErrMissingTimestamp = errors.New("missing timestamp")
	ErrBadTimestamp     = errors.New("invalid timestamp format")
	ErrBadLatitude      = errors.New("invalid latitude")
	ErrBadLongitude     = errors.New("invalid longitude")
	ErrBadTrackingType  = errors.New("invalid tracking type")
)

// LocationPoint is one stored GPS sample for one employee.
// It is immutable once persisted; analytics only ever read it.
// Timestamps are UTC with 1-second granularity.
type LocationPoint struct {
	ID           uint64                `json:"id,omitempty"`
	EmployeeID   conceptual.EmployeeID `json:"employee_id"`
	Time         time.Time             `json:"timestamp"`
	Lat          float64               `json:"latitude"`
	Lng          float64               `json:"longitude"`
	Type         TrackingType          `json:"tracking_type"`
	AttendanceID uint64                `json:"attendance_id,omitempty"`
	TaskID       uint64                `json:"task_id,omitempty"`
	CustomerID   uint64                `json:"customer_id,omitempty"`
	ContactID    uint64                `json:"contact_id,omitempty"`
	Comment      string                `json:"comment,omitempty"`
	Synced       bool                  `json:"synced"`
}

// Point returns the lng/lat orb point.
func (p *LocationPoint) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func (p *LocationPoint) IsEmpty() bool {
	return p == nil || (p.EmployeeID.IsEmpty() && p.Time.IsZero())
}

// Validate checks the record invariants: employee, timestamp,
// coordinate ranges, and a known tracking type. Boundary coordinates
// (+-90, +-180) are valid.
func (p *LocationPoint) Validate() error {
	if p.EmployeeID.IsEmpty() {
		return ErrMissingEmployee
	}
	if p.Time.IsZero() {
		return ErrMissingTimestamp
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: %v", ErrBadLatitude, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: %v", ErrBadLongitude, p.Lng)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrBadTrackingType, p.Type)
	}
	return nil
}

// Feature converts the point to a GeoJSON feature for report payloads.
func (p *LocationPoint) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Point())
	f.Properties["EmployeeID"] = p.EmployeeID.String()
	f.Properties["Time"] = p.Time.Format(time.RFC3339)
	f.Properties["UnixTime"] = p.Time.Unix()
	f.Properties["TrackingType"] = string(p.Type)
	if p.AttendanceID != 0 {
		f.Properties["AttendanceID"] = p.AttendanceID
	}
	if p.Comment != "" {
		f.Properties["Comment"] = p.Comment
	}
	return f
}

// SortFunc orders points ascending by time, for use with slices.SortFunc.
func SortFunc(a, b *LocationPoint) int {
	if a.Time.Before(b.Time) {
		return -1
	}
	if a.Time.After(b.Time) {
		return 1
	}
	return 0
}

// SortByTime sorts points in place, ascending by time.
func SortByTime(pts []*LocationPoint) {
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Time.Before(pts[j].Time)
	})
}

// FilterType returns the points matching any of the given types,
// preserving order.
func FilterType(pts []*LocationPoint, types ...TrackingType) []*LocationPoint {
	out := make([]*LocationPoint, 0, len(pts))
	for _, p := range pts {
		for _, t := range types {
			if p.Type == t {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
