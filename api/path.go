package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"
)

// ErrNoSession reports that the employee has no session matching the
// requested day.
var ErrNoSession = errors.New("no session for requested day")

// PathReport is the full per-session route analysis.
type PathReport struct {
	EmployeeID conceptual.EmployeeID `json:"employee_id"`
	SessionID  uint64                `json:"session_id"`
	CheckIn    time.Time             `json:"check_in"`
	CheckOut   time.Time             `json:"check_out"`

	// Points carries the session trace as GeoJSON features,
	// ascending by time.
	Points []*geojson.Feature `json:"points"`

	// TotalTraveledDistanceKM is the routed path length in
	// kilometers, rounded to 2 decimals.
	TotalTraveledDistanceKM float64 `json:"total_traveled_distance_km"`

	// SpeedKMH is speed over ground: straight-line path length over
	// the session duration.
	SpeedKMH float64 `json:"speed_kmh"`

	// MeanLegSpeedKMH and MaxLegSpeedKMH summarize per-leg speeds
	// between consecutive points.
	MeanLegSpeedKMH float64 `json:"mean_leg_speed_kmh"`
	MaxLegSpeedKMH  float64 `json:"max_leg_speed_kmh"`

	// TraveledDuration is the movement-based actual travel time,
	// ExpectedDuration the routing provider's drive-time estimate.
	// Both HH:MM:SS.
	TraveledDuration string `json:"traveled_duration"`
	ExpectedDuration string `json:"expected_duration"`

	WorkRest
}

// LivePathReport is the in-flight view of an open session: the trace
// so far plus the travel fields of the closed report, measured
// against the running duration. Work and rest wait for check-out.
type LivePathReport struct {
	EmployeeID  conceptual.EmployeeID `json:"employee_id"`
	SessionID   uint64                `json:"session_id"`
	CheckIn     time.Time             `json:"check_in"`
	IsLive      bool                  `json:"is_live"`
	Duration    string                `json:"duration"`
	TotalPoints int                   `json:"total_points"`
	Points      []*geojson.Feature    `json:"points"`

	TotalTraveledDistanceKM float64 `json:"total_traveled_distance_km"`
	TraveledDuration        string  `json:"traveled_duration"`
	ExpectedDuration        string  `json:"expected_duration"`
}

// DaySummary is the lightweight per-day activity rollup.
type DaySummary struct {
	EmployeeID  conceptual.EmployeeID `json:"employee_id"`
	Day         string                `json:"day"`
	SessionID   uint64                `json:"session_id,omitempty"`
	HasSession  bool                  `json:"has_session"`
	IsOpen      bool                  `json:"is_open,omitempty"`
	TotalPoints int                   `json:"total_points"`
	WorkRest
}

// Path builds the route report for the employee's session on the
// given day. The session must be closed; an open session is reported
// via LivePath instead.
func (t *Tracker) Path(ctx context.Context, emp conceptual.EmployeeID, day time.Time) (*PathReport, error) {
	sess, err := t.Store.SessionForDay(emp, day)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if !sess.IsClosed() {
		return nil, fmt.Errorf("session %d is still open, use the live path", sess.ID)
	}

	points, err := t.Store.PointsForSession(emp, sess.ID)
	if err != nil {
		return nil, err
	}
	locpoint.SortByTime(points)

	report := &PathReport{
		EmployeeID: emp,
		SessionID:  sess.ID,
		CheckIn:    sess.CheckIn,
		CheckOut:   sess.CheckOut,
		Points:     asFeatures(points),
	}

	total := sess.Duration()
	routedM := t.EstimateRouteDistance(ctx, points)
	report.TotalTraveledDistanceKM = roundKM(routedM)

	straightM := straightLineDistance(points)
	if total > 0 {
		report.SpeedKMH = round2(straightM / 1000 / total.Hours())
	}
	report.MeanLegSpeedKMH, report.MaxLegSpeedKMH = legSpeeds(points)

	report.TraveledDuration = formatHMS(t.ActualTravelTime(points, total))
	report.ExpectedDuration = formatHMS(t.ExpectedTravelTime(ctx, checkInPoint(points), checkOutPoint(points)))

	events := locpoint.FilterType(points,
		locpoint.TrackingCustomerCheckIn, locpoint.TrackingCustomerCheckOut)
	report.WorkRest = ComputeWorkRest(sess, events)
	return report, nil
}

// LivePath reports the employee's open session as it stands now. The
// travel fields are computed like Path's, against the duration since
// check-in, with the latest point standing in for the check-out.
func (t *Tracker) LivePath(ctx context.Context, emp conceptual.EmployeeID) (*LivePathReport, error) {
	sess, err := t.Store.OpenSessionFor(emp)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	points, err := t.Store.PointsForSession(emp, sess.ID)
	if err != nil {
		return nil, err
	}
	locpoint.SortByTime(points)

	total := time.Since(sess.CheckIn)
	report := &LivePathReport{
		EmployeeID:  emp,
		SessionID:   sess.ID,
		CheckIn:     sess.CheckIn,
		IsLive:      true,
		Duration:    formatHMS(total),
		TotalPoints: len(points),
		Points:      asFeatures(points),
	}
	report.TotalTraveledDistanceKM = roundKM(t.EstimateRouteDistance(ctx, points))
	report.TraveledDuration = formatHMS(t.ActualTravelTime(points, total))
	report.ExpectedDuration = formatHMS(t.ExpectedTravelTime(ctx, checkInPoint(points), checkOutPoint(points)))
	return report, nil
}

// Summary rolls up the employee's activity for the given day.
func (t *Tracker) Summary(emp conceptual.EmployeeID, day time.Time) (*DaySummary, error) {
	from, to := state.DayBounds(day)
	summary := &DaySummary{
		EmployeeID: emp,
		Day:        from.Format("2006-01-02"),
	}

	points, err := t.Store.PointsBetween(emp, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalPoints = len(points)

	sess, err := t.Store.SessionForDay(emp, day)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return summary, nil
		}
		return nil, err
	}
	summary.HasSession = true
	summary.SessionID = sess.ID
	summary.IsOpen = sess.IsOpen()
	if sess.IsClosed() {
		events, err := t.Store.PointsForSession(emp, sess.ID)
		if err != nil {
			return nil, err
		}
		summary.WorkRest = ComputeWorkRest(sess, locpoint.FilterType(events,
			locpoint.TrackingCustomerCheckIn, locpoint.TrackingCustomerCheckOut))
	}
	return summary, nil
}

func asFeatures(pts []*locpoint.LocationPoint) []*geojson.Feature {
	features := make([]*geojson.Feature, 0, len(pts))
	for _, p := range pts {
		features = append(features, p.Feature())
	}
	return features
}

// legSpeeds computes mean and max km/h over consecutive point pairs.
// Zero-duration legs are skipped.
func legSpeeds(pts []*locpoint.LocationPoint) (mean, max float64) {
	var speeds []float64
	for i := 1; i < len(pts); i++ {
		dt := pts[i].Time.Sub(pts[i-1].Time)
		if dt <= 0 {
			continue
		}
		km := legDistanceKM(pts[i-1], pts[i])
		speeds = append(speeds, km/dt.Hours())
	}
	if len(speeds) == 0 {
		return 0, 0
	}
	mean, _ = stats.Mean(speeds)
	max, _ = stats.Max(speeds)
	return common.DecimalToFixed(mean, 2), common.DecimalToFixed(max, 2)
}

func legDistanceKM(a, b *locpoint.LocationPoint) float64 {
	return straightLineDistance([]*locpoint.LocationPoint{a, b}) / 1000
}

func checkInPoint(pts []*locpoint.LocationPoint) *locpoint.LocationPoint {
	if len(pts) == 0 {
		return nil
	}
	if in := locpoint.FilterType(pts, locpoint.TrackingCheckIn); len(in) > 0 {
		return in[0]
	}
	return pts[0]
}

func checkOutPoint(pts []*locpoint.LocationPoint) *locpoint.LocationPoint {
	if len(pts) == 0 {
		return nil
	}
	if out := locpoint.FilterType(pts, locpoint.TrackingCheckOut); len(out) > 0 {
		return out[len(out)-1]
	}
	return pts[len(pts)-1]
}

func roundKM(meters float64) float64 {
	return round2(meters / 1000)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// formatHMS renders a duration as HH:MM:SS.
func formatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
