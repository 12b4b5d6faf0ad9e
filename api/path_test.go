package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

// seedSession drives a full session through the tracker: check-in at
// 09:00, a short northward drive, a stationary stretch, check-out at
// 10:00. Returns the session id.
func seedSession(t *testing.T, tr *Tracker, emp conceptual.EmployeeID, checkout bool) uint64 {
	t.Helper()
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	sess, _, err := tr.CheckInOut(emp, day.Add(9*time.Hour), orb.Point{13.40, 52.50})
	if err != nil {
		t.Fatal(err)
	}
	for _, step := range []struct {
		at  time.Time
		lat float64
	}{
		{day.Add(9*time.Hour + 2*time.Minute), 52.51},
		{day.Add(9*time.Hour + 4*time.Minute), 52.52},
		{day.Add(9*time.Hour + 4*time.Minute + 30*time.Second), 52.52},
	} {
		if _, err := tr.Store.InsertPoint(&locpoint.LocationPoint{
			EmployeeID:   emp,
			Time:         step.at,
			Lat:          step.lat,
			Lng:          13.40,
			Type:         locpoint.TrackingRoutePoint,
			AttendanceID: sess.ID,
		}); err != nil {
			t.Fatal(err)
		}
	}
	if checkout {
		if _, _, err := tr.CheckInOut(emp, day.Add(10*time.Hour), orb.Point{13.40, 52.52}); err != nil {
			t.Fatal(err)
		}
	}
	return sess.ID
}

func TestPath(t *testing.T) {
	prov := &fakeProvider{fn: okRoute(5000, 900)}
	tr := newTestTracker(t, prov)
	emp := conceptual.EmployeeID("emp-1")
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sessID := seedSession(t, tr, emp, true)

	got, err := tr.Path(context.Background(), emp, day)
	if err != nil {
		t.Fatal(err)
	}
	if got.SessionID != sessID || got.EmployeeID != emp {
		t.Errorf("report identifies %s/%d, want %s/%d", got.EmployeeID, got.SessionID, emp, sessID)
	}
	if len(got.Points) != 5 {
		t.Errorf("got %d features, want 5", len(got.Points))
	}

	// The stationary stretch splits the trace in two segments; each
	// gets a 5km routed answer.
	if got.TotalTraveledDistanceKM != 10 {
		t.Errorf("routed distance = %v km, want 10", got.TotalTraveledDistanceKM)
	}
	if got.ExpectedDuration != "00:15:00" {
		t.Errorf("expected duration = %q, want 00:15:00", got.ExpectedDuration)
	}

	// Movement 09:00-09:04:30, then idle to checkout.
	if got.TraveledDuration != "00:04:30" {
		t.Errorf("traveled duration = %q, want 00:04:30", got.TraveledDuration)
	}

	// 0.02 deg of latitude over one hour.
	if got.SpeedKMH != 2.22 {
		t.Errorf("speed = %v km/h, want 2.22", got.SpeedKMH)
	}
	if got.MaxLegSpeedKMH != 33.36 {
		t.Errorf("max leg speed = %v km/h, want 33.36", got.MaxLegSpeedKMH)
	}
	if got.MeanLegSpeedKMH != 16.68 {
		t.Errorf("mean leg speed = %v km/h, want 16.68", got.MeanLegSpeedKMH)
	}

	// No customer visits: the whole hour is rest.
	if got.WorkHours != 0 || got.RestHours != 1 {
		t.Errorf("got work=%v rest=%v, want 0/1", got.WorkHours, got.RestHours)
	}
}

func TestPathNoSession(t *testing.T) {
	tr := newTestTracker(t, nil)
	_, err := tr.Path(context.Background(), "emp-1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestPathRejectsOpenSession(t *testing.T) {
	tr := newTestTracker(t, nil)
	emp := conceptual.EmployeeID("emp-1")
	seedSession(t, tr, emp, false)
	if _, err := tr.Path(context.Background(), emp, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatal("open session accepted by Path")
	}
}

func TestLivePath(t *testing.T) {
	prov := &fakeProvider{fn: okRoute(5000, 900)}
	tr := newTestTracker(t, prov)
	emp := conceptual.EmployeeID("emp-1")
	sessID := seedSession(t, tr, emp, false)

	got, err := tr.LivePath(context.Background(), emp)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsLive {
		t.Error("live path not marked live")
	}
	if got.SessionID != sessID {
		t.Errorf("session = %d, want %d", got.SessionID, sessID)
	}
	if got.TotalPoints != 4 || len(got.Points) != 4 {
		t.Errorf("got %d/%d points, want 4", got.TotalPoints, len(got.Points))
	}

	// Same derived travel fields as the closed report: two routed
	// segments, an expected-time call against the latest point, and
	// the movement window so far.
	if got.TotalTraveledDistanceKM != 10.00 {
		t.Errorf("routed = %v km, want 10", got.TotalTraveledDistanceKM)
	}
	if got.TraveledDuration != "00:04:30" {
		t.Errorf("traveled = %q, want 00:04:30", got.TraveledDuration)
	}
	if got.ExpectedDuration != "00:15:00" {
		t.Errorf("expected = %q, want 00:15:00", got.ExpectedDuration)
	}
	if n := prov.calls.Load(); n != 3 {
		t.Errorf("provider called %d times, want 3", n)
	}

	// Closing the session ends the live view.
	if _, _, err := tr.CheckInOut(emp, time.Now().UTC(), orb.Point{13.40, 52.52}); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.LivePath(context.Background(), emp); !errors.Is(err, ErrNoSession) {
		t.Errorf("got %v after checkout, want ErrNoSession", err)
	}
}

func TestSummary(t *testing.T) {
	prov := &fakeProvider{fn: okRoute(5000, 900)}
	tr := newTestTracker(t, prov)
	emp := conceptual.EmployeeID("emp-1")
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	got, err := tr.Summary(emp, day)
	if err != nil {
		t.Fatal(err)
	}
	if got.HasSession || got.TotalPoints != 0 {
		t.Errorf("empty day: got %+v", got)
	}

	sessID := seedSession(t, tr, emp, true)
	got, err = tr.Summary(emp, day)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasSession || got.SessionID != sessID || got.IsOpen {
		t.Errorf("got %+v, want closed session %d", got, sessID)
	}
	if got.TotalPoints != 5 {
		t.Errorf("got %d points, want 5", got.TotalPoints)
	}
	if got.RestHours != 1 {
		t.Errorf("rest = %v, want 1", got.RestHours)
	}
}

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "26:03:04"},
		{-time.Minute, "00:00:00"},
	}
	for _, c := range cases {
		if got := formatHMS(c.d); got != c.want {
			t.Errorf("formatHMS(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
