package api

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/types/locpoint"
)

func tracePoint(minute int, lat, lng float64) *locpoint.LocationPoint {
	return &locpoint.LocationPoint{
		EmployeeID: "emp-1",
		Time:       time.Date(2026, 8, 1, 9, minute, 0, 0, time.UTC),
		Lat:        lat,
		Lng:        lng,
		Type:       locpoint.TrackingRoutePoint,
	}
}

// straightTrace never turns, so it always forms a single segment.
func straightTrace() []*locpoint.LocationPoint {
	return []*locpoint.LocationPoint{
		tracePoint(0, 52.50, 13.40),
		tracePoint(5, 52.51, 13.40),
		tracePoint(10, 52.52, 13.40),
	}
}

func TestEstimateRouteDistanceOK(t *testing.T) {
	prov := &fakeProvider{fn: okRoute(1234, 600)}
	tr := newTestTracker(t, prov)

	got := tr.EstimateRouteDistance(context.Background(), straightTrace())
	if got != 1234 {
		t.Errorf("got %v m, want 1234", got)
	}
	if prov.calls.Load() != 1 {
		t.Errorf("got %d provider calls, want 1", prov.calls.Load())
	}
}

func TestEstimateRouteDistanceZeroResultsFallsBack(t *testing.T) {
	prov := &fakeProvider{fn: func(*routing.Request) (*routing.Response, error) {
		return &routing.Response{Status: routing.StatusZeroResults}, nil
	}}
	tr := newTestTracker(t, prov)

	pts := straightTrace()
	got := tr.EstimateRouteDistance(context.Background(), pts)
	want := straightLineDistance(pts)
	if want == 0 {
		t.Fatal("fallback distance unexpectedly zero")
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v m, want straight-line %v", got, want)
	}
}

func TestEstimateRouteDistanceProviderFailure(t *testing.T) {
	cases := []struct {
		name string
		fn   func(*routing.Request) (*routing.Response, error)
	}{
		{"transport error", func(*routing.Request) (*routing.Response, error) {
			return nil, errors.New("connection refused")
		}},
		{"request denied", func(*routing.Request) (*routing.Response, error) {
			return &routing.Response{Status: "REQUEST_DENIED"}, nil
		}},
		{"ok without routes", func(*routing.Request) (*routing.Response, error) {
			return &routing.Response{Status: routing.StatusOK}, nil
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := newTestTracker(t, &fakeProvider{fn: c.fn})
			if got := tr.EstimateRouteDistance(context.Background(), straightTrace()); got != 0 {
				t.Errorf("got %v m, want 0", got)
			}
		})
	}
}

func TestEstimateRouteDistanceNoProvider(t *testing.T) {
	tr := newTestTracker(t, nil)
	if got := tr.EstimateRouteDistance(context.Background(), straightTrace()); got != 0 {
		t.Errorf("got %v m, want 0", got)
	}
}

func TestEstimateRouteDistanceTooFewPoints(t *testing.T) {
	prov := &fakeProvider{fn: okRoute(1234, 600)}
	tr := newTestTracker(t, prov)
	if got := tr.EstimateRouteDistance(context.Background(), straightTrace()[:1]); got != 0 {
		t.Errorf("got %v m, want 0", got)
	}
	if prov.calls.Load() != 0 {
		t.Errorf("provider called %d times for a 1-point trace", prov.calls.Load())
	}
}

func TestEstimateRouteDistanceSplitsOnTurn(t *testing.T) {
	// North, north, then hard east: two segments, two provider calls,
	// distances summed.
	pts := []*locpoint.LocationPoint{
		tracePoint(0, 52.50, 13.40),
		tracePoint(5, 52.51, 13.40),
		tracePoint(10, 52.52, 13.40),
		tracePoint(15, 52.52, 13.42),
	}
	prov := &fakeProvider{fn: okRoute(100, 60)}
	tr := newTestTracker(t, prov)

	got := tr.EstimateRouteDistance(context.Background(), pts)
	if got != 200 {
		t.Errorf("got %v m, want 200", got)
	}
	if prov.calls.Load() != 2 {
		t.Errorf("got %d provider calls, want 2", prov.calls.Load())
	}
}

func TestEstimateRouteDistanceSortsInput(t *testing.T) {
	pts := straightTrace()
	pts[0], pts[2] = pts[2], pts[0]
	prov := &fakeProvider{}
	tr := newTestTracker(t, prov)
	prov.fn = func(req *routing.Request) (*routing.Response, error) {
		if req.Origin.Lat() != 52.50 {
			t.Errorf("origin lat = %v, want earliest point 52.50", req.Origin.Lat())
		}
		return okRoute(500, 300)(req)
	}
	if got := tr.EstimateRouteDistance(context.Background(), pts); got != 500 {
		t.Errorf("got %v m, want 500", got)
	}
}
