package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/state"
)

// fakeProvider scripts routing responses for tests. Segment calls run
// concurrently, so the call counter is atomic.
type fakeProvider struct {
	calls atomic.Int64
	fn    func(*routing.Request) (*routing.Response, error)
}

func (f *fakeProvider) Directions(ctx context.Context, req *routing.Request) (*routing.Response, error) {
	f.calls.Add(1)
	if f.fn == nil {
		return &routing.Response{Status: routing.StatusOK}, nil
	}
	return f.fn(req)
}

func okRoute(distanceM, durationS float64) func(*routing.Request) (*routing.Response, error) {
	return func(*routing.Request) (*routing.Response, error) {
		return &routing.Response{
			Status: routing.StatusOK,
			Routes: []routing.Route{{
				Legs: []routing.Leg{{DistanceMeters: distanceM, DurationSeconds: durationS}},
			}},
		}, nil
	}
}

func newTestTracker(t *testing.T, prov routing.Provider) *Tracker {
	t.Helper()
	t.Cleanup(common.SlogResetLevel(slog.LevelWarn + 1))
	tr := NewTracker(state.NewMemStore(), prov)
	t.Cleanup(func() { tr.Store.Close() })
	return tr
}
