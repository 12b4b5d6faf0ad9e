package api

import (
	"context"
	"errors"
	"time"

	"github.com/fieldroute/fieldd/geo/travel"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// ActualTravelTime estimates time spent moving within totalDuration,
// from the movement pattern of the sorted points.
func (t *Tracker) ActualTravelTime(sorted []*locpoint.LocationPoint, totalDuration time.Duration) time.Duration {
	return travel.ActualTravelTime(sorted, totalDuration, t.TravelTime)
}

// ExpectedTravelTime asks the routing provider how long the drive
// from start to end should take. Any failure (unconfigured provider,
// transport error, non-OK status, even ZERO_RESULTS) yields zero:
// there is no physical proxy for time the way straight-line distance
// proxies for route distance.
func (t *Tracker) ExpectedTravelTime(ctx context.Context, start, end *locpoint.LocationPoint) time.Duration {
	if start == nil || end == nil {
		return 0
	}
	if t.Routing == nil {
		t.logger.Error("Routing provider not configured, cannot estimate expected travel time")
		return 0
	}
	resp, err := t.Routing.Directions(ctx, &routing.Request{
		Origin:      start.Point(),
		Destination: end.Point(),
		Mode:        "driving",
	})
	if err != nil {
		if errors.Is(err, routing.ErrNoCredential) {
			t.logger.Error("Routing credential not configured, cannot estimate expected travel time")
		} else {
			t.logger.Error("Directions call failed", "error", err)
		}
		return 0
	}
	if resp.Status != routing.StatusOK || len(resp.Routes) == 0 {
		t.logger.Error("Directions returned unusable status", "status", resp.Status)
		return 0
	}
	return time.Duration(resp.Routes[0].SumLegDurations()) * time.Second
}
