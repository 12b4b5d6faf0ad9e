package api

import (
	"context"
	"errors"
	"sync"

	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/geo/segment"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

// EstimateSegmentDistance returns the real-world driving distance of
// one segment, in meters.
//
// Degradation policy:
//   - fewer than 2 points: 0
//   - routing unconfigured: 0, logged as a configuration error
//   - provider OK: sum of the first route's leg distances
//   - provider ZERO_RESULTS: straight-line (haversine) sum over
//     consecutive points, the one sanctioned fallback
//   - anything else (bad status, HTTP failure, timeout): 0. A failed
//     routing call must not masquerade as a measurement.
func (t *Tracker) EstimateSegmentDistance(ctx context.Context, seg []*locpoint.LocationPoint) float64 {
	if len(seg) < 2 {
		return 0
	}
	if t.Routing == nil {
		t.logger.Error("Routing provider not configured, cannot estimate route distance")
		return 0
	}

	req := &routing.Request{
		Origin:      seg[0].Point(),
		Destination: seg[len(seg)-1].Point(),
		Mode:        "driving",
	}
	for _, p := range seg[1 : len(seg)-1] {
		req.Waypoints = append(req.Waypoints, p.Point())
	}

	resp, err := t.Routing.Directions(ctx, req)
	if err != nil {
		if errors.Is(err, routing.ErrNoCredential) {
			t.logger.Error("Routing credential not configured, cannot estimate route distance")
		} else {
			t.logger.Error("Directions call failed", "error", err)
		}
		return 0
	}

	switch {
	case resp.Status == routing.StatusOK && len(resp.Routes) > 0:
		return resp.Routes[0].SumLegDistances()
	case resp.Status == routing.StatusZeroResults:
		t.logger.Warn("No route between segment points, using straight-line fallback",
			"points", len(seg))
		return straightLineDistance(seg)
	default:
		t.logger.Error("Directions returned unusable status", "status", resp.Status)
		return 0
	}
}

// EstimateRouteDistance sorts the points, segments them at direction
// changes, and totals per-segment routed distances, in meters.
// Segment calls run concurrently; each segment's own timeout and
// degradation are independent, and the total is accumulated in
// segment order.
func (t *Tracker) EstimateRouteDistance(ctx context.Context, points []*locpoint.LocationPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	sorted := make([]*locpoint.LocationPoint, len(points))
	copy(sorted, points)
	locpoint.SortByTime(sorted)

	segments := segment.Identify(sorted, t.Segmenter)

	results := make([]float64, len(segments))
	var wg sync.WaitGroup
	for i, seg := range segments {
		if len(seg) < 2 {
			continue
		}
		wg.Add(1)
		go func(i int, seg []*locpoint.LocationPoint) {
			defer wg.Done()
			results[i] = t.EstimateSegmentDistance(ctx, seg)
		}(i, seg)
	}
	wg.Wait()

	total := 0.0
	for _, d := range results {
		total += d
	}
	return total
}

// straightLineDistance sums haversine distances over consecutive
// points.
func straightLineDistance(pts []*locpoint.LocationPoint) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += common.DistanceMeters(pts[i-1].Point(), pts[i].Point())
	}
	return total
}

// StraightLineDistancePoints is the haversine path length of raw
// coordinates, used for speed-over-ground computation.
func StraightLineDistancePoints(pts []orb.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += common.DistanceMeters(pts[i-1], pts[i])
	}
	return total
}
