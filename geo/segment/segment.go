// Package segment splits an ordered point sequence into contiguous
// runs of consistent travel direction.
package segment

import (
	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// Identify walks consecutive point pairs and closes the current
// segment whenever the planar bearing swings more than the configured
// split angle (normalized into [0, pi]). A new segment is seeded with
// the previous point and the current point, so neighboring segments
// share their boundary point.
//
// Input must already be sorted ascending by time; that is the
// caller's job. Fewer than 3 points always come back as one segment.
// Every input point appears in at least one output segment.
func Identify(points []*locpoint.LocationPoint, config *params.SegmenterConfig) [][]*locpoint.LocationPoint {
	if config == nil {
		config = params.DefaultSegmenterConfig
	}
	if len(points) < 3 {
		return [][]*locpoint.LocationPoint{points}
	}

	segments := [][]*locpoint.LocationPoint{}
	current := []*locpoint.LocationPoint{points[0]}

	lastBearing := 0.0
	haveBearing := false

	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		bearing := common.SegmentBearing(prev.Point(), curr.Point())

		if haveBearing && common.BearingDelta(lastBearing, bearing) > config.SplitAngle {
			segments = append(segments, current)
			current = []*locpoint.LocationPoint{prev, curr}
		} else {
			// The first pair has nothing to compare against and
			// never triggers a split.
			current = append(current, curr)
		}

		lastBearing = bearing
		haveBearing = true
	}

	segments = append(segments, current)
	return segments
}
