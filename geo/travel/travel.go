// Package travel estimates time actually spent moving from a
// timestamped point sequence, so that idle stretches inside a session
// do not count as travel.
package travel

import (
	"time"

	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// ActualTravelTime walks consecutive point pairs and accumulates
// movement windows. A window opens at the earlier point of the first
// pair that covers at least MinMovementDistance, and closes at the
// first pair that does not; the closed window counts only if it is no
// longer than MaxMovementWindow. A window still open at the end closes
// against the last point under the same cap rule.
//
// The result is clamped to totalDuration. A zero result is replaced
// with min(totalDuration * IdleFloorFraction, IdleFloorCap): some
// travel is assumed even when none was detected. Fewer than two
// points return totalDuration unchanged.
//
// Points must be sorted ascending by time.
func ActualTravelTime(sorted []*locpoint.LocationPoint, totalDuration time.Duration, config *params.TravelTimeConfig) time.Duration {
	if config == nil {
		config = params.DefaultTravelTimeConfig
	}
	if len(sorted) < 2 {
		return totalDuration
	}

	var traveled time.Duration
	var movementStart time.Time

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		dist := common.DistanceMeters(prev.Point(), curr.Point())

		if dist >= config.MinMovementDistance {
			if movementStart.IsZero() {
				movementStart = prev.Time
			}
			continue
		}

		if !movementStart.IsZero() {
			window := curr.Time.Sub(movementStart)
			if window <= config.MaxMovementWindow {
				traveled += window
			}
			movementStart = time.Time{}
		}
	}

	if !movementStart.IsZero() {
		window := sorted[len(sorted)-1].Time.Sub(movementStart)
		if window <= config.MaxMovementWindow {
			traveled += window
		}
	}

	if traveled > totalDuration {
		traveled = totalDuration
	}
	if traveled == 0 {
		floor := time.Duration(float64(totalDuration) * config.IdleFloorFraction)
		if floor > config.IdleFloorCap {
			floor = config.IdleFloorCap
		}
		traveled = floor
	}
	return traveled
}
