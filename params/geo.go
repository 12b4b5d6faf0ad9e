package params

import (
	"math"
	"time"
)

type SegmenterConfig struct {
	// SplitAngle is the normalized planar-bearing change, in radians,
	// beyond which a point sequence is split into a new segment.
	SplitAngle float64
}

var DefaultSegmenterConfig = &SegmenterConfig{
	SplitAngle: math.Pi / 4,
}

type TravelTimeConfig struct {
	// MinMovementDistance is the minimum distance, in meters, between
	// consecutive points for the pair to count as movement.
	MinMovementDistance float64

	// MaxMovementWindow bounds a single movement window. A window
	// longer than this is discarded rather than counted.
	MaxMovementWindow time.Duration

	// IdleFloorFraction and IdleFloorCap produce the heuristic minimum
	// travel time when no movement was detected at all:
	// min(total * IdleFloorFraction, IdleFloorCap).
	IdleFloorFraction float64
	IdleFloorCap      time.Duration
}

var DefaultTravelTimeConfig = &TravelTimeConfig{
	MinMovementDistance: 10,
	MaxMovementWindow:   300 * time.Second,
	IdleFloorFraction:   0.1,
	IdleFloorCap:        300 * time.Second,
}
