// Package routing defines the external driving-directions contract
// and the degradation policy for failed calls.
package routing

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

// Status values of the directions response. Anything other than
// StatusOK and StatusZeroResults is an undifferentiated provider error.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// ErrNoCredential marks a missing routing API key. Callers log it and
// degrade to zero; it never aborts a request.
var ErrNoCredential = errors.New("routing credential not configured")

// Request is one directions query. Waypoints are interior points
// between origin and destination, in travel order.
type Request struct {
	Origin      orb.Point
	Destination orb.Point
	Waypoints   []orb.Point
	Mode        string
}

// Leg is one origin-to-waypoint (or waypoint-to-destination) stretch
// of a returned route.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Route is one returned route alternative.
type Route struct {
	Legs []Leg
}

// Response carries the provider status and, on OK, the routes.
type Response struct {
	Status string
	Routes []Route
}

// SumLegDistances totals leg distances of the route, in meters.
func (r *Route) SumLegDistances() float64 {
	total := 0.0
	for _, leg := range r.Legs {
		total += leg.DistanceMeters
	}
	return total
}

// SumLegDurations totals leg durations of the route, in seconds.
func (r *Route) SumLegDurations() float64 {
	total := 0.0
	for _, leg := range r.Legs {
		total += leg.DurationSeconds
	}
	return total
}

// Provider is the external routing collaborator. Implementations own
// their transport and timeout; a call that fails in transport returns
// an error, a call that completes returns the provider's status as-is.
type Provider interface {
	Directions(ctx context.Context, req *Request) (*Response, error)
}
