package params

import (
	"os"
	"time"
)

type RoutingConfig struct {
	// BaseURL is the directions endpoint.
	BaseURL string

	// APIKey is the routing provider credential. Empty means routed
	// distance/duration degrade to zero (a configuration error, logged,
	// never fatal).
	APIKey string

	// Timeout bounds one directions call.
	Timeout time.Duration
}

func DefaultRoutingConfig() *RoutingConfig {
	return &RoutingConfig{
		BaseURL: "https://maps.googleapis.com/maps/api/directions/json",
		APIKey:  os.Getenv("FIELDD_ROUTING_API_KEY"),
		Timeout: 15 * time.Second,
	}
}
