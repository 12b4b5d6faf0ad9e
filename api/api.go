// Package api implements the route analytics core: ingest validation
// and deduplication, attendance correlation, direction-change
// segmentation, routed distance and travel-time estimation, and
// work/rest accounting.
package api

import (
	"log/slog"
	"sync"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// Tracker is the service-wide analytics API. All operations are
// side-effect-free reads except Ingest and the session lifecycle.
type Tracker struct {
	Store   state.Store
	Routing routing.Provider

	Segmenter  *params.SegmenterConfig
	TravelTime *params.TravelTimeConfig

	logger *slog.Logger

	// dedupe is the exact-duplicate LRU guard; the +-window check
	// against the store is separate and stronger.
	dedupe func(*locpoint.LocationPoint) bool

	// locks serializes check-then-insert per employee, closing the
	// duplicate-window race. Different employees never contend.
	locksMu sync.Mutex
	locks   map[conceptual.EmployeeID]*sync.Mutex
}

// NewTracker wires the analytics core to its collaborators.
// routing may be nil; routed distance and expected-duration
// computations then degrade per the documented policy.
func NewTracker(store state.Store, prov routing.Provider) *Tracker {
	return &Tracker{
		Store:      store,
		Routing:    prov,
		Segmenter:  params.DefaultSegmenterConfig,
		TravelTime: params.DefaultTravelTimeConfig,
		logger:     slog.With("api", "tracker"),
		dedupe:     locpoint.NewDedupeLRUFunc(10_000),
		locks:      map[conceptual.EmployeeID]*sync.Mutex{},
	}
}

func (t *Tracker) lockFor(emp conceptual.EmployeeID) *sync.Mutex {
	t.locksMu.Lock()
	defer t.locksMu.Unlock()
	mu, ok := t.locks[emp]
	if !ok {
		mu = &sync.Mutex{}
		t.locks[emp] = mu
	}
	return mu
}
