package cache

import (
	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/jellydator/ttlcache/v3"
)

// LastPushTTLCache holds the most recent accepted batch per employee,
// replayed to newly-connected websocket watchers.
var LastPushTTLCache = ttlcache.New[string, []*locpoint.LocationPoint](
	ttlcache.WithTTL[string, []*locpoint.LocationPoint](params.CacheLastPushTTL))

// LastKnownTTLCache holds the most recent accepted point per employee.
var LastKnownTTLCache = ttlcache.New[string, *locpoint.LocationPoint](
	ttlcache.WithTTL[string, *locpoint.LocationPoint](params.CacheLastKnownTTL))

// SetLastKnown records p as the employee's freshest point. An older
// point never displaces a newer one, so late-arriving backfill does
// not regress the cache.
func SetLastKnown(emp conceptual.EmployeeID, p *locpoint.LocationPoint) {
	if cur := LastKnownTTLCache.Get(emp.String()); cur != nil && cur.Value().Time.After(p.Time) {
		return
	}
	LastKnownTTLCache.Set(emp.String(), p, ttlcache.DefaultTTL)
}

// LastKnown returns the cached freshest point for the employee, if
// one is present.
func LastKnown(emp conceptual.EmployeeID) (*locpoint.LocationPoint, bool) {
	item := LastKnownTTLCache.Get(emp.String())
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func SetLastPush(emp conceptual.EmployeeID, pts []*locpoint.LocationPoint) {
	LastPushTTLCache.Set(emp.String(), pts, ttlcache.DefaultTTL)
}
