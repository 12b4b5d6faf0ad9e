package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// NewStoredPointFeed is emitted for every location point that passes
// validation and is persisted.
var NewStoredPointFeed = event.FeedOf[*locpoint.LocationPoint]{}

// HTTPPopulateFeed is a feed of reports as they are pushed to the
// server. Payloads are as-received: decoded but not yet validated,
// deduped, nor necessarily persisted.
var HTTPPopulateFeed = event.FeedOf[[]*locpoint.LocationPoint]{}

// SessionOpenedFeed fires after an attendance session is committed on
// check-in, with its check_in tracking point already recorded.
var SessionOpenedFeed = event.FeedOf[*attendance.Session]{}

// SessionClosedFeed fires after check-out is committed.
var SessionClosedFeed = event.FeedOf[*attendance.Session]{}
