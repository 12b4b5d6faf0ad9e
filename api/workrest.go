package api

import (
	"errors"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/shopspring/decimal"
)

// WorkRest is the work/rest split of one attendance session, in hours
// rounded to 2 decimals.
type WorkRest struct {
	WorkHours float64 `json:"work_hours"`
	RestHours float64 `json:"rest_hours"`
}

// ComputeWorkRest pairs customer check-in/check-out events into work
// intervals and charges the remainder of the session to rest.
// Events must be ascending by time and contain only customer
// check-in/check-out types.
//
// A second check-in before any check-out overwrites the open marker;
// the orphaned first check-in contributes nothing. A check-out with
// no open marker is ignored. An open session (no check-out yet)
// yields {0, 0}.
func ComputeWorkRest(sess *attendance.Session, events []*locpoint.LocationPoint) WorkRest {
	if !sess.IsClosed() {
		return WorkRest{}
	}

	var work time.Duration
	var open time.Time
	for _, e := range events {
		switch e.Type {
		case locpoint.TrackingCustomerCheckIn:
			open = e.Time
		case locpoint.TrackingCustomerCheckOut:
			if !open.IsZero() {
				work += attendance.WorkInterval{Start: open, End: e.Time}.Duration()
				open = time.Time{}
			}
		}
	}

	rest := sess.Duration() - work
	return WorkRest{
		WorkHours: roundHours(work),
		RestHours: roundHours(rest),
	}
}

// WorkRestForDay computes the split for the employee's session of the
// given day. No session, or a still-open one, yields {0, 0}.
func (t *Tracker) WorkRestForDay(emp conceptual.EmployeeID, day time.Time) (WorkRest, error) {
	sess, err := t.Store.SessionForDay(emp, day)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return WorkRest{}, nil
		}
		return WorkRest{}, err
	}
	points, err := t.Store.PointsForSession(emp, sess.ID)
	if err != nil {
		return WorkRest{}, err
	}
	events := locpoint.FilterType(points,
		locpoint.TrackingCustomerCheckIn, locpoint.TrackingCustomerCheckOut)
	return ComputeWorkRest(sess, events), nil
}

func roundHours(d time.Duration) float64 {
	h := decimal.NewFromFloat(d.Seconds() / 3600)
	return h.Round(2).InexactFloat64()
}
