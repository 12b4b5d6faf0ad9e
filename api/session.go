package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/fieldroute/fieldd/cache"
	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/events"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

// Session lifecycle actions, as reported to callers.
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

// ErrNotCheckedIn rejects customer check-in/out without an open
// attendance session.
var ErrNotCheckedIn = errors.New("employee is not checked in")

// CheckInOut toggles the employee's attendance state: opens a session
// if none is open, closes the open one otherwise. The matching
// check_in/check_out tracking point is recorded synchronously after
// the session commit, and the corresponding session feed fires.
func (t *Tracker) CheckInOut(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, string, error) {
	at = at.UTC().Truncate(time.Second)

	if open, err := t.Store.OpenSessionFor(emp); err == nil && open != nil {
		sess, err := t.Store.CloseSession(emp, at, pt)
		if err != nil {
			return nil, "", err
		}
		t.recordLifecyclePoint(sess, locpoint.TrackingCheckOut, at, pt)
		events.SessionClosedFeed.Send(sess)
		t.logger.Info("Employee checked out", "employee", emp, "session", sess.ID)
		return sess, ActionCheckOut, nil
	}

	sess, err := t.Store.OpenSession(emp, at, pt)
	if err != nil {
		return nil, "", err
	}
	t.recordLifecyclePoint(sess, locpoint.TrackingCheckIn, at, pt)
	events.SessionOpenedFeed.Send(sess)
	t.logger.Info("Employee checked in", "employee", emp, "session", sess.ID)
	return sess, ActionCheckIn, nil
}

// recordLifecyclePoint stores the check_in/check_out point tied to
// the session. Lifecycle points skip the duplicate window: they are
// system-generated, not device reports.
func (t *Tracker) recordLifecyclePoint(sess *attendance.Session, tt locpoint.TrackingType, at time.Time, pt orb.Point) {
	p := &locpoint.LocationPoint{
		EmployeeID:   sess.EmployeeID,
		Time:         at,
		Lat:          pt.Lat(),
		Lng:          pt.Lon(),
		Type:         tt,
		AttendanceID: sess.ID,
		Synced:       true,
	}
	if err := p.Validate(); err != nil {
		t.logger.Error("Lifecycle point invalid, not recorded", "error", err, "type", tt)
		return
	}
	if _, err := t.Store.InsertPoint(p); err != nil {
		t.logger.Error("Failed to record lifecycle point", "error", err, "type", tt)
		return
	}
	cache.SetLastKnown(p.EmployeeID, p)
	events.NewStoredPointFeed.Send(p)
}

// CustomerVisit records a customer_check_in or customer_check_out
// point against the employee's open session. Without an open session
// the visit is rejected with ErrNotCheckedIn.
func (t *Tracker) CustomerVisit(emp conceptual.EmployeeID, tt locpoint.TrackingType, at time.Time, pt orb.Point, customerID, contactID uint64, comment string) (*locpoint.LocationPoint, error) {
	if tt != locpoint.TrackingCustomerCheckIn && tt != locpoint.TrackingCustomerCheckOut {
		return nil, fmt.Errorf("not a customer visit type: %q", tt)
	}
	sess, err := t.Store.OpenSessionFor(emp)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}

	p := &locpoint.LocationPoint{
		EmployeeID:   emp,
		Time:         at.UTC().Truncate(time.Second),
		Lat:          pt.Lat(),
		Lng:          pt.Lon(),
		Type:         tt,
		AttendanceID: sess.ID,
		CustomerID:   customerID,
		ContactID:    contactID,
		Comment:      comment,
		Synced:       true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := t.Store.InsertPoint(p); err != nil {
		return nil, err
	}
	cache.SetLastKnown(emp, p)
	events.NewStoredPointFeed.Send(p)
	t.logger.Info("Customer visit recorded", "employee", emp, "type", tt, "customer", customerID)
	return p, nil
}
