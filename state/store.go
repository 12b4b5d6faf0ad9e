// Package state owns persistence for location points and attendance
// sessions. The analytics core depends only on the Store interface;
// BoltStore backs production, MemStore backs tests.
package state

import (
	"errors"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

var (
	// ErrNotFound marks a missing record lookup.
	ErrNotFound = errors.New("not found")
	// ErrSessionOpen rejects opening a second session for an employee
	// who already has one open.
	ErrSessionOpen = errors.New("employee already has an open session")
	// ErrNoOpenSession rejects closing when nothing is open.
	ErrNoOpenSession = errors.New("employee has no open session")
)

// Store is the queryable persistence collaborator. All point slices
// come back ascending by timestamp.
type Store interface {
	// InsertPoint persists a validated point and returns its id.
	InsertPoint(p *locpoint.LocationPoint) (uint64, error)

	// PointsInWindow returns the employee's points with timestamps in
	// [from, to], inclusive. Used by the ingest duplicate check.
	PointsInWindow(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error)

	// PointsBetween returns the employee's points in [from, to].
	PointsBetween(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error)

	// PointsForSession returns the points referencing the session.
	PointsForSession(emp conceptual.EmployeeID, sessionID uint64) ([]*locpoint.LocationPoint, error)

	// LastKnown returns the employee's most recent point,
	// or ErrNotFound.
	LastKnown(emp conceptual.EmployeeID) (*locpoint.LocationPoint, error)

	// FindSession returns the session if it exists AND belongs to the
	// employee; ErrNotFound otherwise.
	FindSession(emp conceptual.EmployeeID, sessionID uint64) (*attendance.Session, error)

	// OpenSessionFor returns the employee's currently open session,
	// or ErrNotFound.
	OpenSessionFor(emp conceptual.EmployeeID) (*attendance.Session, error)

	// SessionForDay returns the first session whose check-in falls on
	// the given UTC day, or ErrNotFound.
	SessionForDay(emp conceptual.EmployeeID, day time.Time) (*attendance.Session, error)

	// OpenSession creates a new open session. At most one open session
	// per employee: ErrSessionOpen if one exists.
	OpenSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error)

	// CloseSession sets check-out on the open session,
	// or ErrNoOpenSession.
	CloseSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error)

	// FindTask reports whether the referenced task exists.
	FindTask(taskID uint64) (bool, error)

	Close() error
}

// DayBounds returns the inclusive UTC range covering the day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	return start, end
}
