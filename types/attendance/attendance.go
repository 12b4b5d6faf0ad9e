package attendance

import (
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/paulmach/orb"
)

// Session is one employee's check-in-to-check-out work period.
// A zero CheckOut means the session is still open. At most one open
// session exists per employee; the session-opening path enforces it.
type Session struct {
	ID         uint64                `json:"id"`
	EmployeeID conceptual.EmployeeID `json:"employee_id"`
	CheckIn    time.Time             `json:"check_in"`
	CheckInAt  orb.Point             `json:"check_in_at"`
	CheckOut   time.Time             `json:"check_out,omitempty"`
	CheckOutAt orb.Point             `json:"check_out_at,omitempty"`
}

func (s *Session) IsOpen() bool {
	return s != nil && s.CheckOut.IsZero()
}

// IsClosed reports a complete session: both check-in and check-out set.
func (s *Session) IsClosed() bool {
	return s != nil && !s.CheckIn.IsZero() && !s.CheckOut.IsZero()
}

// Duration is checkout minus checkin for closed sessions, zero otherwise.
func (s *Session) Duration() time.Duration {
	if !s.IsClosed() {
		return 0
	}
	return s.CheckOut.Sub(s.CheckIn)
}

// WorkInterval is the span between a paired customer check-in and
// check-out inside a session. A computed view, never stored.
type WorkInterval struct {
	Start time.Time
	End   time.Time
}

func (w WorkInterval) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
