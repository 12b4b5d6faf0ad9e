package state

import (
	"sync"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

// MemStore is the in-memory Store. It backs tests and doubles as the
// documented repository fake; behavior mirrors BoltStore.
type MemStore struct {
	mu       sync.RWMutex
	nextID   uint64
	nextSess uint64
	points   map[conceptual.EmployeeID][]*locpoint.LocationPoint
	sessions map[conceptual.EmployeeID][]*attendance.Session
	tasks    map[uint64]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		points:   map[conceptual.EmployeeID][]*locpoint.LocationPoint{},
		sessions: map[conceptual.EmployeeID][]*attendance.Session{},
		tasks:    map[uint64]bool{},
	}
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) InsertPoint(p *locpoint.LocationPoint) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	cp := *p
	s.points[p.EmployeeID] = append(s.points[p.EmployeeID], &cp)
	locpoint.SortByTime(s.points[p.EmployeeID])
	return p.ID, nil
}

func (s *MemStore) selectPoints(emp conceptual.EmployeeID, keep func(*locpoint.LocationPoint) bool) []*locpoint.LocationPoint {
	out := []*locpoint.LocationPoint{}
	for _, p := range s.points[emp] {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

func (s *MemStore) PointsInWindow(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectPoints(emp, func(p *locpoint.LocationPoint) bool {
		return !p.Time.Before(from) && !p.Time.After(to)
	}), nil
}

func (s *MemStore) PointsBetween(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error) {
	return s.PointsInWindow(emp, from, to)
}

func (s *MemStore) PointsForSession(emp conceptual.EmployeeID, sessionID uint64) ([]*locpoint.LocationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectPoints(emp, func(p *locpoint.LocationPoint) bool {
		return p.AttendanceID == sessionID
	}), nil
}

func (s *MemStore) LastKnown(emp conceptual.EmployeeID) (*locpoint.LocationPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pts := s.points[emp]
	if len(pts) == 0 {
		return nil, ErrNotFound
	}
	cp := *pts[len(pts)-1]
	return &cp, nil
}

func (s *MemStore) FindSession(emp conceptual.EmployeeID, sessionID uint64) (*attendance.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions[emp] {
		if sess.ID == sessionID {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) OpenSessionFor(emp conceptual.EmployeeID) (*attendance.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openSessionLocked(emp)
}

func (s *MemStore) openSessionLocked(emp conceptual.EmployeeID) (*attendance.Session, error) {
	sessions := s.sessions[emp]
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].IsOpen() {
			cp := *sessions[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) SessionForDay(emp conceptual.EmployeeID, day time.Time) (*attendance.Session, error) {
	start, end := DayBounds(day)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions[emp] {
		if !sess.CheckIn.Before(start) && !sess.CheckIn.After(end) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) OpenSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, err := s.openSessionLocked(emp); err == nil && existing != nil {
		return nil, ErrSessionOpen
	}
	s.nextSess++
	sess := &attendance.Session{
		ID:         s.nextSess,
		EmployeeID: emp,
		CheckIn:    at.UTC().Truncate(time.Second),
		CheckInAt:  pt,
	}
	s.sessions[emp] = append(s.sessions[emp], sess)
	cp := *sess
	return &cp, nil
}

func (s *MemStore) CloseSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := s.sessions[emp]
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].IsOpen() {
			sessions[i].CheckOut = at.UTC().Truncate(time.Second)
			sessions[i].CheckOutAt = pt
			cp := *sessions[i]
			return &cp, nil
		}
	}
	return nil, ErrNoOpenSession
}

func (s *MemStore) FindTask(taskID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[taskID], nil
}

func (s *MemStore) PutTask(taskID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[taskID] = true
	return nil
}
