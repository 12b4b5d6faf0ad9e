package state

import (
	"errors"
	"testing"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

var testTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bolt.Close() })
	return map[string]Store{
		"bolt": bolt,
		"mem":  NewMemStore(),
	}
}

func newPoint(emp string, at time.Time) *locpoint.LocationPoint {
	return &locpoint.LocationPoint{
		EmployeeID: conceptual.EmployeeID(emp),
		Time:       at,
		Lat:        52.52,
		Lng:        13.40,
		Type:       locpoint.TrackingRoutePoint,
	}
}

func TestStore_InsertAndWindow(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				p := newPoint("emp-1", testTime.Add(time.Duration(i)*time.Minute))
				id, err := s.InsertPoint(p)
				if err != nil {
					t.Fatal(err)
				}
				if id == 0 {
					t.Fatal("zero id")
				}
			}
			// Another employee's points must not leak in.
			if _, err := s.InsertPoint(newPoint("emp-2", testTime)); err != nil {
				t.Fatal(err)
			}

			got, err := s.PointsInWindow("emp-1", testTime.Add(time.Minute), testTime.Add(3*time.Minute))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 3 {
				t.Fatalf("window returned %d points, want 3", len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].Time.Before(got[i-1].Time) {
					t.Fatal("points not ascending by time")
				}
			}
		})
	}
}

func TestStore_PreEpochWindow(t *testing.T) {
	preEpoch := time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, at := range []time.Time{preEpoch, testTime} {
				if _, err := s.InsertPoint(newPoint("emp-1", at)); err != nil {
					t.Fatal(err)
				}
			}

			// A window spanning the epoch sees both points, in order.
			got, err := s.PointsInWindow("emp-1", preEpoch.Add(-time.Hour), testTime)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Fatalf("window returned %d points, want 2", len(got))
			}
			if !got[0].Time.Equal(preEpoch) || !got[1].Time.Equal(testTime) {
				t.Errorf("points out of order: %v, %v", got[0].Time, got[1].Time)
			}

			// A post-epoch window excludes the pre-epoch point.
			got, err = s.PointsInWindow("emp-1", testTime.Add(-time.Hour), testTime)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || !got[0].Time.Equal(testTime) {
				t.Errorf("post-epoch window returned %d points", len(got))
			}
		})
	}
}

func TestStore_LastKnown(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.LastKnown("emp-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
			for i := 0; i < 3; i++ {
				if _, err := s.InsertPoint(newPoint("emp-1", testTime.Add(time.Duration(i)*time.Minute))); err != nil {
					t.Fatal(err)
				}
			}
			last, err := s.LastKnown("emp-1")
			if err != nil {
				t.Fatal(err)
			}
			if !last.Time.Equal(testTime.Add(2 * time.Minute)) {
				t.Errorf("last known at %v", last.Time)
			}
		})
	}
}

func TestStore_SessionLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			at := orb.Point{13.40, 52.52}

			if _, err := s.CloseSession("emp-1", testTime, at); !errors.Is(err, ErrNoOpenSession) {
				t.Fatalf("close without open: err = %v", err)
			}

			sess, err := s.OpenSession("emp-1", testTime, at)
			if err != nil {
				t.Fatal(err)
			}
			if !sess.IsOpen() {
				t.Fatal("new session should be open")
			}

			// A second open for the same employee must fail.
			if _, err := s.OpenSession("emp-1", testTime.Add(time.Minute), at); !errors.Is(err, ErrSessionOpen) {
				t.Fatalf("double open: err = %v", err)
			}
			// But another employee is independent.
			if _, err := s.OpenSession("emp-2", testTime, at); err != nil {
				t.Fatal(err)
			}

			open, err := s.OpenSessionFor("emp-1")
			if err != nil {
				t.Fatal(err)
			}
			if open.ID != sess.ID {
				t.Fatalf("open session id %d, want %d", open.ID, sess.ID)
			}

			closed, err := s.CloseSession("emp-1", testTime.Add(8*time.Hour), at)
			if err != nil {
				t.Fatal(err)
			}
			if !closed.IsClosed() {
				t.Fatal("session should be closed")
			}
			if closed.Duration() != 8*time.Hour {
				t.Errorf("duration %v, want 8h", closed.Duration())
			}

			if _, err := s.OpenSessionFor("emp-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("after close: err = %v", err)
			}

			// Day lookup finds the closed session.
			found, err := s.SessionForDay("emp-1", testTime)
			if err != nil {
				t.Fatal(err)
			}
			if found.ID != sess.ID {
				t.Errorf("day session id %d, want %d", found.ID, sess.ID)
			}
			if _, err := s.SessionForDay("emp-1", testTime.AddDate(0, 0, 1)); !errors.Is(err, ErrNotFound) {
				t.Fatalf("next day: err = %v", err)
			}
		})
	}
}

func TestStore_FindSessionOwnership(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.OpenSession("emp-1", testTime, orb.Point{})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.FindSession("emp-1", sess.ID); err != nil {
				t.Fatal(err)
			}
			// Same id, wrong employee: not found.
			if _, err := s.FindSession("emp-2", sess.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("cross-employee lookup: err = %v", err)
			}
		})
	}
}

func TestStore_PointsForSession(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := s.OpenSession("emp-1", testTime, orb.Point{})
			if err != nil {
				t.Fatal(err)
			}
			in := newPoint("emp-1", testTime.Add(time.Minute))
			in.AttendanceID = sess.ID
			out := newPoint("emp-1", testTime.Add(2*time.Minute))
			for _, p := range []*locpoint.LocationPoint{in, out} {
				if _, err := s.InsertPoint(p); err != nil {
					t.Fatal(err)
				}
			}
			got, err := s.PointsForSession("emp-1", sess.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d points, want 1", len(got))
			}
			if got[0].AttendanceID != sess.ID {
				t.Error("wrong session reference")
			}
		})
	}
}

func TestStore_Tasks(t *testing.T) {
	type taskPutter interface {
		PutTask(uint64) error
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.FindTask(7)
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("task 7 should not exist")
			}
			if err := s.(taskPutter).PutTask(7); err != nil {
				t.Fatal(err)
			}
			ok, err = s.FindTask(7)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatal("task 7 should exist")
			}
		})
	}
}
