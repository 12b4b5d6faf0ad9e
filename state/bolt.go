package state

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/jellydator/ttlcache/v3"
	"github.com/paulmach/orb"
	"go.etcd.io/bbolt"
)

const storeDBName = "state.db"

var (
	pointsBucket   = []byte("points")
	sessionsBucket = []byte("sessions")
	tasksBucket    = []byte("tasks")
)

// BoltStore persists points and sessions in a single bbolt file.
// Points live in a nested per-employee bucket keyed by
// unix-seconds + point id, so time-window queries are range scans.
// Opening a writable conn holds the file lock; one process owns it.
type BoltStore struct {
	db *bbolt.DB

	// lastKnown caches each employee's most recent point for the live
	// monitoring surface.
	lastKnown *ttlcache.Cache[conceptual.EmployeeID, *locpoint.LocationPoint]
}

func NewBoltStore(datadir string) (*BoltStore, error) {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(datadir, storeDBName), 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{pointsBucket, sessionsBucket, tasksBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{
		db: db,
		lastKnown: ttlcache.New[conceptual.EmployeeID, *locpoint.LocationPoint](
			ttlcache.WithTTL[conceptual.EmployeeID, *locpoint.LocationPoint](params.CacheLastKnownTTL)),
	}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// pointKey orders points by time, tie-broken by id. The epoch second
// gets its sign bit flipped so negative (pre-1970) timestamps still
// sort below positive ones as unsigned bytes.
func pointKey(t time.Time, id uint64) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k[:8], uint64(t.Unix())^(1<<63))
	binary.BigEndian.PutUint64(k[8:], id)
	return k
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *BoltStore) InsertPoint(p *locpoint.LocationPoint) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		emp, err := tx.Bucket(pointsBucket).CreateBucketIfNotExists([]byte(p.EmployeeID))
		if err != nil {
			return err
		}
		id, err = emp.NextSequence()
		if err != nil {
			return err
		}
		p.ID = id
		v, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return emp.Put(pointKey(p.Time, id), v)
	})
	if err != nil {
		return 0, err
	}

	if last := s.lastKnown.Get(p.EmployeeID); last == nil ||
		!last.Value().Time.After(p.Time) {
		s.lastKnown.Set(p.EmployeeID, p, ttlcache.DefaultTTL)
	}
	return id, nil
}

func (s *BoltStore) scanPoints(emp conceptual.EmployeeID, from, to time.Time, keep func(*locpoint.LocationPoint) bool) ([]*locpoint.LocationPoint, error) {
	out := []*locpoint.LocationPoint{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pointsBucket).Bucket([]byte(emp))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		min := pointKey(from, 0)
		max := pointKey(to, ^uint64(0))
		for k, v := c.Seek(min); k != nil && bytes.Compare(k, max) <= 0; k, v = c.Next() {
			p := &locpoint.LocationPoint{}
			if err := json.Unmarshal(v, p); err != nil {
				return err
			}
			if keep == nil || keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) PointsInWindow(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error) {
	return s.scanPoints(emp, from, to, nil)
}

func (s *BoltStore) PointsBetween(emp conceptual.EmployeeID, from, to time.Time) ([]*locpoint.LocationPoint, error) {
	return s.scanPoints(emp, from, to, nil)
}

func (s *BoltStore) PointsForSession(emp conceptual.EmployeeID, sessionID uint64) ([]*locpoint.LocationPoint, error) {
	return s.scanPoints(emp, time.Unix(-(1<<40), 0), time.Unix(1<<40, 0),
		func(p *locpoint.LocationPoint) bool {
			return p.AttendanceID == sessionID
		})
}

func (s *BoltStore) LastKnown(emp conceptual.EmployeeID) (*locpoint.LocationPoint, error) {
	if item := s.lastKnown.Get(emp); item != nil {
		return item.Value(), nil
	}
	var p *locpoint.LocationPoint
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pointsBucket).Bucket([]byte(emp))
		if b == nil {
			return ErrNotFound
		}
		_, v := b.Cursor().Last()
		if v == nil {
			return ErrNotFound
		}
		p = &locpoint.LocationPoint{}
		return json.Unmarshal(v, p)
	})
	if err != nil {
		return nil, err
	}
	s.lastKnown.Set(emp, p, ttlcache.DefaultTTL)
	return p, nil
}

func (s *BoltStore) FindSession(emp conceptual.EmployeeID, sessionID uint64) (*attendance.Session, error) {
	var sess *attendance.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(emp))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(itob(sessionID))
		if v == nil {
			return ErrNotFound
		}
		sess = &attendance.Session{}
		return json.Unmarshal(v, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoltStore) OpenSessionFor(emp conceptual.EmployeeID) (*attendance.Session, error) {
	var sess *attendance.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(emp))
		if b == nil {
			return ErrNotFound
		}
		// Newest first; open sessions are expected at the tail.
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			cand := &attendance.Session{}
			if err := json.Unmarshal(v, cand); err != nil {
				return err
			}
			if cand.IsOpen() {
				sess = cand
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoltStore) SessionForDay(emp conceptual.EmployeeID, day time.Time) (*attendance.Session, error) {
	start, end := DayBounds(day)
	var sess *attendance.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(emp))
		if b == nil {
			return ErrNotFound
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			cand := &attendance.Session{}
			if err := json.Unmarshal(v, cand); err != nil {
				return err
			}
			if !cand.CheckIn.Before(start) && !cand.CheckIn.After(end) {
				sess = cand
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoltStore) OpenSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error) {
	if existing, err := s.OpenSessionFor(emp); err == nil && existing != nil {
		return nil, ErrSessionOpen
	}
	sess := &attendance.Session{
		EmployeeID: emp,
		CheckIn:    at.UTC().Truncate(time.Second),
		CheckInAt:  pt,
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(sessionsBucket).CreateBucketIfNotExists([]byte(emp))
		if err != nil {
			return err
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		sess.ID = id
		v, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		return b.Put(itob(id), v)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoltStore) CloseSession(emp conceptual.EmployeeID, at time.Time, pt orb.Point) (*attendance.Session, error) {
	sess, err := s.OpenSessionFor(emp)
	if err != nil {
		return nil, ErrNoOpenSession
	}
	sess.CheckOut = at.UTC().Truncate(time.Second)
	sess.CheckOutAt = pt
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(emp))
		if b == nil {
			return ErrNotFound
		}
		v, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		return b.Put(itob(sess.ID), v)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoltStore) FindTask(taskID uint64) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(tasksBucket).Get(itob(taskID)) != nil
		return nil
	})
	return found, err
}

// PutTask registers a task id. Task records proper belong to an
// external system; the store only answers existence checks.
func (s *BoltStore) PutTask(taskID uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(tasksBucket).Put(itob(taskID), []byte{1})
	})
}
