package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

func fptr(v float64) *float64 { return &v }

func report(emp, ts string, lat, lng float64) *locpoint.Report {
	return &locpoint.Report{
		EmployeeID: emp,
		Timestamp:  ts,
		Lat:        fptr(lat),
		Lng:        fptr(lng),
	}
}

func TestIngestValidation(t *testing.T) {
	cases := []struct {
		name   string
		report *locpoint.Report
		want   IngestStatus
	}{
		{"valid", report("emp-1", "2026-08-01T09:00:00Z", 52.52, 13.40), IngestOK},
		{"missing employee", report("", "2026-08-01T09:00:01Z", 52.52, 13.40), IngestError},
		{"missing timestamp", report("emp-1", "", 52.52, 13.40), IngestError},
		{"garbage timestamp", report("emp-1", "yesterday-ish", 52.52, 13.40), IngestError},
		{"latitude over range", report("emp-1", "2026-08-01T09:00:02Z", 90.0001, 13.40), IngestError},
		{"longitude over range", report("emp-1", "2026-08-01T09:00:03Z", 52.52, 180.0001), IngestError},
		{"latitude north pole", report("emp-1", "2026-08-01T09:01:00Z", 90, 13.40), IngestOK},
		{"latitude south pole", report("emp-1", "2026-08-01T09:02:00Z", -90, 13.40), IngestOK},
		{"longitude antimeridian", report("emp-1", "2026-08-01T09:03:00Z", 52.52, 180), IngestOK},
		{"longitude antimeridian west", report("emp-1", "2026-08-01T09:04:00Z", 52.52, -180), IngestOK},
		{"missing latitude", &locpoint.Report{EmployeeID: "emp-1", Timestamp: "2026-08-01T09:05:00Z", Lng: fptr(13.40)}, IngestError},
	}
	tr := newTestTracker(t, nil)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := tr.Ingest(context.Background(), c.report)
			if res.Status != c.want {
				t.Errorf("got %q (%s), want %q", res.Status, res.Message, c.want)
			}
		})
	}
}

func TestIngestDuplicateWindow(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()

	res := tr.Ingest(ctx, report("emp-1", "2026-08-01T09:00:00Z", 52.52, 13.40))
	if res.Status != IngestOK {
		t.Fatalf("first report: got %q (%s)", res.Status, res.Message)
	}

	// Same employee 3s later is within the +-5s window, even at a
	// different position.
	res = tr.Ingest(ctx, report("emp-1", "2026-08-01T09:00:03Z", 52.53, 13.41))
	if res.Status != IngestDuplicate {
		t.Errorf("3s later: got %q, want duplicate", res.Status)
	}

	// 11s later is outside the window.
	res = tr.Ingest(ctx, report("emp-1", "2026-08-01T09:00:11Z", 52.53, 13.41))
	if res.Status != IngestOK {
		t.Errorf("11s later: got %q (%s), want ok", res.Status, res.Message)
	}

	// A byte-identical resend trips the exact guard.
	res = tr.Ingest(ctx, report("emp-1", "2026-08-01T09:00:11Z", 52.53, 13.41))
	if res.Status != IngestDuplicate {
		t.Errorf("exact resend: got %q, want duplicate", res.Status)
	}

	// A different employee at the same instant is not a duplicate.
	res = tr.Ingest(ctx, report("emp-2", "2026-08-01T09:00:00Z", 52.52, 13.40))
	if res.Status != IngestOK {
		t.Errorf("other employee: got %q (%s), want ok", res.Status, res.Message)
	}
}

func TestIngestReferenceResolution(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	emp := conceptual.EmployeeID("emp-1")

	sess, err := tr.Store.OpenSession(emp, time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC), orb.Point{13.40, 52.52})
	if err != nil {
		t.Fatal(err)
	}

	// A bogus attendance id is dropped and the open session takes
	// its place; a bogus task id is dropped outright.
	r := report("emp-1", "2026-08-01T09:00:00Z", 52.52, 13.40)
	r.AttendanceID = 9999
	r.TaskID = 8888
	res := tr.Ingest(ctx, r)
	if res.Status != IngestOK {
		t.Fatalf("got %q (%s)", res.Status, res.Message)
	}

	pts, err := tr.Store.PointsForSession(emp, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 1 {
		t.Fatalf("got %d session points, want 1", len(pts))
	}
	if pts[0].AttendanceID != sess.ID {
		t.Errorf("attendance = %d, want open session %d", pts[0].AttendanceID, sess.ID)
	}
	if pts[0].TaskID != 0 {
		t.Errorf("task = %d, want dropped", pts[0].TaskID)
	}
}

func TestPopulateReader(t *testing.T) {
	tr := newTestTracker(t, nil)
	in := strings.NewReader(strings.Join([]string{
		`{"employee_id":"emp-1","timestamp":"2026-08-01T09:00:00Z","latitude":52.52,"longitude":13.40}`,
		`{"employee_id":"emp-1","timestamp":"2026-08-01T09:00:02Z","latitude":52.52,"longitude":13.41}`,
		`{"employee_id":"emp-1","timestamp":"2026-08-01T09:10:00Z","latitude":91,"longitude":13.40}`,
		`{"employee_id":"emp-1","timestamp":"2026-08-01T09:20:00Z","latitude":52.53,"longitude":13.42}`,
	}, "\n"))

	ok, dup, bad := tr.PopulateReader(context.Background(), in)
	if ok != 2 || dup != 1 || bad != 1 {
		t.Errorf("got ok=%d dup=%d bad=%d, want 2/1/1", ok, dup, bad)
	}
}
