package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fieldroute/fieldd/cache"
	"github.com/fieldroute/fieldd/events"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/stream"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// IngestStatus is the tri-state outcome of one report.
type IngestStatus string

const (
	IngestOK        IngestStatus = "ok"
	IngestDuplicate IngestStatus = "duplicate"
	IngestError     IngestStatus = "error"
)

// IngestResult is the structured response for one report.
// Duplicate is an idempotent accept, not an error.
type IngestResult struct {
	Status   IngestStatus `json:"status"`
	RecordID uint64       `json:"record_id,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// Ingest validates one raw report, deduplicates it against the
// employee's stored points, resolves its attendance/task references,
// and persists it.
//
// Reference resolution is forgiving: an attendance or task id that
// does not resolve is logged and dropped, never fatal; a point with
// no resolvable session is stored unreferenced.
func (t *Tracker) Ingest(ctx context.Context, report *locpoint.Report) *IngestResult {
	p, err := report.ToPoint()
	if err != nil {
		t.logger.Warn("Rejected report", "error", err, "employee", report.EmployeeID)
		return &IngestResult{Status: IngestError, Message: err.Error()}
	}

	// Serialize check-then-insert for this employee.
	mu := t.lockFor(p.EmployeeID)
	mu.Lock()
	defer mu.Unlock()

	if !t.dedupe(p) {
		t.logger.Warn("Deduped report (exact)", "employee", p.EmployeeID, "time", p.Time)
		return &IngestResult{Status: IngestDuplicate, Message: "entry already exists"}
	}

	window, err := t.Store.PointsInWindow(p.EmployeeID,
		p.Time.Add(-params.DedupeWindow), p.Time.Add(params.DedupeWindow))
	if err != nil {
		t.logger.Error("Duplicate check failed", "error", err)
		return &IngestResult{Status: IngestError, Message: "server error"}
	}
	if len(window) > 0 {
		t.logger.Info("Deduped report (window)", "employee", p.EmployeeID, "time", p.Time)
		return &IngestResult{Status: IngestDuplicate, Message: "entry already exists"}
	}

	t.resolveReferences(p)

	id, err := t.Store.InsertPoint(p)
	if err != nil {
		t.logger.Error("Failed to persist point", "error", err)
		return &IngestResult{Status: IngestError, Message: "server error"}
	}

	cache.SetLastKnown(p.EmployeeID, p)
	events.NewStoredPointFeed.Send(p)

	t.logger.Info("Stored point", "id", id, "employee", p.EmployeeID, "type", p.Type)
	return &IngestResult{Status: IngestOK, RecordID: id, Message: "saved"}
}

// resolveReferences verifies the optional attendance and task ids,
// downgrading unresolvable ones to absent, and falls back to the
// employee's open session when no attendance id survives.
func (t *Tracker) resolveReferences(p *locpoint.LocationPoint) {
	if p.AttendanceID != 0 {
		if _, err := t.Store.FindSession(p.EmployeeID, p.AttendanceID); err != nil {
			t.logger.Warn("Attendance not found for employee, continuing without",
				"attendance", p.AttendanceID, "employee", p.EmployeeID)
			p.AttendanceID = 0
		}
	}
	if p.AttendanceID == 0 {
		if sess, err := t.Store.OpenSessionFor(p.EmployeeID); err == nil {
			p.AttendanceID = sess.ID
		} else if !errors.Is(err, state.ErrNotFound) {
			t.logger.Error("Open session lookup failed", "error", err)
		}
	}
	if p.TaskID != 0 {
		found, err := t.Store.FindTask(p.TaskID)
		if err != nil || !found {
			t.logger.Warn("Task not found, continuing without", "task", p.TaskID)
			p.TaskID = 0
		}
	}
}

// PopulateReader decodes an NDJSON stream of reports and ingests each
// through the full validate/dedupe path. It returns counts per
// outcome; individual failures never abort the stream.
func (t *Tracker) PopulateReader(ctx context.Context, in io.Reader) (ok, dup, bad int) {
	reports := stream.NDJSON[locpoint.Report](ctx, in)
	stream.Sink(ctx, func(r locpoint.Report) {
		res := t.Ingest(ctx, &r)
		switch res.Status {
		case IngestOK:
			ok++
		case IngestDuplicate:
			dup++
		default:
			bad++
		}
	}, reports)
	t.logger.Info("Populate done",
		"ok", ok, "duplicate", dup, "error", bad,
		"total", fmt.Sprintf("%d", ok+dup+bad))
	return ok, dup, bad
}
