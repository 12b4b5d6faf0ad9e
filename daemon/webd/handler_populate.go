package webd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fieldroute/fieldd/api"
	"github.com/fieldroute/fieldd/cache"
	"github.com/fieldroute/fieldd/events"
	"github.com/fieldroute/fieldd/stream"
	"github.com/fieldroute/fieldd/types/locpoint"
)

// handleUpdate ingests a single JSON report and answers with the
// structured ingest result. Duplicates answer 200: the device retried
// and the record is already safe.
func (s *WebDaemon) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		s.logger.Error("No request body", "method", r.Method, "url", r.URL)
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}
	var report locpoint.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		s.logger.Error("Failed to decode", "error", err)
		http.Error(w, "Failed to decode", http.StatusUnprocessableEntity)
		return
	}

	res := s.tracker.Ingest(r.Context(), &report)
	if res.Status == api.IngestError {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, s.logger, res)

	if res.Status == api.IngestOK {
		s.broadcastPush(&report)
	}
}

// handlePopulate ingests an NDJSON batch of reports, one per line.
// Individual bad lines are counted, never fatal; the response reports
// per-outcome counts.
func (s *WebDaemon) handlePopulate(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		s.logger.Error("No request body", "method", r.Method, "url", r.URL)
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}

	// Keep a copy of the raw payload for the websocket firehose,
	// which broadcasts reports as received.
	cp := new(bytes.Buffer)
	tee := io.TeeReader(r.Body, cp)

	ctx := r.Context()
	ok, dup, bad := s.tracker.PopulateReader(ctx, tee)

	points := stream.Transform(ctx, func(r locpoint.Report) *locpoint.LocationPoint {
		p, _ := r.ToPoint()
		return p
	}, stream.NDJSON[locpoint.Report](ctx, cp))
	asReceived := stream.Collect(ctx, stream.Filter(ctx,
		func(p *locpoint.LocationPoint) bool { return p != nil }, points))
	if len(asReceived) > 0 {
		cache.SetLastPush(asReceived[0].EmployeeID, asReceived)
		events.HTTPPopulateFeed.Send(asReceived)
	}

	writeJSON(w, s.logger, map[string]int{
		"stored":    ok,
		"duplicate": dup,
		"error":     bad,
	})
}

func (s *WebDaemon) broadcastPush(report *locpoint.Report) {
	p, err := report.ToPoint()
	if err != nil {
		return
	}
	cache.SetLastPush(p.EmployeeID, []*locpoint.LocationPoint{p})
	events.HTTPPopulateFeed.Send([]*locpoint.LocationPoint{p})
}
