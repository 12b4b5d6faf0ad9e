package webd

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldroute/fieldd/api"
	"github.com/fieldroute/fieldd/cache"
	"github.com/fieldroute/fieldd/conceptual"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/paulmach/orb"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
		Config:    s.Config,
	}
	writeJSON(w, s.logger, st)
}

func getRequestEmployeeID(r *http.Request) conceptual.EmployeeID {
	return conceptual.EmployeeID(r.URL.Query().Get("employee"))
}

func handleGetEmployeeForRequest(w http.ResponseWriter, r *http.Request) (conceptual.EmployeeID, bool) {
	emp := getRequestEmployeeID(r)
	if emp.IsEmpty() {
		slog.Warn("Missing employee", "url", r.URL)
		http.Error(w, "Missing employee", http.StatusBadRequest)
		return "", false
	}
	return emp, true
}

// getRequestDay reads the ?date=YYYY-MM-DD query param, defaulting to
// today (UTC).
func getRequestDay(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handleLastKnown(w http.ResponseWriter, r *http.Request) {
	emp, ok := handleGetEmployeeForRequest(w, r)
	if !ok {
		return
	}
	if p, hit := cache.LastKnown(emp); hit {
		writeJSON(w, s.logger, p.Feature())
		return
	}
	p, err := s.tracker.Store.LastKnown(emp)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			http.Error(w, "No points for employee", http.StatusNotFound)
			return
		}
		s.logger.Error("Last known lookup failed", "error", err)
		http.Error(w, "Last known lookup failed", http.StatusInternalServerError)
		return
	}
	cache.SetLastKnown(emp, p)
	writeJSON(w, s.logger, p.Feature())
}

func (s *WebDaemon) handlePath(w http.ResponseWriter, r *http.Request) {
	emp, ok := handleGetEmployeeForRequest(w, r)
	if !ok {
		return
	}
	day, err := getRequestDay(r)
	if err != nil {
		http.Error(w, "Bad date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	report, err := s.tracker.Path(r.Context(), emp, day)
	if err != nil {
		if errors.Is(err, api.ErrNoSession) {
			http.Error(w, "No session for day", http.StatusNotFound)
			return
		}
		s.logger.Error("Path report failed", "error", err, "employee", emp)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, s.logger, report)
}

func (s *WebDaemon) handleLivePath(w http.ResponseWriter, r *http.Request) {
	emp, ok := handleGetEmployeeForRequest(w, r)
	if !ok {
		return
	}
	report, err := s.tracker.LivePath(r.Context(), emp)
	if err != nil {
		if errors.Is(err, api.ErrNoSession) {
			http.Error(w, "Employee has no open session", http.StatusNotFound)
			return
		}
		s.logger.Error("Live path failed", "error", err, "employee", emp)
		http.Error(w, "Live path failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, report)
}

func (s *WebDaemon) handleWorkRest(w http.ResponseWriter, r *http.Request) {
	emp, ok := handleGetEmployeeForRequest(w, r)
	if !ok {
		return
	}
	day, err := getRequestDay(r)
	if err != nil {
		http.Error(w, "Bad date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	wr, err := s.tracker.WorkRestForDay(emp, day)
	if err != nil {
		s.logger.Error("Work/rest failed", "error", err, "employee", emp)
		http.Error(w, "Work/rest failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, wr)
}

func (s *WebDaemon) handleSummary(w http.ResponseWriter, r *http.Request) {
	emp, ok := handleGetEmployeeForRequest(w, r)
	if !ok {
		return
	}
	day, err := getRequestDay(r)
	if err != nil {
		http.Error(w, "Bad date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	summary, err := s.tracker.Summary(emp, day)
	if err != nil {
		s.logger.Error("Summary failed", "error", err, "employee", emp)
		http.Error(w, "Summary failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, summary)
}

// toggleRequest is the body for /checkinout and /customer/* posts.
type toggleRequest struct {
	EmployeeID string   `json:"employee_id"`
	Timestamp  string   `json:"timestamp"`
	Lat        *float64 `json:"latitude"`
	Lng        *float64 `json:"longitude"`
	CustomerID uint64   `json:"customer_id,omitempty"`
	ContactID  uint64   `json:"contact_id,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func decodeToggle(w http.ResponseWriter, r *http.Request) (*toggleRequest, time.Time, orb.Point, bool) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Failed to decode", http.StatusUnprocessableEntity)
		return nil, time.Time{}, orb.Point{}, false
	}
	if req.EmployeeID == "" {
		http.Error(w, "Missing employee", http.StatusBadRequest)
		return nil, time.Time{}, orb.Point{}, false
	}
	if req.Lat == nil || req.Lng == nil {
		http.Error(w, "Missing coordinates", http.StatusBadRequest)
		return nil, time.Time{}, orb.Point{}, false
	}
	at := time.Now().UTC()
	if req.Timestamp != "" {
		rep := locpoint.Report{Timestamp: req.Timestamp}
		parsed, err := rep.ParseTime()
		if err != nil {
			http.Error(w, "Bad timestamp", http.StatusBadRequest)
			return nil, time.Time{}, orb.Point{}, false
		}
		at = parsed
	}
	return &req, at, orb.Point{*req.Lng, *req.Lat}, true
}

func (s *WebDaemon) handleCheckInOut(w http.ResponseWriter, r *http.Request) {
	req, at, pt, ok := decodeToggle(w, r)
	if !ok {
		return
	}
	sess, action, err := s.tracker.CheckInOut(conceptual.EmployeeID(req.EmployeeID), at, pt)
	if err != nil {
		s.logger.Error("Check in/out failed", "error", err, "employee", req.EmployeeID)
		http.Error(w, "Check in/out failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, map[string]any{
		"action":  action,
		"session": sess,
	})
}

func (s *WebDaemon) handleCustomerCheckIn(w http.ResponseWriter, r *http.Request) {
	s.handleCustomerVisit(w, r, locpoint.TrackingCustomerCheckIn)
}

func (s *WebDaemon) handleCustomerCheckOut(w http.ResponseWriter, r *http.Request) {
	s.handleCustomerVisit(w, r, locpoint.TrackingCustomerCheckOut)
}

func (s *WebDaemon) handleCustomerVisit(w http.ResponseWriter, r *http.Request, tt locpoint.TrackingType) {
	req, at, pt, ok := decodeToggle(w, r)
	if !ok {
		return
	}
	p, err := s.tracker.CustomerVisit(conceptual.EmployeeID(req.EmployeeID), tt, at, pt,
		req.CustomerID, req.ContactID, req.Comment)
	if err != nil {
		if errors.Is(err, api.ErrNotCheckedIn) {
			http.Error(w, "Employee is not checked in", http.StatusConflict)
			return
		}
		s.logger.Error("Customer visit failed", "error", err, "employee", req.EmployeeID)
		http.Error(w, "Customer visit failed", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, s.logger, p)
}
