// Package web exposes the scheduling and attention-analytics engine over a
// JSON API. The handlers do no computation of their own: they decode plain
// data, call the engine packages and encode plain data back.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tempocal/internal/audit"
	"tempocal/internal/conflict"
	"tempocal/internal/config"
	"tempocal/internal/focus"
	"tempocal/internal/ical"
	appLog "tempocal/internal/log"
	"tempocal/internal/model"
	"tempocal/internal/recur"
	"tempocal/internal/rolefit"
	"tempocal/internal/state"
)

// Server provides the HTTP JSON API over the engine.
type Server struct {
	cfg   *config.Config
	store *audit.Store // nil disables snapshot writes
	mux   *http.ServeMux
}

// NewServer constructs a new Server. store may be nil; role-fit requests
// then skip the audit snapshot.
func NewServer(cfg *config.Config, store *audit.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="tempocal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/materialize", s.handleMaterialize)
	s.mux.HandleFunc("/api/conflicts", s.handleConflicts)
	s.mux.HandleFunc("/api/focus", s.handleFocus)
	s.mux.HandleFunc("/api/rolefit", s.handleRoleFit)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/export.ics", s.handleExportICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// materializeRequest carries the free-text scheduling input. The recurrence
// phrase, time of day and start-date anchor are all read from the combined
// description + anchor text.
type materializeRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	AnchorText      string `json:"anchorText"`
	DurationMinutes int    `json:"durationMinutes"`
	OwnerID         string `json:"ownerId,omitempty"`
	LayerID         string `json:"layerId,omitempty"`
	AttentionType   string `json:"attentionType,omitempty"`
}

type materializeResponse struct {
	Items                 []model.TimelineItem `json:"items"`
	SeriesID              *string              `json:"seriesId"`
	RecurrenceDescription string               `json:"recurrenceDescription"`
	RecurrenceRule        string               `json:"recurrenceRule,omitempty"`
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	now := time.Now().In(loc)

	text := strings.TrimSpace(req.Description + " " + req.AnchorText)
	pattern := recur.Parse(text)

	clock, ok := recur.ParseTimeOfDay(text)
	if !ok {
		// Malformed or missing time text is not an error; fall back to the
		// configured default start.
		clock, _ = recur.ParseClock(s.cfg.DefaultStart)
	}
	day := recur.AnchorDate(text, now)
	anchor := time.Date(day.Year(), day.Month(), day.Day(), clock.Hours, clock.Minutes, 0, 0, loc)

	items, seriesID, err := recur.Materialize(recur.DraftSpec{
		Title:           req.Title,
		OwnerID:         req.OwnerID,
		LayerID:         req.LayerID,
		AttentionType:   model.AttentionType(req.AttentionType),
		Start:           anchor,
		DurationMinutes: req.DurationMinutes,
		Pattern:         pattern,
		Cap:             s.cfg.OccurrenceCap,
	})
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		appLog.Error("materialize failed", err, "title", req.Title)
		writeError(w, http.StatusInternalServerError, "failed to materialize occurrences")
		return
	}

	resp := materializeResponse{
		Items:                 items,
		RecurrenceDescription: recur.Describe(pattern),
		RecurrenceRule:        recur.RuleString(pattern),
	}
	if seriesID != "" {
		resp.SeriesID = &seriesID
	}

	appLog.Info("materialized occurrences",
		"title", req.Title,
		"count", len(items),
		"series_id", seriesID,
		"recurring", pattern != nil,
	)
	writeJSON(w, http.StatusOK, resp)
}

type itemsRequest struct {
	Items []model.TimelineItem `json:"items"`
}

type conflictsResponse struct {
	Conflicts []conflict.Pair `json:"conflicts"`
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, conflictsResponse{
		Conflicts: conflict.FindConflicts(req.Items),
	})
}

type focusRequest struct {
	Items     []model.TimelineItem `json:"items"`
	PeakStart string               `json:"peakStart,omitempty"`
	PeakEnd   string               `json:"peakEnd,omitempty"`
}

type focusResponse struct {
	FocusBlocks []model.FocusBlock `json:"focusBlocks"`
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	pol := s.focusPolicy()
	if req.PeakStart != "" {
		if c, err := recur.ParseClock(req.PeakStart); err == nil {
			pol.PeakStart = c
		}
	}
	if req.PeakEnd != "" {
		if c, err := recur.ParseClock(req.PeakEnd); err == nil {
			pol.PeakEnd = c
		}
	}

	writeJSON(w, http.StatusOK, focusResponse{
		FocusBlocks: focus.Analyze(req.Items, pol),
	})
}

// focusPolicy builds the analysis policy from configuration, falling back to
// the package defaults on malformed peak strings.
func (s *Server) focusPolicy() focus.Policy {
	pol := focus.DefaultPolicy()
	pol.MinFocusDurationMinutes = s.cfg.Focus.MinDurationMinutes
	if c, err := recur.ParseClock(s.cfg.Focus.PeakStart); err == nil {
		pol.PeakStart = c
	}
	if c, err := recur.ParseClock(s.cfg.Focus.PeakEnd); err == nil {
		pol.PeakEnd = c
	}
	return pol
}

type roleFitRequest struct {
	RoleSelected  string               `json:"roleSelected"`
	ZoneSelected  string               `json:"zoneSelected"`
	WeekStartDate string               `json:"weekStartDate"`
	OwnerID       string               `json:"ownerId,omitempty"`
	Items         []model.TimelineItem `json:"items"`
}

func (s *Server) handleRoleFit(w http.ResponseWriter, r *http.Request) {
	var req roleFitRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	score := rolefit.Score(rolefit.Input{
		Items: req.Items,
		Role:  model.RoleMode(req.RoleSelected),
		Zone:  req.ZoneSelected,
	})

	// Snapshot writes are best-effort: the score is the caller's answer
	// whether or not the audit trail keeps up.
	if s.store != nil {
		err := s.store.Append(r.Context(), audit.Snapshot{
			OwnerID:         req.OwnerID,
			Role:            req.RoleSelected,
			Zone:            req.ZoneSelected,
			WeekStart:       req.WeekStartDate,
			Score:           score.Score,
			Breakdown:       score.Breakdown,
			Recommendations: score.Recommendations,
		})
		if err != nil {
			appLog.Error("audit snapshot append failed", err, "owner", req.OwnerID)
		}
	}

	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	now := time.Now().In(loc)

	items := state.Sweep(req.Items, now)
	snap := state.Aggregate(items, now, state.Thresholds{
		ApproachingWarn: s.cfg.State.ApproachingWarn,
		ActiveWarn:      s.cfg.State.ActiveWarn,
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	doc := ical.Export(req.Items, time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// decodeJSON enforces POST + JSON body and writes the error response itself.
// Returns false when the request was already answered.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// StartServer runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, store *audit.Store) error {
	s := NewServer(cfg, store)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
