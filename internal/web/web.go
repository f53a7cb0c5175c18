// Package web exposes the availability engine as a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"raumcheck/internal/model"
	"raumcheck/internal/room"
)

// Finder is the query capability consumed by the HTTP layer.
type Finder interface {
	FindAvailability(ctx context.Context, at time.Time, buildingPrefix string) []model.RoomAvailability
	RoomScheduleFor(ctx context.Context, roomCode string, at time.Time) []model.ScheduleEntry
	Refresh(ctx context.Context, at time.Time)
}

// Server routes availability queries to a Finder.
type Server struct {
	finder Finder
	log    *zap.SugaredLogger
	router chi.Router
	now    func() time.Time
}

// NewServer constructs the HTTP server around the given finder.
func NewServer(f Finder, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		finder: f,
		log:    log,
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/api/availability", s.handleAvailability)
	r.Get("/api/rooms/{room}/schedule", s.handleRoomSchedule)
	r.Post("/api/refresh", s.handleRefresh)

	s.router = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("http request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// availabilityResponse is the JSON shape for /api/availability.
type availabilityResponse struct {
	At       time.Time                `json:"at"`
	Building string                   `json:"building,omitempty"`
	Rooms    []model.RoomAvailability `json:"rooms"`
}

// GET /api/availability?at=RFC3339&building=N
//
// at defaults to now; building, when given, must be a single uppercase
// letter. Aggregation failures never surface here — missing feeds just
// mean fewer rooms in the answer.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	at, err := parseAt(r.URL.Query().Get("at"), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'at' timestamp; want RFC3339")
		return
	}

	building := r.URL.Query().Get("building")
	if building != "" && !validBuilding(building) {
		writeError(w, http.StatusBadRequest, "invalid 'building'; want a single letter A-Z")
		return
	}

	rooms := s.finder.FindAvailability(r.Context(), at, building)
	writeJSON(w, http.StatusOK, availabilityResponse{
		At:       at,
		Building: building,
		Rooms:    rooms,
	})
}

// roomScheduleResponse is the JSON shape for /api/rooms/{room}/schedule.
type roomScheduleResponse struct {
	Room    string                `json:"room"`
	At      time.Time             `json:"at"`
	Entries []model.ScheduleEntry `json:"entries"`
}

// GET /api/rooms/{room}/schedule?at=RFC3339
func (s *Server) handleRoomSchedule(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "room")
	if _, ok := room.Extract(code); !ok || len(code) != 4 {
		writeError(w, http.StatusBadRequest, "invalid room code")
		return
	}

	at, err := parseAt(r.URL.Query().Get("at"), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'at' timestamp; want RFC3339")
		return
	}

	entries := s.finder.RoomScheduleFor(r.Context(), code, at)
	writeJSON(w, http.StatusOK, roomScheduleResponse{
		Room:    code,
		At:      at,
		Entries: entries,
	})
}

// POST /api/refresh — force a refetch and snapshot rewrite for today.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.finder.Refresh(r.Context(), s.now())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

func parseAt(v string, now func() time.Time) (time.Time, error) {
	if v == "" {
		return now(), nil
	}
	return time.Parse(time.RFC3339, v)
}

func validBuilding(v string) bool {
	return len(v) == 1 && v[0] >= 'A' && v[0] <= 'Z'
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
