// Package api exposes the flight-space grid over HTTP: the current
// grid as JSON, PNG and HTML renderings, rebuilds with new parameters,
// and the persisted run history.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/flightgrid/internal/colliders"
	"github.com/banshee-data/flightgrid/internal/db"
	"github.com/banshee-data/flightgrid/internal/planning"
	"github.com/banshee-data/flightgrid/internal/units"
)

// ANSI escape codes for request logging.
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves one loaded obstacle set and the grid most recently
// built from it. A rebuild swaps the grid and its origin atomically;
// grids themselves are never mutated.
type Server struct {
	obstacles planning.ObstacleSet
	home      colliders.Home
	source    string
	units     string
	db        *db.DB // optional; nil disables run persistence

	mu       sync.RWMutex
	grid     *planning.Grid
	origin   planning.Origin
	altitude float64 // metres
	margin   float64 // metres
}

// NewServer builds the initial grid and returns a server ready to
// mount. database may be nil.
func NewServer(obstacles planning.ObstacleSet, home colliders.Home, source string, altitude, margin float64, unit string, database *db.DB) (*Server, error) {
	g, origin, err := planning.Build(obstacles, altitude, margin)
	if err != nil {
		return nil, err
	}
	return &Server{
		obstacles: obstacles,
		home:      home,
		source:    source,
		units:     unit,
		db:        database,
		grid:      g,
		origin:    origin,
		altitude:  altitude,
		margin:    margin,
	}, nil
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/grid", s.showGrid)
	mux.HandleFunc("/grid/plot", s.showGridPlot)
	mux.HandleFunc("/grid/chart", s.showGridChart)
	mux.HandleFunc("/build", s.buildGrid)
	mux.HandleFunc("/runs", s.listRuns)
	mux.HandleFunc("/config", s.showConfig)
	return mux
}

// snapshot returns the current grid state under the read lock.
func (s *Server) snapshot() (*planning.Grid, planning.Origin, float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid, s.origin, s.altitude, s.margin
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseParam reads a float query/form parameter, converting from the
// server's configured distance units into metres. Returns fallback when
// the parameter is absent.
func (s *Server) parseParam(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return units.ToMetres(v, s.units), nil
}
