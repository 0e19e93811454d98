package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/flightgrid/internal/db"
	"github.com/banshee-data/flightgrid/internal/gridviz"
	"github.com/banshee-data/flightgrid/internal/monitoring"
	"github.com/banshee-data/flightgrid/internal/planning"
	"github.com/banshee-data/flightgrid/internal/units"
)

// gridResponse is the JSON shape of a grid. Cells are row-major {0,1}
// so downstream planners can index them directly.
type gridResponse struct {
	Rows     int             `json:"rows"`
	Cols     int             `json:"cols"`
	Origin   planning.Origin `json:"origin"`
	Altitude float64         `json:"altitude"`
	Margin   float64         `json:"margin"`
	Cells    []planning.Cell `json:"cells"`
}

func (s *Server) showGrid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	g, origin, altitude, margin := s.snapshot()
	resp := gridResponse{
		Rows:     g.Rows(),
		Cols:     g.Cols(),
		Origin:   origin,
		Altitude: units.FromMetres(altitude, s.units),
		Margin:   units.FromMetres(margin, s.units),
		Cells:    g.Cells(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write grid")
	}
}

func (s *Server) showGridPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	g, origin, altitude, margin := s.snapshot()

	// gonum/plot renders to files, so stage the PNG in a temp dir.
	tmp, err := os.MkdirTemp("", "flightgrid-plot-")
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to stage plot")
		return
	}
	defer os.RemoveAll(tmp)

	path := filepath.Join(tmp, "grid.png")
	if err := gridviz.SavePlot(g, origin, altitude, margin, path); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render plot: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) showGridChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	g, origin, altitude, margin := s.snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := gridviz.RenderChart(w, g, origin, altitude, margin); err != nil {
		monitoring.Logf("failed to render grid chart: %v", err)
	}
}

func (s *Server) buildGrid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	_, _, curAltitude, curMargin := s.snapshot()

	altitude, err := s.parseParam(r, "altitude", curAltitude)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'altitude' parameter")
		return
	}
	margin, err := s.parseParam(r, "margin", curMargin)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid 'margin' parameter")
		return
	}

	g, origin, err := planning.Build(s.obstacles, altitude, margin)
	if err != nil {
		status := http.StatusInternalServerError
		if planning.IsInvalidInput(err) {
			status = http.StatusBadRequest
		}
		s.writeJSONError(w, status, fmt.Sprintf("Failed to build grid: %v", err))
		return
	}

	s.mu.Lock()
	s.grid, s.origin = g, origin
	s.altitude, s.margin = altitude, margin
	s.mu.Unlock()

	run := &db.GridRun{
		Source:   s.source,
		Altitude: altitude,
		Margin:   margin,
		NorthMin: origin.NorthMin,
		EastMin:  origin.EastMin,
	}
	if s.db != nil {
		if err := s.db.RecordGridRun(run, g); err != nil {
			monitoring.Logf("failed to record grid run: %v", err)
		}
	} else {
		run.Rows, run.Cols = g.Rows(), g.Cols()
		run.BlockedCells = g.BlockedCount()
	}

	// The stored row keeps metres; the response echoes the server's
	// display units, matching /grid and /config.
	resp := *run
	resp.Altitude = units.FromMetres(run.Altitude, s.units)
	resp.Margin = units.FromMetres(run.Margin, s.units)
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write build result")
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotFound, "Run persistence is not enabled")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListGridRuns(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []*db.GridRun{}
	}
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write runs")
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	_, _, altitude, margin := s.snapshot()
	config := map[string]interface{}{
		"source":    s.source,
		"obstacles": len(s.obstacles),
		"home":      s.home,
		"altitude":  units.FromMetres(altitude, s.units),
		"margin":    units.FromMetres(margin, s.units),
		"units":     s.units,
	}
	if err := json.NewEncoder(w).Encode(config); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write config")
	}
}
