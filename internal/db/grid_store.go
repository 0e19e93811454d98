package db

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/flightgrid/internal/planning"
)

// ErrRunNotFound is returned when a run_id has no row.
var ErrRunNotFound = errors.New("db: grid run not found")

// GridRun is a persisted grid build: the parameters, the resulting
// dimensions and origin, and the gzip-compressed row-major cell data.
type GridRun struct {
	RunID        string  `json:"run_id"`
	Source       string  `json:"source"`
	Altitude     float64 `json:"altitude"`
	Margin       float64 `json:"margin"`
	Rows         int     `json:"rows"`
	Cols         int     `json:"cols"`
	NorthMin     float64 `json:"north_min"`
	EastMin      float64 `json:"east_min"`
	BlockedCells int     `json:"blocked_cells"`
	GridBlob     []byte  `json:"-"`
	CreatedAt    int64   `json:"created_at"`
}

// RecordGridRun persists a built grid. If run.RunID is empty a UUID is
// generated. The grid's cells are compressed into run.GridBlob.
func (db *DB) RecordGridRun(run *GridRun, g *planning.Grid) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	run.Rows = g.Rows()
	run.Cols = g.Cols()
	run.BlockedCells = g.BlockedCount()

	blob, err := encodeGridBlob(g.Cells())
	if err != nil {
		return fmt.Errorf("compress grid: %w", err)
	}
	run.GridBlob = blob

	_, err = db.Exec(`
		INSERT INTO grid_runs (
			run_id, source, altitude, margin, rows, cols,
			north_min, east_min, blocked_cells, grid_blob, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.Altitude, run.Margin, run.Rows, run.Cols,
		run.NorthMin, run.EastMin, run.BlockedCells, run.GridBlob, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert grid run: %w", err)
	}
	return nil
}

// GetGridRun fetches one run by id, including its grid blob.
func (db *DB) GetGridRun(runID string) (*GridRun, error) {
	row := db.QueryRow(`
		SELECT run_id, source, altitude, margin, rows, cols,
		       north_min, east_min, blocked_cells, grid_blob, created_at
		FROM grid_runs WHERE run_id = ?`, runID)

	var run GridRun
	err := row.Scan(
		&run.RunID, &run.Source, &run.Altitude, &run.Margin, &run.Rows, &run.Cols,
		&run.NorthMin, &run.EastMin, &run.BlockedCells, &run.GridBlob, &run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query grid run: %w", err)
	}
	return &run, nil
}

// ListGridRuns returns the most recent runs, newest first, without
// their grid blobs.
func (db *DB) ListGridRuns(limit int) ([]*GridRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, source, altitude, margin, rows, cols,
		       north_min, east_min, blocked_cells, created_at
		FROM grid_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query grid runs: %w", err)
	}
	defer rows.Close()

	var runs []*GridRun
	for rows.Next() {
		var run GridRun
		if err := rows.Scan(
			&run.RunID, &run.Source, &run.Altitude, &run.Margin, &run.Rows, &run.Cols,
			&run.NorthMin, &run.EastMin, &run.BlockedCells, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan grid run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// DecodeGridBlob decompresses a run's grid blob back into row-major
// cells. It validates the length against the run's dimensions.
func DecodeGridBlob(run *GridRun) ([]planning.Cell, error) {
	zr, err := gzip.NewReader(bytes.NewReader(run.GridBlob))
	if err != nil {
		return nil, fmt.Errorf("open grid blob: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress grid blob: %w", err)
	}
	if len(raw) != run.Rows*run.Cols {
		return nil, fmt.Errorf("grid blob has %d cells, want %d", len(raw), run.Rows*run.Cols)
	}
	cells := make([]planning.Cell, len(raw))
	for i, b := range raw {
		cells[i] = planning.Cell(b)
	}
	return cells, nil
}

func encodeGridBlob(cells []planning.Cell) ([]byte, error) {
	raw := make([]byte, len(cells))
	for i, c := range cells {
		raw[i] = byte(c)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
