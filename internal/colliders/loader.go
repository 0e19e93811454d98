// Package colliders loads obstacle survey files into planning obstacle
// sets.
//
// The format is the standard colliders export: a first line carrying
// the survey home position ("lat0 37.792480, lon0 -122.397450"), a
// column-header line, then comma-separated records of six numeric
// fields (posX, posY, posZ, halfSizeX, halfSizeY, halfSizeZ) giving
// each obstacle centre and half-extents in metres, north/east/up.
package colliders

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/flightgrid/internal/planning"
)

// Home is the geodetic anchor from the file's first line. The grid
// pipeline stores it for downstream consumers but never interprets it.
type Home struct {
	Lat0 float64 `json:"lat0"`
	Lon0 float64 `json:"lon0"`
}

// LoadFile reads a colliders file from disk.
func LoadFile(path string) (planning.ObstacleSet, Home, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Home{}, fmt.Errorf("open colliders file: %w", err)
	}
	defer f.Close()
	set, home, err := Load(f)
	if err != nil {
		return nil, Home{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, home, nil
}

// Load parses a colliders stream. The header line is required; the
// column-name line is skipped without interpretation.
func Load(r io.Reader) (planning.ObstacleSet, Home, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // first two lines are not data rows
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err != nil {
		return nil, Home{}, fmt.Errorf("read home line: %w", err)
	}
	home, err := parseHome(first)
	if err != nil {
		return nil, Home{}, err
	}

	// Column header line ("posX,posY,posZ,..."); contents ignored.
	if _, err := cr.Read(); err != nil {
		return nil, Home{}, fmt.Errorf("read column header: %w", err)
	}

	var set planning.ObstacleSet
	line := 2
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Home{}, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		obs, err := parseRecord(rec)
		if err != nil {
			return nil, Home{}, fmt.Errorf("line %d: %w", line, err)
		}
		if err := obs.Validate(); err != nil {
			return nil, Home{}, fmt.Errorf("line %d: %w", line, err)
		}
		set = append(set, obs)
	}

	if len(set) == 0 {
		return nil, Home{}, planning.ErrEmptyObstacleSet
	}
	return set, home, nil
}

// parseHome extracts lat0/lon0 from the metadata line. Fields arrive
// already comma-split, e.g. ["lat0 37.792480", " lon0 -122.397450"].
func parseHome(fields []string) (Home, error) {
	if len(fields) != 2 {
		return Home{}, &planning.InvalidInputError{
			Reason: fmt.Sprintf("home line has %d fields, want 2", len(fields)),
		}
	}
	lat, err := parseLabelledFloat(fields[0], "lat0")
	if err != nil {
		return Home{}, err
	}
	lon, err := parseLabelledFloat(fields[1], "lon0")
	if err != nil {
		return Home{}, err
	}
	return Home{Lat0: lat, Lon0: lon}, nil
}

func parseLabelledFloat(field, label string) (float64, error) {
	parts := strings.Fields(strings.TrimSpace(field))
	if len(parts) != 2 || parts[0] != label {
		return 0, &planning.InvalidInputError{
			Reason: fmt.Sprintf("malformed %s field %q", label, field),
		}
	}
	v, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, &planning.InvalidInputError{
			Reason: fmt.Sprintf("parse %s: %v", label, err),
		}
	}
	return v, nil
}

func parseRecord(rec []string) (planning.Obstacle, error) {
	if len(rec) != 6 {
		return planning.Obstacle{}, &planning.InvalidInputError{
			Reason: fmt.Sprintf("record has %d fields, want 6", len(rec)),
		}
	}
	var vals [6]float64
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return planning.Obstacle{}, &planning.InvalidInputError{
				Reason: fmt.Sprintf("field %d: %v", i+1, err),
			}
		}
		vals[i] = v
	}
	return planning.Obstacle{
		North:     vals[0],
		East:      vals[1],
		Alt:       vals[2],
		HalfNorth: vals[3],
		HalfEast:  vals[4],
		HalfAlt:   vals[5],
	}, nil
}
