// Command margin-sweep rebuilds the occupancy grid across a range of
// safety margins (and optionally several altitudes) and reports the
// blocked-cell fraction for each combination. Useful for picking a
// margin that clears a route without walling off the whole map, and as
// a sanity check that inflation only ever grows the blocked set.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/flightgrid/internal/colliders"
	"github.com/banshee-data/flightgrid/internal/planning"
)

var (
	collidersPath = flag.String("colliders", "colliders.csv", "Path to the colliders obstacle file")
	marginMin     = flag.Float64("margin-min", 0, "Sweep start margin (metres)")
	marginMax     = flag.Float64("margin-max", 10, "Sweep end margin (metres)")
	marginStep    = flag.Float64("margin-step", 1, "Sweep step (metres)")
	altitudesFlag = flag.String("altitudes", "5", "Comma-separated flight altitudes (metres)")
	output        = flag.String("out", "margin-sweep.csv", "Output CSV path")
)

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	flag.Parse()

	altitudes, err := parseCSVFloatSlice(*altitudesFlag)
	if err != nil || len(altitudes) == 0 {
		log.Fatalf("Invalid -altitudes: %v", err)
	}
	if *marginStep <= 0 || *marginMax < *marginMin {
		log.Fatal("Invalid margin range")
	}

	obstacles, _, err := colliders.LoadFile(*collidersPath)
	if err != nil {
		log.Fatalf("Failed to load colliders: %v", err)
	}
	log.Printf("loaded %d obstacles", len(obstacles))

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"margin", "altitude", "rows", "cols", "blocked_cells", "blocked_fraction"})

	for margin := *marginMin; margin <= *marginMax+1e-9; margin += *marginStep {
		// Blocked fraction per altitude at this margin.
		fractions := make([]float64, 0, len(altitudes))
		for _, altitude := range altitudes {
			g, _, err := planning.Build(obstacles, altitude, margin)
			if err != nil {
				log.Fatalf("Failed to build grid (margin=%g, altitude=%g): %v", margin, altitude, err)
			}
			fraction := float64(g.BlockedCount()) / float64(g.Rows()*g.Cols())
			fractions = append(fractions, fraction)

			w.Write([]string{
				fmt.Sprintf("%g", margin),
				fmt.Sprintf("%g", altitude),
				strconv.Itoa(g.Rows()),
				strconv.Itoa(g.Cols()),
				strconv.Itoa(g.BlockedCount()),
				fmt.Sprintf("%.6f", fraction),
			})
		}

		mean := stat.Mean(fractions, nil)
		sd := stat.StdDev(fractions, nil)
		if len(fractions) < 2 {
			sd = 0
		}
		log.Printf("margin %5.2f: blocked fraction min=%.4f max=%.4f mean=%.4f stddev=%.4f",
			margin, floats.Min(fractions), floats.Max(fractions), mean, sd)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("wrote sweep results to %s", *output)
}
