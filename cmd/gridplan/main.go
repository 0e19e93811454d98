// Command gridplan builds a flight-space occupancy grid once from a
// colliders file and writes it to disk as CSV, PGM, and a PNG heatmap.
// With -db set, the run is also recorded for later retrieval.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/flightgrid/internal/colliders"
	"github.com/banshee-data/flightgrid/internal/db"
	"github.com/banshee-data/flightgrid/internal/gridviz"
	"github.com/banshee-data/flightgrid/internal/planning"
)

var (
	collidersPath  = flag.String("colliders", "colliders.csv", "Path to the colliders obstacle file")
	outDir         = flag.String("out", "gridplan-out", "Output directory")
	dbFile         = flag.String("db", "", "Record the run in this sqlite database (optional)")
	migrationsDir  = flag.String("migrations", "internal/db/migrations", "Path to schema migrations")
	droneAltitude  = flag.Float64("altitude", 5, "Flight altitude in metres")
	safetyDistance = flag.Float64("margin", 3, "Safety margin in metres")
)

func main() {
	flag.Parse()

	obstacles, home, err := colliders.LoadFile(*collidersPath)
	if err != nil {
		log.Fatalf("Failed to load colliders: %v", err)
	}
	log.Printf("loaded %d obstacles (home lat0=%.6f lon0=%.6f)", len(obstacles), home.Lat0, home.Lon0)

	g, origin, err := planning.Build(obstacles, *droneAltitude, *safetyDistance)
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	log.Printf("built %dx%d grid, origin (%.0f, %.0f), %d blocked cells",
		g.Rows(), g.Cols(), origin.NorthMin, origin.EastMin, g.BlockedCount())

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	if err := writeCSV(filepath.Join(*outDir, "grid.csv"), g); err != nil {
		log.Fatalf("Failed to write grid CSV: %v", err)
	}
	if err := writePGM(filepath.Join(*outDir, "grid.pgm"), g); err != nil {
		log.Fatalf("Failed to write grid PGM: %v", err)
	}
	if err := gridviz.SavePlot(g, origin, *droneAltitude, *safetyDistance, filepath.Join(*outDir, "grid.png")); err != nil {
		log.Fatalf("Failed to write grid plot: %v", err)
	}
	log.Printf("wrote grid.csv, grid.pgm, grid.png to %s", *outDir)

	if *dbFile == "" {
		return
	}

	database, err := db.NewDB(*dbFile, *migrationsDir)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	run := &db.GridRun{
		Source:   *collidersPath,
		Altitude: *droneAltitude,
		Margin:   *safetyDistance,
		NorthMin: origin.NorthMin,
		EastMin:  origin.EastMin,
	}
	if err := database.RecordGridRun(run, g); err != nil {
		log.Fatalf("Failed to record grid run: %v", err)
	}
	log.Printf("recorded run %s", run.RunID)
}

func writeCSV(path string, g *planning.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := make([]string, g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			row[c] = fmt.Sprintf("%d", g.At(r, c))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePGM(path string, g *planning.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gridviz.WritePGM(f, g)
}
