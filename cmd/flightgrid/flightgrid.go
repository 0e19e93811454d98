// Command flightgrid serves a 2D flight-space occupancy grid built
// from a colliders obstacle file: JSON and rendered views over HTTP,
// rebuilds at new altitude/margin, and a persisted run history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/flightgrid/internal/api"
	"github.com/banshee-data/flightgrid/internal/colliders"
	"github.com/banshee-data/flightgrid/internal/db"
	"github.com/banshee-data/flightgrid/internal/units"
	"github.com/banshee-data/flightgrid/internal/version"
)

var (
	listen         = flag.String("listen", ":8080", "Listen address")
	collidersPath  = flag.String("colliders", "colliders.csv", "Path to the colliders obstacle file")
	dbFile         = flag.String("db", "flightgrid.db", "Path to the sqlite database (empty disables run persistence)")
	migrationsDir  = flag.String("migrations", "internal/db/migrations", "Path to schema migrations")
	droneAltitude  = flag.Float64("altitude", 5, "Flight altitude for the initial grid build")
	safetyDistance = flag.Float64("margin", 3, "Safety margin added around every obstacle")
	unitFlag       = flag.String("units", units.Metres, "Distance units for API input/output (m or ft)")
)

func main() {
	// The migrate subcommand manages schema explicitly and skips the
	// server entirely.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrateCommand(os.Args[2:])
		return
	}

	flag.Parse()

	log.Printf("flightgrid %s (%s)", version.Version, version.GitSHA)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*unitFlag) {
		log.Fatalf("Invalid units %q (valid: %s)", *unitFlag, units.ValidUnitsString())
	}

	obstacles, home, err := colliders.LoadFile(*collidersPath)
	if err != nil {
		log.Fatalf("Failed to load colliders: %v", err)
	}
	log.Printf("loaded %d obstacles from %s (home lat0=%.6f lon0=%.6f)",
		len(obstacles), *collidersPath, home.Lat0, home.Lon0)

	var database *db.DB
	if *dbFile != "" {
		database, err = db.NewDB(*dbFile, *migrationsDir)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
	}

	altitude := units.ToMetres(*droneAltitude, *unitFlag)
	margin := units.ToMetres(*safetyDistance, *unitFlag)

	server, err := api.NewServer(obstacles, home, *collidersPath, altitude, margin, *unitFlag, database)
	if err != nil {
		log.Fatalf("Failed to build initial grid: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		if database != nil {
			database.AttachAdminRoutes(mux)
		}
		mux.Handle("/api/", http.StripPrefix("/api", server.ServeMux()))

		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// runMigrateCommand handles 'flightgrid migrate <action>' without
// starting the server.
func runMigrateCommand(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "flightgrid.db", "Path to the sqlite database")
	dir := fs.String("migrations", "internal/db/migrations", "Path to schema migrations")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: flightgrid migrate [flags] up|down|status|force <version>")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	database, err := db.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action := fs.Arg(0); action {
	case "up":
		if err := database.MigrateUp(*dir); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Print("migrations applied")
	case "down":
		if err := database.MigrateDown(*dir); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Print("rolled back one migration")
	case "status":
		version, dirty, err := database.MigrateVersion(*dir)
		if err != nil {
			log.Fatalf("migrate status: %v", err)
		}
		log.Printf("schema version %d (dirty=%v)", version, dirty)
	case "force":
		if fs.NArg() < 2 {
			log.Fatal("Usage: flightgrid migrate force <version>")
		}
		var version int
		if _, err := fmt.Sscanf(fs.Arg(1), "%d", &version); err != nil {
			log.Fatalf("invalid version %q", fs.Arg(1))
		}
		if err := database.MigrateForce(*dir, version); err != nil {
			log.Fatalf("migrate force: %v", err)
		}
		log.Printf("forced schema version to %d", version)
	default:
		log.Fatalf("unknown migrate action %q", action)
	}
}
