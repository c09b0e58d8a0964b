package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hallsdata/energy.report/internal/api"
	"github.com/hallsdata/energy.report/internal/config"
	"github.com/hallsdata/energy.report/internal/dataset"
	"github.com/hallsdata/energy.report/internal/db"
	"github.com/hallsdata/energy.report/internal/monitoring"
	"github.com/hallsdata/energy.report/internal/units"
	"github.com/hallsdata/energy.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dataDir    = flag.String("data", "data", "Root of the consumption data tree")
	dbFile     = flag.String("db", "energy_runs.db", "SQLite file for run history")
	configPath = flag.String("config", "", "Optional tuning config JSON file")
	unitsFlag  = flag.String("units", units.KWH, "Energy units for API responses ("+units.GetValidUnitsString()+")")
	verbose    = flag.Bool("verbose", false, "Enable per-stage pipeline logging")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*unitsFlag) {
		log.Fatalf("invalid units %q, choose from %s", *unitsFlag, units.GetValidUnitsString())
	}
	monitoring.Verbose = *verbose

	if _, err := os.Stat(*dataDir); err != nil {
		log.Fatalf("data directory %q not available: %v", *dataDir, err)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		log.Printf("loaded tuning config from %s", *configPath)
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := dataset.NewLoader(*dataDir)
	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(api.NewServer(loader, database, tuning, *unitsFlag).ServeMux()),
	}

	go func() {
		log.Printf("energy analysis server %s listening on %s (data=%s)", version.Version, *listen, *dataDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Printf("Graceful shutdown complete")
}
