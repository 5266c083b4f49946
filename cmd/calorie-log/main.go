package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-calories/internal/importer"
	"ai-calories/internal/metrics"
	"ai-calories/internal/openfoodfacts"
	"ai-calories/internal/oracle"
	"ai-calories/internal/server"
	"ai-calories/internal/storage"
	"ai-calories/internal/tracker"
)

const appVersion = "1.0.0"

var (
	_ tracker.Store             = (*storage.SQLiteStorage)(nil)
	_ tracker.ItemExtractor     = (*oracle.SamplingClient)(nil)
	_ tracker.Estimator         = (*oracle.SamplingClient)(nil)
	_ tracker.OverrideExtractor = (*oracle.SamplingClient)(nil)
	_ tracker.ExternalLookup    = (*openfoodfacts.Client)(nil)
	_ tracker.Recorder          = (*metrics.Metrics)(nil)
	_ importer.Translator       = (*oracle.SamplingClient)(nil)
	_ server.Service            = (*tracker.Tracker)(nil)
)

var (
	port     = flag.Int("port", 8011, "Port for HTTP transport")
	host     = flag.String("host", "0.0.0.0", "Host address")
	address  = flag.String("address", "", "Address (alias for host)")
	dbPath   = flag.String("db-path", "data/nutrition.db", "Database path")
	seedPath = flag.String("seed", "", "Import a YAML menu seed into the database and exit")
	noOFF    = flag.Bool("no-off", false, "Disable Open Food Facts lookups")
	version  = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("calorie-log version %s\n", appVersion)
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	stor, err := storage.NewSQLiteStorage(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer stor.Close()

	ai := oracle.NewSamplingClient(oracle.ConfigFromEnv())

	if *seedPath != "" {
		report, err := importer.New(stor, ai).ImportFile(context.Background(), *seedPath)
		if err != nil {
			log.Fatalf("Seed import failed: %v", err)
		}
		log.Printf("Imported %d items (%d skipped) from %s", report.Imported, report.Skipped, *seedPath)
		return
	}

	var external tracker.ExternalLookup
	if !*noOFF {
		external = openfoodfacts.NewClient(openfoodfacts.ConfigFromEnv())
	}

	m := metrics.New()
	resolver := tracker.NewResolver(tracker.DefaultStrategies(stor, external, ai)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t, err := tracker.NewTracker(ctx, stor, resolver, ai, ai, tracker.WithRecorder(m))
	if err != nil {
		log.Fatalf("Failed to create tracker: %v", err)
	}
	log.Printf("Resolution chain: %v", resolver.Strategies())

	hostAddr := *host
	if *address != "" {
		hostAddr = *address
	}
	srv := server.NewCalorieLogServer(&server.Config{
		Host:    hostAddr,
		Port:    *port,
		Version: appVersion,
	}, t, m.Handler())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
