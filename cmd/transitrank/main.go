package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"transitrank/internal/batch"
	"transitrank/internal/config"
	"transitrank/internal/gtfs"
	"transitrank/internal/listing"
	"transitrank/internal/mobility"
	"transitrank/internal/storage"
	"transitrank/internal/transit"
)

const userAgent = "transitrank/1.0 (housing accessibility analysis)"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	// CLI flags
	configFile := flag.String("config", "", "Optional YAML config file")
	noCache := flag.Bool("no-cache", false, "Recompute every row, skipping the result cache")
	flag.StringVar(&cfg.GTFSDir, "gtfs-dir", cfg.GTFSDir, "Directory with GTFS text files")
	flag.StringVar(&cfg.ListingsPath, "listings", cfg.ListingsPath, "Input listings CSV")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Output CSV path")
	flag.Float64Var(&cfg.DestinationLat, "dest-lat", cfg.DestinationLat, "Destination latitude")
	flag.Float64Var(&cfg.DestinationLon, "dest-lon", cfg.DestinationLon, "Destination longitude")
	flag.Parse()

	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			logger.Error("failed to load config file", "path", *configFile, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Context with cancellation so SIGINT stops between rows
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("interrupt received, finishing current row")
		cancel()
	}()

	listings, err := listing.ReadFile(cfg.ListingsPath)
	if err != nil {
		logger.Error("failed to read listings", "error", err)
		os.Exit(1)
	}
	logger.Info("listings loaded", "path", cfg.ListingsPath, "count", len(listings))

	var cache batch.ResultCache
	if !*noCache {
		db, err := storage.Open(cfg.CachePath, logger)
		if err != nil {
			logger.Error("failed to open cache database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		cache = db
	}

	store := gtfs.NewStore(cfg.GTFSDir, cfg.Bounds, cfg.StopTimesRowLimit, logger)
	engine := transit.NewEngine(store, cfg, logger)

	overpass := mobility.NewOverpassClient(cfg.OverpassURL, userAgent, cfg.OverpassDelay())
	scorer := mobility.NewScorer(overpass, overpass, cfg.POIRadiusMeters, cfg.BikeRadiusMeters, logger)

	orch := batch.New(engine, scorer, cache, cfg, logger)

	rows, err := orch.Run(ctx, listings, func(processed, total, cacheHits, newComputations int) {
		if processed%25 == 0 || processed == total {
			logger.Info("batch progress",
				"processed", processed, "total", total,
				"cached", cacheHits, "computed", newComputations)
		}
	})
	if err != nil {
		// Partial rows are still written so an interrupted run is resumable.
		logger.Warn("batch stopped early", "error", err)
	}

	if err := listing.WriteFile(cfg.OutputPath, rows); err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}
	logger.Info("output written", "path", cfg.OutputPath, "rows", len(rows))
}
