package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/regionfact/regionfact/internal/chart"
	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/obs"
	"github.com/regionfact/regionfact/internal/pipeline"
	"github.com/regionfact/regionfact/internal/report"
	"github.com/regionfact/regionfact/internal/snapshot"
)

const (
	defaultDataPath     = ".tmp/regionfact/observations.csv"
	defaultSnapshotPath = ".tmp/regionfact/snapshot.duckdb"
	defaultChartPath    = ".tmp/regionfact/comparison.png"

	dataPathEnvVar = "REGIONFACT_DATA"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	dataFlag := flag.String("data", defaultDataPath, "path to the cached observations CSV (or set REGIONFACT_DATA env var)")
	configFlag := flag.String("config", "", "path to a YAML run config (empty = built-in defaults)")
	snapshotFlag := flag.String("snapshot", defaultSnapshotPath, "path for the derived-result snapshot database (empty = skip)")
	chartFlag := flag.String("chart", defaultChartPath, "path for the comparison chart PNG (empty = skip)")
	flag.Parse()

	if envData := os.Getenv(dataPathEnvVar); envData != "" {
		*dataFlag = envData
	}

	log := newLogger(*verboseFlag)
	ctx := context.Background()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}

	observations, err := obs.LoadCSV(log, *dataFlag)
	if err != nil {
		return err
	}
	log.Debug("loaded observations", "count", len(observations), "path", *dataFlag)

	res, err := pipeline.Run(log, observations, cfg)
	if err != nil {
		return err
	}

	report.Print(os.Stdout, res, cfg)

	if *snapshotFlag != "" {
		store, err := snapshot.Open(log, *snapshotFlag, nil)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Write(ctx, res, cfg); err != nil {
			return err
		}
		log.Info("wrote snapshot", "path", *snapshotFlag)
	}

	if *chartFlag != "" {
		if err := chart.Render(res, cfg, *chartFlag); err != nil {
			return err
		}
		log.Info("wrote chart", "path", *chartFlag)
	}

	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
