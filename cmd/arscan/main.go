// Command arscan walks a directory of videos, measures each file's aspect
// ratios and prints one JSON line per file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bootdotdev/tubely-aspect/internal/database"
	"github.com/bootdotdev/tubely-aspect/internal/library"
	"github.com/bootdotdev/tubely-aspect/internal/sampler"
	"github.com/bootdotdev/tubely-aspect/internal/settings"
)

type line struct {
	library.Entry
	PrimaryLabel   string `json:"primary_label,omitempty"`
	SecondaryLabel string `json:"secondary_label,omitempty"`
	Error          string `json:"error,omitempty"`
}

func main() {
	root := flag.String("root", "", "directory to scan (required)")
	pattern := flag.String("pattern", library.DefaultPattern, "doublestar glob relative to -root")
	exclude := flag.String("exclude", "", "comma separated globs to skip")
	dsn := flag.String("db", "", "sqlite path or postgres:// DSN for incremental scans")
	configPath := flag.String("config", "", "yaml aspect ratio settings")
	workers := flag.Int("workers", 2, "files analysed concurrently")
	samples := flag.Int("samples", 0, "frames sampled per file (0 keeps the default)")
	report := flag.String("report", "", "write an xlsx report to this path")
	force := flag.Bool("force", false, "re-analyse files whose fingerprint is unchanged")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load(".env")

	if *root == "" {
		fmt.Fprintln(os.Stderr, "arscan: -root is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*root, *pattern, *exclude, *dsn, *configPath, *workers, *samples, *report, *force, logger); err != nil {
		logger.Error("scan failed", "err", err)
		os.Exit(1)
	}
}

func run(root, pattern, exclude, dsn, configPath string, workers, samples int, report string, force bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if configPath == "" {
		configPath = os.Getenv("AR_CONFIG_PATH")
	}
	arConfig, err := settings.Load(configPath)
	if err != nil {
		return err
	}
	if arConfig, err = settings.FromEnv(arConfig, os.Getenv); err != nil {
		return err
	}

	var excludes []string
	for _, e := range strings.Split(exclude, ",") {
		if e = strings.TrimSpace(e); e != "" {
			excludes = append(excludes, e)
		}
	}
	files, err := library.Discover(root, pattern, excludes)
	if err != nil {
		return err
	}
	logger.Info("discovered files", "root", root, "count", len(files))

	opts := sampler.DefaultOptions()
	if samples > 0 {
		opts.Samples = samples
	}
	scanner := &library.Scanner{
		Sampler: sampler.NewFFmpeg(opts, logger),
		Config:  arConfig,
		Workers: workers,
		Force:   force,
		Logger:  logger,
	}
	if dsn != "" {
		db, err := database.NewClient(dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		scanner.Store = db
	}

	entries, scanErr := scanner.Scan(ctx, files)

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	done := entries[:0]
	for _, e := range entries {
		if e.Path == "" {
			continue // never reached before cancellation
		}
		done = append(done, e)
		l := line{
			Entry:          e,
			PrimaryLabel:   e.Result.PrimaryLabel(),
			SecondaryLabel: e.Result.SecondaryLabel(),
		}
		if e.Err != nil {
			l.Error = e.Err.Error()
			failed++
		}
		if err := enc.Encode(l); err != nil {
			return err
		}
	}

	if report != "" {
		if err := library.WriteReport(report, done); err != nil {
			return err
		}
		logger.Info("wrote report", "path", report)
	}
	if scanErr != nil {
		return scanErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
