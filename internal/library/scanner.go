package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
	"github.com/bootdotdev/tubely-aspect/internal/database"
	"github.com/bootdotdev/tubely-aspect/internal/sampler"
)

// Store persists per-file scan results.
type Store interface {
	GetLibraryFile(path string) (*database.LibraryFile, error)
	UpsertLibraryFile(f database.LibraryFile) error
}

// Entry is the outcome for one file.
type Entry struct {
	Path        string             `json:"path"`
	Fingerprint string             `json:"fingerprint"`
	Size        int64              `json:"size"`
	Result      aspectratio.Result `json:"result"`
	Skipped     bool               `json:"skipped,omitempty"`
	Err         error              `json:"-"`
}

type Scanner struct {
	Sampler sampler.Sampler
	Config  aspectratio.Config
	Store   Store // optional
	Workers int
	// Force re-analyses files whose fingerprint is unchanged.
	Force   bool
	HashKey []byte
	Logger  *slog.Logger
}

// Scan analyses files on a bounded worker pool and returns one entry per
// file in input order. Per-file failures are reported on the entry; Scan
// itself only fails for an invalid config or a cancelled context.
func (s *Scanner) Scan(ctx context.Context, files []string) ([]Entry, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	workers := s.Workers
	if workers <= 0 {
		workers = 2
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries := make([]Entry, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i] = s.scanFile(ctx, files[i])
				if e := entries[i]; e.Err != nil {
					logger.Error("scan failed", "path", e.Path, "err", e.Err)
				} else if !e.Skipped {
					logger.Info("scanned", "path", e.Path,
						"primary", e.Result.PrimaryCanonical, "secondary", e.Result.SecondaryCanonical,
						"samples", e.Result.TotalSamples)
				}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string) Entry {
	entry := Entry{Path: path}

	key := s.HashKey
	if key == nil {
		key = DefaultHashKey
	}
	fp, size, err := Fingerprint(path, key)
	if err != nil {
		entry.Err = fmt.Errorf("fingerprint: %w", err)
		return entry
	}
	entry.Fingerprint, entry.Size = fp, size

	if s.Store != nil && !s.Force {
		prev, err := s.Store.GetLibraryFile(path)
		if err != nil {
			entry.Err = fmt.Errorf("load previous result: %w", err)
			return entry
		}
		if prev != nil && prev.Fingerprint == fp && prev.Error == "" {
			entry.Skipped = true
			entry.Result = aspectratio.Result{
				PrimaryRaw:         prev.AspectRatio.PrimaryRaw,
				SecondaryRaw:       prev.AspectRatio.SecondaryRaw,
				PrimaryCanonical:   prev.AspectRatio.Primary,
				SecondaryCanonical: prev.AspectRatio.Secondary,
				TotalSamples:       prev.AspectRatio.TotalSamples,
			}
			return entry
		}
	}

	h, err := s.Sampler.Sample(ctx, path)
	if err == nil {
		entry.Result, err = aspectratio.Analyze(h, s.Config)
	}
	if err != nil {
		entry.Err = err
	}

	if s.Store != nil && ctx.Err() == nil {
		rec := database.LibraryFile{
			Path:        path,
			Fingerprint: fp,
			Size:        size,
			AspectRatio: database.AspectRatio{
				Primary:      entry.Result.PrimaryCanonical,
				Secondary:    entry.Result.SecondaryCanonical,
				PrimaryRaw:   entry.Result.PrimaryRaw,
				SecondaryRaw: entry.Result.SecondaryRaw,
				TotalSamples: entry.Result.TotalSamples,
			},
			AnalyzedAt: time.Now().UTC(),
		}
		if entry.Err != nil {
			rec.Error = entry.Err.Error()
		}
		if err := s.Store.UpsertLibraryFile(rec); err != nil && entry.Err == nil {
			entry.Err = fmt.Errorf("store result: %w", err)
		}
	}
	return entry
}
