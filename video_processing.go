package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
	"github.com/bootdotdev/tubely-aspect/internal/database"
)

// analyzeVideo samples the file at path and classifies it with cfg.
func (cfg *apiConfig) analyzeVideo(ctx context.Context, path string) (database.AspectRatio, error) {
	h, err := cfg.sampler.Sample(ctx, path)
	if err != nil {
		return database.AspectRatio{}, fmt.Errorf("sample video: %w", err)
	}
	return analyzeHistogram(h, cfg.arConfig)
}

// analyzeHistogram runs the classifier and packs the result together with
// the histogram it came from.
func analyzeHistogram(h *aspectratio.Histogram, arConfig aspectratio.Config) (database.AspectRatio, error) {
	res, err := aspectratio.Analyze(h, arConfig)
	if err != nil {
		return database.AspectRatio{}, err
	}
	histogram, err := json.Marshal(h)
	if err != nil {
		return database.AspectRatio{}, err
	}
	return database.AspectRatio{
		Primary:      res.PrimaryCanonical,
		Secondary:    res.SecondaryCanonical,
		PrimaryRaw:   res.PrimaryRaw,
		SecondaryRaw: res.SecondaryRaw,
		TotalSamples: res.TotalSamples,
		Histogram:    histogram,
	}, nil
}

// aspectPrefix names the S3 "directory" a video is filed under: its canonical
// primary ratio ("2.40"), or "other" when no ratio was detected.
func aspectPrefix(ar database.AspectRatio) string {
	if ar.Primary == 0 {
		return "other"
	}
	return strconv.FormatFloat(ar.Primary, 'f', 2, 64)
}

// videoObjectKey builds "<prefix>/<random hex>.mp4".
func videoObjectKey(ar database.AspectRatio) (string, error) {
	var rnd [32]byte
	if _, err := rand.Read(rnd[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s.mp4", aspectPrefix(ar), hex.EncodeToString(rnd[:])), nil
}

// processVideoForFastStart remuxes filePath with the moov atom up front so
// playback can start before the download finishes. It returns the path of
// the new file.
func processVideoForFastStart(ctx context.Context, filePath string) (string, error) {
	outPath := filePath + ".processing"

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-y",
		"-i", filePath,
		"-c", "copy",
		"-movflags", "faststart",
		"-f", "mp4",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg faststart failed: %w: %s", err, stderr.String())
	}
	return outPath, nil
}
