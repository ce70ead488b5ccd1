// Package sampler measures the visible picture area of a video at evenly
// spaced points and collects the resulting aspect ratios into a histogram.
package sampler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"sync"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
)

// Sampler produces the aspect ratio histogram for one video file.
type Sampler interface {
	Sample(ctx context.Context, filePath string) (*aspectratio.Histogram, error)
}

type Options struct {
	// Samples is the number of timestamps probed across the video.
	Samples int
	// Frames is how many frames cropdetect looks at per timestamp.
	Frames int
	// Workers bounds the number of concurrent ffmpeg processes.
	Workers int
	// CropLimit is cropdetect's black threshold (0-255).
	CropLimit int
	// CropRound is cropdetect's dimension rounding.
	CropRound int
}

func DefaultOptions() Options {
	return Options{
		Samples:   10,
		Frames:    5,
		Workers:   4,
		CropLimit: 24,
		CropRound: 2,
	}
}

func normalizeOptions(o Options) Options {
	d := DefaultOptions()
	if o.Samples <= 0 {
		o.Samples = d.Samples
	}
	if o.Frames <= 0 {
		o.Frames = d.Frames
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.CropLimit <= 0 {
		o.CropLimit = d.CropLimit
	}
	if o.CropRound <= 0 {
		o.CropRound = d.CropRound
	}
	return o
}

type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpeg samples videos with ffprobe and ffmpeg's cropdetect filter.
type FFmpeg struct {
	FFprobe string // defaults to "ffprobe"
	FFmpeg  string // defaults to "ffmpeg"
	Options Options
	Logger  *slog.Logger

	runner commandRunner
}

func NewFFmpeg(opts Options, logger *slog.Logger) *FFmpeg {
	return &FFmpeg{Options: normalizeOptions(opts), Logger: logger}
}

func (f *FFmpeg) ffprobePath() string {
	if f.FFprobe != "" {
		return f.FFprobe
	}
	return "ffprobe"
}

func (f *FFmpeg) ffmpegPath() string {
	if f.FFmpeg != "" {
		return f.FFmpeg
	}
	return "ffmpeg"
}

func (f *FFmpeg) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *FFmpeg) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if f.runner != nil {
		return f.runner(ctx, name, args...)
	}
	return execRunner(ctx, name, args...)
}

type sampleResult struct {
	ratio float64
	ok    bool
	err   error
}

// Sample probes filePath and runs cropdetect at each sample timestamp.
// Timestamps where no crop could be detected count as misses. It only fails
// outright when the probe fails, the context ends, or every cropdetect run
// errors.
func (f *FFmpeg) Sample(ctx context.Context, filePath string) (*aspectratio.Histogram, error) {
	opts := normalizeOptions(f.Options)

	info, err := f.Probe(ctx, filePath)
	if err != nil {
		return nil, err
	}

	timestamps := SampleTimestamps(info.Duration, opts.Samples)
	results := make([]sampleResult, len(timestamps))

	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup
	for i, ts := range timestamps {
		wg.Add(1)
		go func(i int, ts float64) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()
			results[i] = f.sampleAt(ctx, filePath, ts, info, opts)
		}(i, ts)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := aspectratio.NewHistogram()
	failed := 0
	var firstErr error
	for i, r := range results {
		switch {
		case r.err != nil:
			failed++
			if firstErr == nil {
				firstErr = r.err
			}
			f.logger().Warn("cropdetect failed", "path", filePath, "ts", timestamps[i], "err", r.err)
			h.AddMiss()
		case !r.ok:
			h.AddMiss()
		default:
			if err := h.Add(r.ratio); err != nil {
				h.AddMiss()
			}
		}
	}
	if failed == len(results) {
		return nil, fmt.Errorf("all %d cropdetect samples failed: %w", failed, firstErr)
	}

	f.logger().Debug("sampled video", "path", filePath, "samples", h.TotalSamples(), "ratios", h.Len())
	return h, nil
}

func (f *FFmpeg) sampleAt(ctx context.Context, filePath string, ts float64, info VideoInfo, opts Options) sampleResult {
	_, stderr, err := f.run(ctx, f.ffmpegPath(),
		"-hide_banner",
		"-nostats",
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", filePath,
		"-frames:v", strconv.Itoa(opts.Frames),
		"-vf", fmt.Sprintf("cropdetect=%d:%d:0", opts.CropLimit, opts.CropRound),
		"-an", "-sn",
		"-f", "null",
		"-",
	)
	if err != nil {
		return sampleResult{err: fmt.Errorf("ffmpeg cropdetect at %.3fs: %w", ts, err)}
	}

	w, h, ok := LastCrop(stderr)
	if !ok || w <= 0 || h <= 0 {
		return sampleResult{}
	}
	ratio := displayRatio(w, h, info.SARNum, info.SARDen)
	return sampleResult{ratio: ratio, ok: ratio > 0}
}

var cropPattern = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// LastCrop returns the width and height of the final "crop=W:H:X:Y" line in
// ffmpeg cropdetect output. cropdetect converges over frames, so the last
// suggestion is the most settled one.
func LastCrop(output []byte) (width, height int, ok bool) {
	matches := cropPattern.FindAllSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, 0, false
	}
	return ParseCropFilter(string(matches[len(matches)-1][0]))
}

// SampleTimestamps spreads n sample points evenly across the video,
// avoiding the very start and end where logos and credits sit. An unknown
// duration yields a single sample at zero.
func SampleTimestamps(duration float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = duration * float64(i+1) / float64(n+1)
	}
	return out
}
