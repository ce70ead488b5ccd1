package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNoVideoStream = errors.New("ffprobe found no video stream")

type ffprobeStream struct {
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	SampleAspectRatio string `json:"sample_aspect_ratio"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeResult struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// VideoInfo is what the sampler needs to know about a file before seeking
// into it.
type VideoInfo struct {
	Width    int
	Height   int
	SARNum   int
	SARDen   int
	Duration float64 // seconds
}

// DisplayRatio is the full-frame display aspect ratio with the sample aspect
// ratio applied.
func (v VideoInfo) DisplayRatio() float64 {
	return displayRatio(v.Width, v.Height, v.SARNum, v.SARDen)
}

// Probe runs ffprobe on the first video stream of filePath.
func (f *FFmpeg) Probe(ctx context.Context, filePath string) (VideoInfo, error) {
	stdout, stderr, err := f.run(ctx, f.ffprobePath(),
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,sample_aspect_ratio:format=duration",
		"-print_format", "json",
		filePath,
	)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return parseProbe(stdout)
}

func parseProbe(out []byte) (VideoInfo, error) {
	var result ffprobeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return VideoInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	// Prefer the first stream that has width and height > 0
	var stream *ffprobeStream
	for i := range result.Streams {
		if result.Streams[i].Width > 0 && result.Streams[i].Height > 0 {
			stream = &result.Streams[i]
			break
		}
	}
	if stream == nil {
		return VideoInfo{}, ErrNoVideoStream
	}

	num, den := ParseSampleAspectRatio(stream.SampleAspectRatio)
	info := VideoInfo{
		Width:  stream.Width,
		Height: stream.Height,
		SARNum: num,
		SARDen: den,
	}
	if result.Format.Duration != "" && result.Format.Duration != "N/A" {
		d, err := strconv.ParseFloat(result.Format.Duration, 64)
		if err != nil {
			return VideoInfo{}, fmt.Errorf("invalid duration %q: %w", result.Format.Duration, err)
		}
		info.Duration = d
	}
	return info, nil
}

// ParseSampleAspectRatio parses ffprobe's "num:den" sample aspect ratio.
// Missing, unknown ("N/A", "0:1") or malformed values mean square pixels.
func ParseSampleAspectRatio(s string) (num, den int) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 1, 1
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 1, 1
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d <= 0 {
		return 1, 1
	}
	return n, d
}

func displayRatio(width, height, sarNum, sarDen int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	if sarNum <= 0 || sarDen <= 0 {
		sarNum, sarDen = 1, 1
	}
	return float64(width) * float64(sarNum) / (float64(height) * float64(sarDen))
}
