package sampler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

const probeJSON = `{
	"streams": [{"width": 1920, "height": 1080, "sample_aspect_ratio": "1:1"}],
	"format": {"duration": "110.000000"}
}`

func cropOutput(lines ...string) []byte {
	var b strings.Builder
	b.WriteString("Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "[Parsed_cropdetect_0 @ 0x5581] x1:0 x2:1919 y1:138 y2:941 w:1920 h:800 x:0 y:140 pts:%d t:0.04 %s\n", i, l)
	}
	return []byte(b.String())
}

// fakeFFmpeg answers ffprobe with probe and ffmpeg by timestamp index.
type fakeFFmpeg struct {
	mu    sync.Mutex
	probe []byte
	crops map[string][]byte
	fail  map[string]bool
	calls int
}

func (f *fakeFFmpeg) run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if name == "ffprobe" {
		return f.probe, nil, nil
	}
	var ts string
	for i, a := range args {
		if a == "-ss" {
			ts = args[i+1]
		}
	}
	if f.fail[ts] {
		return nil, []byte("seek failed"), errors.New("exit status 1")
	}
	return nil, f.crops[ts], nil
}

func TestSample(t *testing.T) {
	fake := &fakeFFmpeg{
		probe: []byte(probeJSON),
		crops: map[string][]byte{
			"10.000":  cropOutput("crop=1920:1080:0:0", "crop=1920:800:0:140"),
			"20.000":  cropOutput("crop=1920:800:0:140"),
			"30.000":  cropOutput("crop=1920:800:0:140"),
			"40.000":  cropOutput("crop=1920:1040:0:20"),
			"50.000":  cropOutput("crop=1920:1080:0:0"),
			"60.000":  []byte("no crop here"),
			"70.000":  cropOutput("crop=1920:800:0:140"),
			"80.000":  cropOutput("crop=1920:799:0:140"),
			"90.000":  cropOutput("crop=1920:800:0:140"),
			"100.000": cropOutput("crop=1920:800:0:140"),
		},
		fail: map[string]bool{"50.000": true},
	}
	s := NewFFmpeg(Options{Samples: 10, Workers: 3}, nil)
	s.runner = fake.run

	h, err := s.Sample(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if h.TotalSamples() != 10 {
		t.Errorf("TotalSamples() = %d; want 10", h.TotalSamples())
	}
	buckets := h.Buckets()
	if buckets[2.40] != 7 {
		t.Errorf("bucket 2.40 = %d; want 7 (buckets %v)", buckets[2.40], buckets)
	}
	if buckets[1.85] != 1 {
		t.Errorf("bucket 1.85 = %d; want 1 (buckets %v)", buckets[1.85], buckets)
	}
	if fake.calls != 11 {
		t.Errorf("runner called %d times; want 11", fake.calls)
	}
}

func TestSampleAnamorphic(t *testing.T) {
	fake := &fakeFFmpeg{
		probe: []byte(`{"streams":[{"width":720,"height":576,"sample_aspect_ratio":"64:45"}],"format":{"duration":"N/A"}}`),
		crops: map[string][]byte{"0.000": cropOutput("crop=720:576:0:0")},
	}
	s := NewFFmpeg(Options{Samples: 4}, nil)
	s.runner = fake.run

	h, err := s.Sample(context.Background(), "pal.mpg")
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if b := h.Buckets(); b[1.78] != 1 || h.TotalSamples() != 1 {
		t.Errorf("Buckets() = %v total %d; want map[1.78:1] total 1", b, h.TotalSamples())
	}
}

func TestSampleAllFailed(t *testing.T) {
	fake := &fakeFFmpeg{
		probe: []byte(`{"streams":[{"width":1920,"height":1080}],"format":{"duration":"3"}}`),
		fail:  map[string]bool{"1.000": true, "2.000": true},
	}
	s := NewFFmpeg(Options{Samples: 2}, nil)
	s.runner = fake.run

	if _, err := s.Sample(context.Background(), "broken.mp4"); err == nil {
		t.Error("Sample returned nil error when every cropdetect run failed")
	}
}

func TestSampleNoVideoStream(t *testing.T) {
	fake := &fakeFFmpeg{probe: []byte(`{"streams":[{"width":0,"height":0}],"format":{}}`)}
	s := NewFFmpeg(Options{}, nil)
	s.runner = fake.run

	if _, err := s.Sample(context.Background(), "audio.m4a"); !errors.Is(err, ErrNoVideoStream) {
		t.Errorf("err = %v; want ErrNoVideoStream", err)
	}
}

func TestSampleCancelled(t *testing.T) {
	fake := &fakeFFmpeg{probe: []byte(probeJSON)}
	s := NewFFmpeg(Options{}, nil)
	s.runner = fake.run

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Sample(ctx, "in.mp4"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v; want context.Canceled", err)
	}
}

func TestSampleTimestamps(t *testing.T) {
	got := SampleTimestamps(100, 4)
	want := []float64{20, 40, 60, 80}
	if len(got) != len(want) {
		t.Fatalf("SampleTimestamps(100, 4) = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SampleTimestamps(100, 4)[%d] = %v; want %v", i, got[i], want[i])
		}
	}
	if got := SampleTimestamps(0, 5); len(got) != 1 || got[0] != 0 {
		t.Errorf("SampleTimestamps(0, 5) = %v; want [0]", got)
	}
	if got := SampleTimestamps(10, 0); got != nil {
		t.Errorf("SampleTimestamps(10, 0) = %v; want nil", got)
	}
}
