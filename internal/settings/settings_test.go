package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, aspectratio.DefaultConfig()) {
		t.Errorf("Load(missing) = %+v; want defaults", cfg)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aspect_ratio.yml")
	doc := "canonical_ratios: [1.78, \"1.85:1\", 2.35, 2.40]\nround_up: true\nround_up_tolerance_delta_pct: 1.5\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := aspectratio.Config{
		CanonicalRatios:     []float64{1.78, 1.85, 2.35, 2.40},
		RoundUp:             true,
		RoundUpTolerancePct: 1.5,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load = %+v; want %+v", cfg, want)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"descending.yml": "canonical_ratios: [2.40, 1.78]\n",
		"empty.yml":      "canonical_ratios: []\n",
		"garbage.yml":    "canonical_ratios: [abc]\n",
		"broken.yml":     "round_up: [\n",
	}
	for name, doc := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("Load(%s) returned nil error", name)
		}
	}
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		EnvCanonicalRatios:  "1.78, 1.85,2.39:1",
		EnvRoundUp:          "true",
		EnvRoundUpTolerance: "3",
		EnvSecondaryShare:   "0.1",
	}
	cfg, err := FromEnv(aspectratio.DefaultConfig(), func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	want := aspectratio.Config{
		CanonicalRatios:     []float64{1.78, 1.85, 2.39},
		RoundUp:             true,
		RoundUpTolerancePct: 3,
		SecondaryMinShare:   0.1,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("FromEnv = %+v; want %+v", cfg, want)
	}

	env = map[string]string{EnvCanonicalRatios: ","}
	if _, err := FromEnv(aspectratio.DefaultConfig(), func(k string) string { return env[k] }); !errors.Is(err, aspectratio.ErrNoCanonicalRatios) {
		t.Errorf("FromEnv with empty list: err = %v; want ErrNoCanonicalRatios", err)
	}
	env = map[string]string{EnvRoundUp: "maybe"}
	if _, err := FromEnv(aspectratio.DefaultConfig(), func(k string) string { return env[k] }); err == nil {
		t.Error("FromEnv with bad bool returned nil error")
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.39", 2.39, false},
		{"2.39:1", 2.39, false},
		{"4:3", 4.0 / 3.0, false},
		{" 16 : 9 ", 16.0 / 9.0, false},
		{"16:0", 0, true},
		{"wide", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseRatio(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseRatio(%q) error = %v; wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRatio(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
