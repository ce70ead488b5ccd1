package aspectratio

import (
	"errors"
	"testing"
)

func TestAnalyze(t *testing.T) {
	h := histogramOf(t, map[float64]int{2.40: 4, 2.41: 1, 2.30: 3, 2.60: 2, 2.59: 1, 2.20: 1})
	h.AddMiss()

	tests := []struct {
		name          string
		cfg           Config
		wantPrimary   float64
		wantSecondary float64
	}{
		{
			name:          "nearest",
			cfg:           Config{CanonicalRatios: cinemaRatios},
			wantPrimary:   2.40,
			wantSecondary: 2.40,
		},
		{
			name:          "round up",
			cfg:           Config{CanonicalRatios: []float64{1.78, 2.40, 2.76}, RoundUp: true, RoundUpTolerancePct: 2},
			wantPrimary:   2.40,
			wantSecondary: 2.76,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Analyze(h, tc.cfg)
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}
			if got.PrimaryRaw != 2.40 || got.SecondaryRaw != 2.60 {
				t.Errorf("raw = (%v, %v); want (2.4, 2.6)", got.PrimaryRaw, got.SecondaryRaw)
			}
			if got.PrimaryCanonical != tc.wantPrimary {
				t.Errorf("PrimaryCanonical = %v; want %v", got.PrimaryCanonical, tc.wantPrimary)
			}
			if got.SecondaryCanonical != tc.wantSecondary {
				t.Errorf("SecondaryCanonical = %v; want %v", got.SecondaryCanonical, tc.wantSecondary)
			}
			if got.TotalSamples != 13 {
				t.Errorf("TotalSamples = %d; want 13", got.TotalSamples)
			}
		})
	}
}

func TestAnalyzeEmptyHistogram(t *testing.T) {
	got, err := Analyze(NewHistogram(), DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if got != (Result{}) {
		t.Errorf("Analyze(empty) = %+v; want zero result", got)
	}
	if got.HasSecondary() || got.PrimaryLabel() != "" {
		t.Errorf("empty result reports a ratio: %+v", got)
	}
}

func TestAnalyzeRejectsBadConfig(t *testing.T) {
	if _, err := Analyze(NewHistogram(), Config{}); !errors.Is(err, ErrNoCanonicalRatios) {
		t.Errorf("err = %v; want ErrNoCanonicalRatios", err)
	}
	if _, err := Analyze(NewHistogram(), Config{CanonicalRatios: []float64{2.40, 1.78}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v; want ErrInvalidConfig", err)
	}
}

func TestLabel(t *testing.T) {
	tests := map[float64]string{
		0:    "",
		2.4:  "2.40:1",
		1.85: "1.85:1",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Errorf("Label(%v) = %q; want %q", in, got, want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"default", DefaultConfig(), nil},
		{"empty", Config{}, ErrNoCanonicalRatios},
		{"duplicate", Config{CanonicalRatios: []float64{1.78, 1.78}}, ErrInvalidConfig},
		{"negative", Config{CanonicalRatios: []float64{-1, 1.78}}, ErrInvalidConfig},
		{"negative tolerance", Config{CanonicalRatios: []float64{1.78}, RoundUpTolerancePct: -1}, ErrInvalidConfig},
		{"share above one", Config{CanonicalRatios: []float64{1.78}, SecondaryMinShare: 1.5}, ErrInvalidConfig},
	}
	for _, tc := range tests {
		err := tc.cfg.Validate()
		if tc.wantErr == nil && err != nil {
			t.Errorf("%s: Validate() = %v; want nil", tc.name, err)
		}
		if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: Validate() = %v; want %v", tc.name, err, tc.wantErr)
		}
	}
}
