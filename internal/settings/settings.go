// Package settings resolves the aspect ratio configuration: built-in
// defaults, overlaid by an optional yaml file, overlaid by AR_* environment
// variables.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
)

const (
	EnvCanonicalRatios  = "AR_CANONICAL_RATIOS"
	EnvRoundUp          = "AR_ROUND_UP"
	EnvRoundUpTolerance = "AR_ROUND_UP_TOLERANCE_PCT"
	EnvSecondaryShare   = "AR_SECONDARY_MIN_SHARE"
)

// fileSettings mirrors the yaml file. Pointers distinguish "not set" from
// explicit zero values.
type fileSettings struct {
	CanonicalRatios     []string `yaml:"canonical_ratios"`
	RoundUp             *bool    `yaml:"round_up"`
	RoundUpTolerancePct *float64 `yaml:"round_up_tolerance_delta_pct"`
	SecondaryMinShare   *float64 `yaml:"secondary_min_share"`
}

// Load returns the defaults overlaid with the yaml file at path. A missing
// file is not an error; an unreadable or invalid one is.
func Load(path string) (aspectratio.Config, error) {
	cfg := aspectratio.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read settings %s: %w", path, err)
	}
	cfg, err = Apply(cfg, b)
	if err != nil {
		return cfg, fmt.Errorf("settings %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overlays yaml document b onto cfg and validates the result.
func Apply(cfg aspectratio.Config, b []byte) (aspectratio.Config, error) {
	var fs fileSettings
	if err := yaml.Unmarshal(b, &fs); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if fs.CanonicalRatios != nil {
		ratios := make([]float64, 0, len(fs.CanonicalRatios))
		for _, s := range fs.CanonicalRatios {
			r, err := ParseRatio(s)
			if err != nil {
				return cfg, err
			}
			ratios = append(ratios, r)
		}
		cfg.CanonicalRatios = ratios
	}
	if fs.RoundUp != nil {
		cfg.RoundUp = *fs.RoundUp
	}
	if fs.RoundUpTolerancePct != nil {
		cfg.RoundUpTolerancePct = *fs.RoundUpTolerancePct
	}
	if fs.SecondaryMinShare != nil {
		cfg.SecondaryMinShare = *fs.SecondaryMinShare
	}
	return cfg, cfg.Validate()
}

// FromEnv overlays AR_* variables read through getenv onto cfg.
func FromEnv(cfg aspectratio.Config, getenv func(string) string) (aspectratio.Config, error) {
	if v := getenv(EnvCanonicalRatios); v != "" {
		ratios, err := ParseRatioList(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvCanonicalRatios, err)
		}
		cfg.CanonicalRatios = ratios
	}
	if v := getenv(EnvRoundUp); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvRoundUp, err)
		}
		cfg.RoundUp = b
	}
	if v := getenv(EnvRoundUpTolerance); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvRoundUpTolerance, err)
		}
		cfg.RoundUpTolerancePct = f
	}
	if v := getenv(EnvSecondaryShare); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvSecondaryShare, err)
		}
		cfg.SecondaryMinShare = f
	}
	return cfg, cfg.Validate()
}

// ParseRatioList parses a comma separated list such as "1.78, 1.85, 2.39:1".
func ParseRatioList(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := ParseRatio(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ParseRatio accepts "2.39", "2.39:1" or "16:9".
func ParseRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, ":")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ratio %q", s)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid ratio %q", s)
	}
	return n / d, nil
}
