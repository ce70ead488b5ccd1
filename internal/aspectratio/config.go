package aspectratio

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoCanonicalRatios = errors.New("canonical ratio list is empty")
	ErrInvalidRatio      = errors.New("invalid aspect ratio")
	ErrInvalidConfig     = errors.New("invalid aspect ratio config")
)

// DefaultRoundUpTolerancePct is the round-up tolerance used when none is configured.
const DefaultRoundUpTolerancePct = 2.0

// Config selects the canonical ratio list and rounding policy for a
// classification run. It is passed by value into every call.
type Config struct {
	// CanonicalRatios must be strictly ascending and positive.
	CanonicalRatios []float64 `json:"canonical_ratios" yaml:"canonical_ratios"`
	// RoundUp prefers the next higher canonical ratio when the raw value is
	// within RoundUpTolerancePct of it.
	RoundUp             bool    `json:"round_up" yaml:"round_up"`
	RoundUpTolerancePct float64 `json:"round_up_tolerance_delta_pct" yaml:"round_up_tolerance_delta_pct"`
	// SecondaryMinShare is the fraction of TotalSamples the secondary cluster
	// must reach. Zero accepts any non-empty cluster.
	SecondaryMinShare float64 `json:"secondary_min_share" yaml:"secondary_min_share"`
}

func DefaultConfig() Config {
	return Config{
		CanonicalRatios:     []float64{1.33, 1.78, 1.85, 2.00, 2.20, 2.35, 2.40},
		RoundUp:             false,
		RoundUpTolerancePct: DefaultRoundUpTolerancePct,
		SecondaryMinShare:   0,
	}
}

func (c Config) Validate() error {
	if len(c.CanonicalRatios) == 0 {
		return ErrNoCanonicalRatios
	}
	for i, r := range c.CanonicalRatios {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return fmt.Errorf("%w: canonical ratio %v must be positive", ErrInvalidConfig, r)
		}
		if i > 0 && r <= c.CanonicalRatios[i-1] {
			return fmt.Errorf("%w: canonical ratios must be strictly ascending (%v after %v)", ErrInvalidConfig, r, c.CanonicalRatios[i-1])
		}
	}
	if math.IsNaN(c.RoundUpTolerancePct) || c.RoundUpTolerancePct < 0 {
		return fmt.Errorf("%w: round up tolerance %v must not be negative", ErrInvalidConfig, c.RoundUpTolerancePct)
	}
	if math.IsNaN(c.SecondaryMinShare) || c.SecondaryMinShare < 0 || c.SecondaryMinShare > 1 {
		return fmt.Errorf("%w: secondary min share %v must be between 0 and 1", ErrInvalidConfig, c.SecondaryMinShare)
	}
	return nil
}
