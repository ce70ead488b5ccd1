package aspectratio

import (
	"fmt"
	"math"
)

// floatSlack absorbs representation error in boundary comparisons, e.g.
// 1.815 sitting exactly between 1.78 and 1.85.
const floatSlack = 1e-9

// Round maps raw onto the canonical list in cfg. Zero is passed through
// unchanged. With cfg.RoundUp set, the smallest canonical ratio that is at
// least raw minus RoundUpTolerancePct percent wins, clamped to the largest
// entry; otherwise the nearest entry wins and ties go to the lower one.
// A raw value equal to a canonical entry always maps to itself, so rounding
// is idempotent; with a large tolerance this means values just above an
// entry can round lower than the entry itself.
func Round(raw float64, cfg Config) (float64, error) {
	if len(cfg.CanonicalRatios) == 0 {
		return 0, ErrNoCanonicalRatios
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRatio, raw)
	}
	if raw == 0 {
		return 0, nil
	}
	canonical := cfg.CanonicalRatios

	for _, c := range canonical {
		if math.Abs(c-raw) <= floatSlack {
			return c, nil
		}
	}

	if cfg.RoundUp {
		return roundUp(raw, canonical, cfg.RoundUpTolerancePct), nil
	}
	return nearest(raw, canonical), nil
}

func nearest(raw float64, canonical []float64) float64 {
	best := canonical[0]
	bestDist := math.Abs(raw - best)
	for _, c := range canonical[1:] {
		if d := math.Abs(raw - c); d < bestDist-floatSlack {
			best, bestDist = c, d
		}
	}
	return best
}

func roundUp(raw float64, canonical []float64, tolerancePct float64) float64 {
	threshold := raw * (tolerancePct / 100)
	floor := raw - threshold
	for _, c := range canonical {
		if c >= floor-floatSlack {
			return c
		}
	}
	return canonical[len(canonical)-1]
}
