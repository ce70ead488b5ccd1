package aspectratio

import "strconv"

// Result is the outcome of classifying and rounding one video's histogram.
type Result struct {
	PrimaryRaw         float64 `json:"primary_raw"`
	SecondaryRaw       float64 `json:"secondary_raw"`
	PrimaryCanonical   float64 `json:"primary"`
	SecondaryCanonical float64 `json:"secondary"`
	TotalSamples       int     `json:"total_samples"`
}

// Analyze classifies h and rounds both ratios onto cfg's canonical list.
// The config is validated first so a bad list is reported even for an
// empty histogram.
func Analyze(h *Histogram, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	c := Classify(h, cfg.SecondaryMinShare)

	primary, err := Round(c.PrimaryRaw, cfg)
	if err != nil {
		return Result{}, err
	}
	secondary, err := Round(c.SecondaryRaw, cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		PrimaryRaw:         c.PrimaryRaw,
		SecondaryRaw:       c.SecondaryRaw,
		PrimaryCanonical:   primary,
		SecondaryCanonical: secondary,
	}
	if h != nil {
		res.TotalSamples = h.TotalSamples()
	}
	return res, nil
}

// HasSecondary reports whether a distinct second aspect ratio was found.
func (r Result) HasSecondary() bool {
	return r.SecondaryCanonical != 0
}

// PrimaryLabel formats the canonical primary ratio as "2.40:1".
func (r Result) PrimaryLabel() string {
	return Label(r.PrimaryCanonical)
}

func (r Result) SecondaryLabel() string {
	return Label(r.SecondaryCanonical)
}

// Label formats ratio as "N.NN:1", or "" for zero.
func Label(ratio float64) string {
	if ratio == 0 {
		return ""
	}
	return strconv.FormatFloat(ratio, 'f', 2, 64) + ":1"
}
