package aspectratio

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Ratios are bucketed at a fixed precision of two decimal places. All
// closeness checks happen on integer hundredths so clustering never depends
// on floating point drift.
const unitsPerRatio = 100

// Histogram counts raw aspect ratio observations gathered while sampling a
// single video.
type Histogram struct {
	total   int
	buckets map[int]int
}

func NewHistogram() *Histogram {
	return &Histogram{buckets: map[int]int{}}
}

// Add records a sample that produced a usable ratio.
func (h *Histogram) Add(ratio float64) error {
	u, err := toUnits(ratio)
	if err != nil {
		return err
	}
	h.init()
	h.buckets[u]++
	h.total++
	return nil
}

// AddMiss records a sample that did not produce a ratio. It only counts
// towards TotalSamples.
func (h *Histogram) AddMiss() {
	h.total++
}

// Set replaces the count for ratio. The total is raised if needed so the
// sum of bucket counts never exceeds it.
func (h *Histogram) Set(ratio float64, count int) error {
	if count < 1 {
		return fmt.Errorf("bucket count for %.2f must be at least 1, got %d", ratio, count)
	}
	u, err := toUnits(ratio)
	if err != nil {
		return err
	}
	h.init()
	h.buckets[u] = count
	if sum := h.sum(); sum > h.total {
		h.total = sum
	}
	return nil
}

// SetTotalSamples overrides the sample count. It cannot go below the number
// of samples already held in buckets.
func (h *Histogram) SetTotalSamples(n int) error {
	if sum := h.sum(); n < sum {
		return fmt.Errorf("total samples %d is less than bucketed samples %d", n, sum)
	}
	h.total = n
	return nil
}

// init makes the zero Histogram usable.
func (h *Histogram) init() {
	if h.buckets == nil {
		h.buckets = map[int]int{}
	}
}

func (h *Histogram) TotalSamples() int {
	return h.total
}

// Len returns the number of distinct ratios.
func (h *Histogram) Len() int {
	return len(h.buckets)
}

// Buckets returns a copy of the ratio -> count mapping.
func (h *Histogram) Buckets() map[float64]int {
	out := make(map[float64]int, len(h.buckets))
	for u, c := range h.buckets {
		out[fromUnits(u)] = c
	}
	return out
}

// entries returns the buckets sorted by ascending ratio.
func (h *Histogram) entries() []bucket {
	out := make([]bucket, 0, len(h.buckets))
	for u, c := range h.buckets {
		out = append(out, bucket{units: u, count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].units < out[j].units })
	return out
}

func (h *Histogram) sum() int {
	n := 0
	for _, c := range h.buckets {
		n += c
	}
	return n
}

type histogramJSON struct {
	TotalSamples int            `json:"total_samples"`
	Buckets      map[string]int `json:"buckets"`
}

func (h *Histogram) MarshalJSON() ([]byte, error) {
	out := histogramJSON{TotalSamples: h.total, Buckets: make(map[string]int, len(h.buckets))}
	for u, c := range h.buckets {
		out.Buckets[strconv.FormatFloat(fromUnits(u), 'f', 2, 64)] = c
	}
	return json.Marshal(out)
}

func (h *Histogram) UnmarshalJSON(data []byte) error {
	var in histogramJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	next := NewHistogram()
	for k, c := range in.Buckets {
		r, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return fmt.Errorf("invalid histogram key %q: %w", k, err)
		}
		if c < 1 {
			return fmt.Errorf("bucket count for %s must be at least 1, got %d", k, c)
		}
		u, err := toUnits(r)
		if err != nil {
			return err
		}
		// Keys that collapse to the same hundredth are merged.
		next.buckets[u] += c
	}
	next.total = next.sum()
	if in.TotalSamples > next.total {
		next.total = in.TotalSamples
	}
	*h = *next
	return nil
}

type bucket struct {
	units int
	count int
}

func toUnits(ratio float64) (int, error) {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	u := int(math.Round(ratio * unitsPerRatio))
	if u == 0 {
		return 0, fmt.Errorf("%w: %v rounds to zero", ErrInvalidRatio, ratio)
	}
	return u, nil
}

func fromUnits(u int) float64 {
	return float64(u) / unitsPerRatio
}
