package aspectratio

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestHistogramAdd(t *testing.T) {
	h := NewHistogram()
	for _, r := range []float64{2.4, 2.401, 2.398, 1.7777} {
		if err := h.Add(r); err != nil {
			t.Fatalf("Add(%v) returned error: %v", r, err)
		}
	}
	h.AddMiss()

	if got := h.TotalSamples(); got != 5 {
		t.Errorf("TotalSamples() = %d; want 5", got)
	}
	buckets := h.Buckets()
	if buckets[2.40] != 3 {
		t.Errorf("bucket 2.40 = %d; want 3", buckets[2.40])
	}
	if buckets[1.78] != 1 {
		t.Errorf("bucket 1.78 = %d; want 1", buckets[1.78])
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d; want 2", h.Len())
	}
}

func TestHistogramZeroValue(t *testing.T) {
	var h Histogram
	if err := h.Add(2.40); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	var h2 Histogram
	if err := h2.Set(1.85, 3); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if h.TotalSamples() != 1 || h.Buckets()[2.40] != 1 {
		t.Errorf("after Add: total = %d, buckets = %v", h.TotalSamples(), h.Buckets())
	}
	if h2.TotalSamples() != 3 || h2.Buckets()[1.85] != 3 {
		t.Errorf("after Set: total = %d, buckets = %v", h2.TotalSamples(), h2.Buckets())
	}
}

func TestHistogramRejectsInvalid(t *testing.T) {
	h := NewHistogram()
	for _, r := range []float64{0, -1.5, 0.001} {
		if err := h.Add(r); !errors.Is(err, ErrInvalidRatio) {
			t.Errorf("Add(%v): err = %v; want ErrInvalidRatio", r, err)
		}
	}
	if err := h.Set(1.78, 0); err == nil {
		t.Error("Set with zero count returned nil error")
	}
	if err := h.Set(1.78, 3); err != nil {
		t.Fatal(err)
	}
	if err := h.SetTotalSamples(2); err == nil {
		t.Error("SetTotalSamples below bucket sum returned nil error")
	}
}

func TestHistogramJSON(t *testing.T) {
	h := NewHistogram()
	_ = h.Set(2.40, 4)
	_ = h.Set(1.78, 2)
	_ = h.SetTotalSamples(9)

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var got Histogram
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal(%s) returned error: %v", data, err)
	}
	if got.TotalSamples() != 9 {
		t.Errorf("TotalSamples() = %d; want 9", got.TotalSamples())
	}
	if b := got.Buckets(); b[2.40] != 4 || b[1.78] != 2 || len(b) != 2 {
		t.Errorf("Buckets() = %v; want map[1.78:2 2.4:4]", b)
	}
}

func TestHistogramUnmarshalRaisesTotal(t *testing.T) {
	var h Histogram
	if err := json.Unmarshal([]byte(`{"buckets":{"2.40":4,"2.401":1,"1.78":2}}`), &h); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if h.TotalSamples() != 7 {
		t.Errorf("TotalSamples() = %d; want 7", h.TotalSamples())
	}
	if b := h.Buckets(); b[2.40] != 5 {
		t.Errorf("bucket 2.40 = %d; want 5", b[2.40])
	}

	if err := json.Unmarshal([]byte(`{"buckets":{"abc":1}}`), &h); err == nil {
		t.Error("Unmarshal with bad key returned nil error")
	}
}
