package aspectratio

// Observations within closenessUnits of each other are treated as the same
// aspect ratio (0.05).
const closenessUnits = 5

// Classification holds the dominant raw ratio and, when present, a clearly
// distinct second one. Zero means none.
type Classification struct {
	PrimaryRaw   float64 `json:"primary_raw"`
	SecondaryRaw float64 `json:"secondary_raw"`
}

// Classify reduces h to at most two representative raw ratios. The winning
// secondary cluster must hold at least minShare of the histogram's total
// samples; pass 0 to accept any remaining cluster.
func Classify(h *Histogram, minShare float64) Classification {
	if h == nil || h.Len() == 0 {
		return Classification{}
	}
	entries := h.entries()

	primary := mostFrequent(entries)
	remaining := make([]bucket, 0, len(entries))
	for _, b := range entries {
		if abs(b.units-primary.units) > closenessUnits {
			remaining = append(remaining, b)
		}
	}

	out := Classification{PrimaryRaw: fromUnits(primary.units)}
	if len(remaining) == 0 {
		return out
	}

	var best []bucket
	bestWeight := 0
	var bestRep bucket
	for _, c := range clusters(remaining) {
		w := weight(c)
		rep := mostFrequent(c)
		if w > bestWeight || (w == bestWeight && rep.units > bestRep.units) {
			best, bestWeight, bestRep = c, w, rep
		}
	}
	if best == nil {
		return out
	}

	if minShare > 0 {
		if float64(bestWeight) < minShare*float64(h.TotalSamples())-floatSlack {
			return out
		}
	}
	out.SecondaryRaw = fromUnits(bestRep.units)
	return out
}

// mostFrequent returns the entry with the highest count, preferring the
// larger ratio on ties.
func mostFrequent(entries []bucket) bucket {
	best := entries[0]
	for _, b := range entries[1:] {
		if b.count > best.count || (b.count == best.count && b.units > best.units) {
			best = b
		}
	}
	return best
}

// clusters splits entries (sorted ascending) into chains where neighbours are
// within closenessUnits of each other.
func clusters(entries []bucket) [][]bucket {
	var out [][]bucket
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].units-entries[i-1].units > closenessUnits {
			out = append(out, entries[start:i])
			start = i
		}
	}
	return out
}

func weight(entries []bucket) int {
	w := 0
	for _, b := range entries {
		w += b.count
	}
	return w
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
