package analysis

import (
	"sort"

	"github.com/kbidlab/bidscope/internal/models"
)

// FindHotZone locates the fixed-width window containing the most winning
// rates. The window starts at the minimum rate and advances by step until
// its start passes the maximum rate; counting is inclusive on both bounds.
// Ties keep the earliest (lowest-start) window. Returns nil for empty
// input; callers may fall back to [min, max] of their rates.
func FindHotZone(rates []float64, width, step float64) *models.HotZone {
	if len(rates) == 0 || width <= 0 || step <= 0 {
		return nil
	}

	sorted := make([]float64, len(rates))
	copy(sorted, rates)
	sort.Float64s(sorted)

	minR := sorted[0]
	maxR := sorted[len(sorted)-1]

	best := models.HotZone{Count: -1}
	for start := minR; start <= maxR; start += step {
		end := start + width
		count := 0
		for _, r := range sorted {
			if r > end {
				break
			}
			if r >= start {
				count++
			}
		}
		if count > best.Count {
			best = models.HotZone{Start: start, End: end, Count: count}
		}
	}

	return &best
}
