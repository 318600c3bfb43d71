package analysis

import (
	"sort"

	"github.com/kbidlab/bidscope/internal/models"
)

// FindBlueOcean scores sub-ranges of the hot zone by theoretical density
// against actual bidder density:
//
//	demand    = bin's theoretical density / max theoretical density (0..1)
//	supplyInv = 1 / (bin's actual bidder count + 1)
//	score     = demand × supplyInv
//
// The +1 keeps zero-supply bins finite while still favoring them. Bins with
// no theoretical mass are skipped. Returns nil when the zone is unset,
// either filtered input is empty, or no bin has theoretical mass; all of
// these are expected insufficient-data outcomes.
func FindBlueOcean(theoretical, actual []float64, zone *models.HotZone, binWidth float64) *models.BlueOceanResult {
	if zone == nil || binWidth <= 0 {
		return nil
	}

	theo := filterRange(theoretical, zone.Start, zone.End)
	bids := filterRange(actual, zone.Start, zone.End)
	if len(theo) == 0 || len(bids) == 0 {
		return nil
	}

	edges := binEdges(zone.Start, zone.End, binWidth)
	theoCounts := histogram(theo, edges)
	bidCounts := histogram(bids, edges)

	theoTotal := 0
	maxTheo := 0
	for _, c := range theoCounts {
		theoTotal += c
		if c > maxTheo {
			maxTheo = c
		}
	}
	if theoTotal == 0 || maxTheo == 0 {
		return nil
	}

	result := &models.BlueOceanResult{}
	bestScore := -1.0

	for i := 0; i < len(edges)-1; i++ {
		theoC := theoCounts[i]
		if theoC == 0 {
			continue
		}

		start, end := edges[i], edges[i+1]
		center := (start + end) / 2

		demand := float64(theoC) / float64(maxTheo)
		supplyInv := 1.0 / float64(bidCounts[i]+1)
		score := demand * supplyInv

		result.Bins = append(result.Bins, models.BlueOceanBin{
			Center:           center,
			Score:            score,
			TheoreticalCount: theoC,
			ActualCount:      bidCounts[i],
		})

		if score > bestScore {
			bestScore = score
			result.Best = models.RateRange{Start: start, End: end}
			result.Center = center
		}
	}

	if len(result.Bins) == 0 {
		return nil
	}
	return result
}

// filterRange keeps rates in [lo, hi] inclusive.
func filterRange(rates []float64, lo, hi float64) []float64 {
	out := make([]float64, 0, len(rates))
	for _, r := range rates {
		if r >= lo && r <= hi {
			out = append(out, r)
		}
	}
	return out
}

// binEdges builds edges from start stepping by width until past end, so the
// final edge is at or beyond end. A degenerate span still yields the
// minimum two edges [start, end].
func binEdges(start, end, width float64) []float64 {
	var edges []float64
	stop := end + width
	for i := 0; ; i++ {
		e := start + float64(i)*width
		if e >= stop {
			break
		}
		edges = append(edges, e)
	}
	if len(edges) < 2 {
		edges = []float64{start, end}
	}
	return edges
}

// histogram counts values per bin over shared edges. Bins are half-open
// [e[i], e[i+1]) except the last, which includes its right edge. Values
// outside the edge span are dropped.
func histogram(values []float64, edges []float64) []int {
	counts := make([]int, len(edges)-1)
	last := len(edges) - 1

	for _, v := range values {
		if v < edges[0] || v > edges[last] {
			continue
		}
		idx := sort.SearchFloat64s(edges, v)
		if idx == last || (idx < last && edges[idx] != v) {
			idx--
		}
		if idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}

	return counts
}
