// Package analysis implements the rate-analysis engine: reconstruction of
// assessment rates from raw bid amounts, generation of the theoretical
// combination-rate distribution from base-price estimates, the hot-zone
// density-window search, and the blue-ocean bin scoring.
//
// All functions are pure: no I/O, no hidden state between calls. The
// binning and windowing heuristics are purpose-built for this
// rate-distribution shape and make no claim to generality.
package analysis

import (
	"math"
	"sort"

	"github.com/kbidlab/bidscope/internal/models"
)

// combinationSize is the number of base-price estimates averaged per
// theoretical rate, per the national "1365" bid-ratio convention.
const combinationSize = 4

// TheoreticalRates returns the multiset of rates obtained by averaging the
// per-estimate self rates over every 4-element combination of estimates,
// sorted ascending. Fewer than 4 estimates yields an empty set; that is an
// expected insufficient-data outcome, not an error.
func TheoreticalRates(estimates []models.BasePriceEstimate) []float64 {
	if len(estimates) < combinationSize {
		return nil
	}

	selfRates := make([]float64, len(estimates))
	for i, e := range estimates {
		selfRates[i] = e.SelfRate()
	}

	n := len(selfRates)
	rates := make([]float64, 0, binomial4(n))
	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			for k := j + 1; k < n-1; k++ {
				for l := k + 1; l < n; l++ {
					sum := selfRates[i] + selfRates[j] + selfRates[k] + selfRates[l]
					rates = append(rates, sum/combinationSize)
				}
			}
		}
	}

	sort.Float64s(rates)
	return rates
}

// binomial4 returns C(n, 4).
func binomial4(n int) int {
	if n < 4 {
		return 0
	}
	return n * (n - 1) * (n - 2) * (n - 3) / 24
}

// ReconstructRates converts raw bid amounts into assessment rates:
//
//	rate = ((B - A) * 100 / threshold + A) * 100 / basePrice
//
// When threshold or basePrice is not positive every rate is forced to 0,
// the explicit "unknown" sentinel; division by zero never occurs. Records
// come back in submission order.
func ReconstructRates(bids []models.BidSubmission, basePrice, threshold, aValue float64) []models.BidRecord {
	records := make([]models.BidRecord, len(bids))
	defined := threshold > 0 && basePrice > 0

	for i, b := range bids {
		rate := 0.0
		if defined {
			adjusted := (b.Amount-aValue)*100/threshold + aValue
			rate = adjusted * 100 / basePrice
		}
		records[i] = models.BidRecord{Bidder: b.Bidder, Amount: b.Amount, Rate: rate}
	}

	return records
}

// DedupeByRate collapses records sharing a rate to the first occurrence,
// preserving order.
func DedupeByRate(records []models.BidRecord) []models.BidRecord {
	seen := make(map[float64]bool, len(records))
	out := make([]models.BidRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Rate] {
			continue
		}
		seen[r.Rate] = true
		out = append(out, r)
	}
	return out
}

// FilterBand keeps records whose rate lies in [min, max] inclusive.
func FilterBand(records []models.BidRecord, min, max float64) []models.BidRecord {
	out := make([]models.BidRecord, 0, len(records))
	for _, r := range records {
		if r.Rate >= min && r.Rate <= max {
			out = append(out, r)
		}
	}
	return out
}

// Round5 rounds a rate to 5 decimal places, the precision used for winning
// rates and comparison-table rows.
func Round5(rate float64) float64 {
	return math.Round(rate*1e5) / 1e5
}
