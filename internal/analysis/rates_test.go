package analysis

import (
	"math"
	"testing"

	"github.com/kbidlab/bidscope/internal/models"
)

func estimatesWithSelfRates(selfRates ...float64) []models.BasePriceEstimate {
	estimates := make([]models.BasePriceEstimate, len(selfRates))
	for i, r := range selfRates {
		estimates[i] = models.BasePriceEstimate{
			BaseAmount: 1000000,
			PlanAmount: r * 10000, // selfRate = plan/base*100
		}
	}
	return estimates
}

func TestTheoreticalRatesSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "below minimum", n: 3, want: 0},
		{name: "exactly four", n: 4, want: 1},
		{name: "five estimates", n: 5, want: 5},
		{name: "fifteen estimates", n: 15, want: 1365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selfRates := make([]float64, tt.n)
			for i := range selfRates {
				selfRates[i] = 99.5 + float64(i)*0.1
			}
			rates := TheoreticalRates(estimatesWithSelfRates(selfRates...))
			if len(rates) != tt.want {
				t.Errorf("Expected %d combination rates, got %d", tt.want, len(rates))
			}
			for i := 1; i < len(rates); i++ {
				if rates[i] < rates[i-1] {
					t.Fatalf("Rates not sorted ascending at index %d", i)
				}
			}
		})
	}
}

func TestTheoreticalRatesSingleCombination(t *testing.T) {
	// Four estimates with self rates 99.9, 100.0, 100.1, 100.2 produce
	// exactly one combination whose mean is 100.05.
	rates := TheoreticalRates(estimatesWithSelfRates(99.9, 100.0, 100.1, 100.2))
	if len(rates) != 1 {
		t.Fatalf("Expected 1 rate, got %d", len(rates))
	}
	if math.Abs(rates[0]-100.05) > 1e-9 {
		t.Errorf("Expected combination rate 100.05, got %v", rates[0])
	}
}

func TestTheoreticalRatesBounds(t *testing.T) {
	// Every combination mean must lie within [min, max] of the self rates.
	estimates := estimatesWithSelfRates(98.7, 99.2, 99.9, 100.4, 101.1, 101.6)
	rates := TheoreticalRates(estimates)
	if len(rates) != 15 {
		t.Fatalf("Expected C(6,4)=15 rates, got %d", len(rates))
	}
	for _, r := range rates {
		if r < 98.7 || r > 101.6 {
			t.Errorf("Combination rate %v outside self-rate bounds", r)
		}
	}
}

func TestReconstructRates(t *testing.T) {
	bids := []models.BidSubmission{
		{Bidder: "Acme", Amount: 810000},
		{Bidder: "Borim", Amount: 890000},
	}

	// ((810000-10000)*100/80 + 10000) * 100 / 1000000 = 101.0
	records := ReconstructRates(bids, 1000000, 80, 10000)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if math.Abs(records[0].Rate-101.0) > 1e-9 {
		t.Errorf("Expected rate 101.0, got %v", records[0].Rate)
	}
	if math.Abs(records[1].Rate-111.0) > 1e-9 {
		t.Errorf("Expected rate 111.0, got %v", records[1].Rate)
	}
	if records[0].Bidder != "Acme" {
		t.Errorf("Expected submission order preserved, got %q first", records[0].Bidder)
	}
}

func TestReconstructRatesUndefinedSentinel(t *testing.T) {
	bids := []models.BidSubmission{
		{Bidder: "Acme", Amount: 810000},
		{Bidder: "Borim", Amount: 0},
		{Bidder: "Cheil", Amount: -5},
	}

	tests := []struct {
		name      string
		basePrice float64
		threshold float64
	}{
		{name: "zero threshold", basePrice: 1000000, threshold: 0},
		{name: "negative threshold", basePrice: 1000000, threshold: -1},
		{name: "zero base price", basePrice: 0, threshold: 87.745},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ReconstructRates(bids, tt.basePrice, tt.threshold, 0)
			for _, r := range records {
				if r.Rate != 0 {
					t.Errorf("Expected sentinel rate 0 for %q, got %v", r.Bidder, r.Rate)
				}
			}
		})
	}
}

func TestDedupeByRate(t *testing.T) {
	records := []models.BidRecord{
		{Bidder: "Acme", Rate: 100.1},
		{Bidder: "Borim", Rate: 100.1},
		{Bidder: "Cheil", Rate: 99.8},
	}
	out := DedupeByRate(records)
	if len(out) != 2 {
		t.Fatalf("Expected 2 records after dedupe, got %d", len(out))
	}
	if out[0].Bidder != "Acme" {
		t.Errorf("Expected first occurrence kept, got %q", out[0].Bidder)
	}
}

func TestFilterBand(t *testing.T) {
	records := []models.BidRecord{
		{Bidder: "low", Rate: 89.99},
		{Bidder: "lo-edge", Rate: 90.0},
		{Bidder: "mid", Rate: 100.0},
		{Bidder: "hi-edge", Rate: 110.0},
		{Bidder: "high", Rate: 110.01},
	}
	out := FilterBand(records, 90, 110)
	if len(out) != 3 {
		t.Fatalf("Expected 3 records in band, got %d", len(out))
	}
	if out[0].Bidder != "lo-edge" || out[2].Bidder != "hi-edge" {
		t.Errorf("Band bounds should be inclusive, got %v", out)
	}
}

func TestRound5(t *testing.T) {
	if got := Round5(100.123456789); got != 100.12346 {
		t.Errorf("Round5 = %v, want 100.12346", got)
	}
	if got := Round5(97.1); got != 97.1 {
		t.Errorf("Round5 = %v, want 97.1", got)
	}
}
