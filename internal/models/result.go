package models

import (
	"errors"
	"fmt"
	"math"
)

// OfficerUnknown is the neutral default when the officer lookup degrades.
const OfficerUnknown = "unknown"

// WinnerNone is the winner placeholder when a notice has no opening results.
const WinnerNone = "no opening result"

// RateEntry is one row of a notice's combined comparison table: a rate and
// the label occupying it (a bidder name, or a combination sequence number
// for theoretical rates).
type RateEntry struct {
	Rate  float64 `json:"rate"`
	Label string  `json:"label"`
}

// NoticeResult is the per-notice analysis output. Created by the analyzer,
// consumed by the batch aggregator, never mutated afterwards.
type NoticeResult struct {
	NoticeNo    string      `json:"notice_no"`
	NoticeOrd   string      `json:"notice_ord"`
	Officer     string      `json:"officer"`
	Winner      string      `json:"winner"`
	WinnerRate  float64     `json:"winner_rate"` // rounded to 5 decimals; 0 = unknown
	Combined    []RateEntry `json:"combined"`    // theoretical + in-band actual, rate-sorted
	Theoretical []float64   `json:"theoretical"` // all C(n,4) combination rates
	BidderRates []float64   `json:"bidder_rates"`
}

// Validate checks the result's cross-field invariants.
func (r *NoticeResult) Validate() error {
	if r.NoticeNo == "" {
		return errors.New("notice number must not be empty")
	}
	if r.NoticeOrd == "" {
		return errors.New("notice ordinal must not be empty")
	}
	if r.Officer == "" {
		return errors.New("officer must not be empty (use OfficerUnknown)")
	}
	for i := 1; i < len(r.Combined); i++ {
		if r.Combined[i].Rate < r.Combined[i-1].Rate {
			return errors.New("combined entries must be sorted by rate")
		}
	}
	return nil
}

// HotZone is a fixed-width rate window containing the densest cluster of
// winning rates. Computed fresh per batch run; never persisted.
type HotZone struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Validate checks the zone's invariants.
func (z HotZone) Validate() error {
	if z.End < z.Start {
		return errors.New("hot zone end must not precede start")
	}
	if z.Count < 0 {
		return errors.New("hot zone count must not be negative")
	}
	return nil
}

// RateRange is a contiguous rate interval.
type RateRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// RecommendedRate derives the single recommended assessment rate from the
// best blue-ocean range: the range's upper bound, rounded to 4 decimals.
func (r RateRange) RecommendedRate() float64 {
	return math.Round(r.End*1e4) / 1e4
}

// String renders the range as "start% ~ end%" with 3 decimals.
func (r RateRange) String() string {
	return fmt.Sprintf("%.3f%% ~ %.3f%%", r.Start, r.End)
}

// BlueOceanBin is one scored histogram bin inside the hot zone.
type BlueOceanBin struct {
	Center           float64 `json:"center"`
	Score            float64 `json:"score"`
	TheoreticalCount int     `json:"theoretical_count"`
	ActualCount      int     `json:"actual_count"`
}

// BlueOceanResult is the scorer output: every scored bin in center order
// plus the single best range and its center.
type BlueOceanResult struct {
	Bins   []BlueOceanBin `json:"bins"`
	Best   RateRange      `json:"best"`
	Center float64        `json:"center"`
}

// MergedColumn is one notice's column in the merged comparison table.
// Cells is aligned with MergedTable.Rates; empty string means no label
// occupies that rate for this notice.
type MergedColumn struct {
	NoticeNo   string   `json:"notice_no"`
	Officer    string   `json:"officer"`
	Winner     string   `json:"winner"`
	WinnerRate float64  `json:"winner_rate"`
	Cells      []string `json:"cells"`
}

// Header renders the column heading the comparison table displays.
func (c MergedColumn) Header() string {
	return fmt.Sprintf("%s [%s] %s", c.NoticeNo, c.Officer, c.Winner)
}

// MergedTable is the cross-notice comparison table: one row per distinct
// rate value, one column per notice.
type MergedTable struct {
	Rates   []float64      `json:"rates"`
	Columns []MergedColumn `json:"columns"`
}

// WinnerPoint is one winning bid positioned on the rate axis, for scatter
// charting by display consumers.
type WinnerPoint struct {
	Rate     float64 `json:"rate"`
	NoticeNo string  `json:"notice_no"`
	Winner   string  `json:"winner"`
}

// Summary is the batch-level statistics record.
type Summary struct {
	Total           int      `json:"total"`
	Filtered        int      `json:"filtered"`
	Missing         int      `json:"missing"`
	BlueRange       string   `json:"blue_range"` // "none" when no result
	RecommendedRate *float64 `json:"recommended_rate,omitempty"`
}

// Report is the full batch aggregation output.
type Report struct {
	RunID     string           `json:"run_id"`
	Logs      []string         `json:"logs"`
	Merged    *MergedTable     `json:"merged,omitempty"`
	HotZone   *HotZone         `json:"hot_zone,omitempty"`
	BlueOcean *BlueOceanResult `json:"blue_ocean,omitempty"`
	Scatter   []WinnerPoint    `json:"scatter,omitempty"`
	Summary   Summary          `json:"summary"`
}
