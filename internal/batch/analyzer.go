// Package batch orchestrates the rate analysis: a per-notice analyzer that
// drives the lookup sequence against a procurement data collaborator, and
// an aggregator that pools results across notices, locates the hot zone,
// and runs the blue-ocean scorer.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kbidlab/bidscope/internal/analysis"
	"github.com/kbidlab/bidscope/internal/config"
	"github.com/kbidlab/bidscope/internal/logger"
	"github.com/kbidlab/bidscope/internal/models"
)

// Fetcher is the procurement data collaborator the analyzer depends on.
// Implementations: g2b.Client, storage.CachedFetcher, test stubs.
type Fetcher interface {
	FetchOfficer(ctx context.Context, noticeNo string) (string, error)
	FetchLowerRate(ctx context.Context, noticeNo string) (float64, error)
	FetchAValue(ctx context.Context, noticeNo string) (float64, error)
	FetchBasePrices(ctx context.Context, noticeNo, noticeOrd string) ([]models.BasePriceEstimate, error)
	FetchOpeningResults(ctx context.Context, noticeNo string) ([]models.BidSubmission, error)
}

// Analyzer runs the lookup-and-reconstruction sequence for one notice.
type Analyzer struct {
	fetcher Fetcher
	cfg     config.AnalysisConfig
}

// NewAnalyzer creates a per-notice analyzer.
func NewAnalyzer(f Fetcher, cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{fetcher: f, cfg: cfg}
}

// ParseNoticeID splits a notice identifier of the form "NNNN-OO" into
// number and ordinal. The ordinal defaults to "00" when absent.
func ParseNoticeID(input string) (noticeNo, noticeOrd string) {
	parts := strings.Split(strings.TrimSpace(input), "-")
	noticeNo = strings.TrimSpace(parts[0])
	noticeOrd = "00"
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		noticeOrd = strings.TrimSpace(parts[1])
	}
	return noticeNo, noticeOrd
}

// Analyze runs one notice through the full lookup sequence:
// officer -> base-price estimates -> threshold -> A value -> opening results,
// then reconstruction and the combined-table merge.
//
// Every lookup except the last degrades to a neutral default on failure.
// An opening-results failure aborts the notice with an error; that is the
// only error this method returns.
func (a *Analyzer) Analyze(ctx context.Context, input string) (*models.NoticeResult, error) {
	noticeNo, noticeOrd := ParseNoticeID(input)

	officer, err := a.fetcher.FetchOfficer(ctx, noticeNo)
	if err != nil {
		logger.Warn("Officer lookup degraded for %s: %v", noticeNo, err)
		officer = models.OfficerUnknown
	}
	if officer == "" {
		officer = models.OfficerUnknown
	}

	estimates, err := a.fetcher.FetchBasePrices(ctx, noticeNo, noticeOrd)
	if err != nil {
		logger.Warn("Base-price lookup degraded for %s: %v", noticeNo, err)
		estimates = nil
	}
	theoretical := analysis.TheoreticalRates(estimates)
	basePrice := models.ReferenceBasePrice(estimates)

	threshold, err := a.fetcher.FetchLowerRate(ctx, noticeNo)
	if err != nil {
		logger.Warn("Threshold lookup degraded for %s: %v", noticeNo, err)
		threshold = 0
	}

	aValue, err := a.fetcher.FetchAValue(ctx, noticeNo)
	if err != nil {
		logger.Warn("A-value lookup degraded for %s: %v", noticeNo, err)
		aValue = 0
	}

	bids, err := a.fetcher.FetchOpeningResults(ctx, noticeNo)
	if err != nil {
		return nil, fmt.Errorf("opening results for %s: %w", input, err)
	}

	records := analysis.ReconstructRates(bids, basePrice, threshold, aValue)

	result := &models.NoticeResult{
		NoticeNo:    noticeNo,
		NoticeOrd:   noticeOrd,
		Officer:     officer,
		Winner:      models.WinnerNone,
		Theoretical: theoretical,
	}

	if len(records) > 0 {
		result.Winner = records[0].Bidder
		result.WinnerRate = analysis.Round5(records[0].Rate)
		result.BidderRates = make([]float64, len(records))
		for i, r := range records {
			result.BidderRates[i] = r.Rate
		}
	}

	inBand := analysis.FilterBand(analysis.DedupeByRate(records), a.cfg.BandMin, a.cfg.BandMax)
	result.Combined = combineEntries(theoretical, inBand)

	return result, nil
}

// combineEntries merges theoretical rates (labeled by 1-based sequence
// number) with in-band actual records (labeled by bidder name) into one
// rate-sorted table. Rates are rounded to 5 decimals for display.
func combineEntries(theoretical []float64, records []models.BidRecord) []models.RateEntry {
	entries := make([]models.RateEntry, 0, len(theoretical)+len(records))
	for i, rate := range theoretical {
		entries = append(entries, models.RateEntry{
			Rate:  analysis.Round5(rate),
			Label: strconv.Itoa(i + 1),
		})
	}
	for _, r := range records {
		entries = append(entries, models.RateEntry{
			Rate:  analysis.Round5(r.Rate),
			Label: r.Bidder,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rate < entries[j].Rate
	})
	return entries
}
