package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kbidlab/bidscope/internal/analysis"
	"github.com/kbidlab/bidscope/internal/config"
	"github.com/kbidlab/bidscope/internal/logger"
	"github.com/kbidlab/bidscope/internal/models"
)

// noDataRange is the summary placeholder when no blue-ocean range exists.
const noDataRange = "none"

// Aggregator runs the per-notice analyzer over a batch, applies the
// officer filter, pools the rates, and produces the final report.
// Notices are processed sequentially in input order; the accumulator
// state lives only for the duration of one Run.
type Aggregator struct {
	analyzer *Analyzer
	cfg      config.AnalysisConfig
}

// NewAggregator creates a batch aggregator around an analyzer.
func NewAggregator(analyzer *Analyzer, cfg config.AnalysisConfig) *Aggregator {
	return &Aggregator{analyzer: analyzer, cfg: cfg}
}

// ParseNoticeList splits free-text input into notice identifiers,
// accepting newline or comma separators and dropping blanks.
func ParseNoticeList(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == ','
	})
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

// Run analyzes every notice in the input list and aggregates the results.
// It never returns an error: every failure mode resolves to a structured
// report the caller can render.
func (g *Aggregator) Run(ctx context.Context, input, targetOfficer string) *models.Report {
	report := &models.Report{
		RunID:   uuid.New().String(),
		Summary: models.Summary{BlueRange: noDataRange},
	}

	ids := ParseNoticeList(input)
	if len(ids) == 0 {
		report.Logs = append(report.Logs, "no notice numbers provided")
		return report
	}

	target := strings.TrimSpace(targetOfficer)
	report.Summary.Total = len(ids)

	var (
		usable      []*models.NoticeResult
		winnerRates []float64
		theoretical []float64
		bidderRates []float64
	)

	for _, id := range ids {
		result, err := g.analyzer.Analyze(ctx, id)
		if err != nil {
			report.Logs = append(report.Logs, fmt.Sprintf("[error] %s: %v", id, err))
			logger.Error("Notice %s skipped: %v", id, err)
			continue
		}

		if target != "" && result.Officer != target {
			report.Logs = append(report.Logs, fmt.Sprintf("[excluded] %s | officer: %s", id, result.Officer))
			continue
		}

		report.Logs = append(report.Logs, fmt.Sprintf("[ok] %s | officer: %s | winner: %s (%.5f%%)",
			id, result.Officer, result.Winner, result.WinnerRate))

		if len(result.Combined) > 0 {
			usable = append(usable, result)
		}
		if result.WinnerRate != 0 {
			winnerRates = append(winnerRates, result.WinnerRate)
			report.Scatter = append(report.Scatter, models.WinnerPoint{
				Rate:     result.WinnerRate,
				NoticeNo: result.NoticeNo,
				Winner:   result.Winner,
			})
		}
		theoretical = append(theoretical, result.Theoretical...)
		bidderRates = append(bidderRates, result.BidderRates...)
	}

	report.Summary.Filtered = len(usable)
	report.Summary.Missing = report.Summary.Total - len(usable)

	if len(usable) == 0 {
		report.Logs = append(report.Logs, "no usable analysis data")
		return report
	}

	report.Merged = buildMergedTable(usable)

	zone := analysis.FindHotZone(winnerRates, g.cfg.HotZoneWidth, g.cfg.HotZoneStep)
	if zone == nil && len(winnerRates) > 0 {
		minR, maxR := winnerRates[0], winnerRates[0]
		for _, r := range winnerRates[1:] {
			if r < minR {
				minR = r
			}
			if r > maxR {
				maxR = r
			}
		}
		zone = &models.HotZone{Start: minR, End: maxR, Count: len(winnerRates)}
	}
	report.HotZone = zone

	if blue := analysis.FindBlueOcean(theoretical, bidderRates, zone, g.cfg.BinWidth); blue != nil {
		report.BlueOcean = blue
		report.Summary.BlueRange = blue.Best.String()
		rec := blue.Best.RecommendedRate()
		report.Summary.RecommendedRate = &rec
	}

	return report
}

// buildMergedTable outer-joins the notices' combined tables on rate: one
// row per distinct rate value, one column per notice, blank cells where a
// notice has no label at that rate.
func buildMergedTable(results []*models.NoticeResult) *models.MergedTable {
	rateSet := make(map[float64]bool)
	for _, r := range results {
		for _, e := range r.Combined {
			rateSet[e.Rate] = true
		}
	}

	rates := make([]float64, 0, len(rateSet))
	for rate := range rateSet {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	rowIndex := make(map[float64]int, len(rates))
	for i, rate := range rates {
		rowIndex[rate] = i
	}

	table := &models.MergedTable{Rates: rates}
	for _, r := range results {
		col := models.MergedColumn{
			NoticeNo:   r.NoticeNo,
			Officer:    r.Officer,
			Winner:     r.Winner,
			WinnerRate: r.WinnerRate,
			Cells:      make([]string, len(rates)),
		}
		for _, e := range r.Combined {
			idx := rowIndex[e.Rate]
			if col.Cells[idx] == "" {
				col.Cells[idx] = e.Label
			}
		}
		table.Columns = append(table.Columns, col)
	}

	return table
}
