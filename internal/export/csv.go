// Package export writes the merged comparison table to CSV so a run's
// output can be inspected in a spreadsheet. One row per distinct rate,
// one column per notice, with a synthetic winning-rate row under the
// header and a marker on rows inside the recommended range.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kbidlab/bidscope/internal/models"
)

const (
	rangeMarker  = "*"
	winnerMarker = " (1st)"
)

// Export writes the report's merged table to a timestamped CSV file in
// dir and returns the file path.
func Export(report *models.Report, dir string) (string, error) {
	if report.Merged == nil {
		return "", fmt.Errorf("no merged table to export")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("bidscope_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, report); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV renders the merged table as CSV. Rows inside the recommended
// blue-ocean range carry a marker next to the rate value.
func WriteCSV(w io.Writer, report *models.Report) error {
	table := report.Merged
	if table == nil {
		return fmt.Errorf("no merged table to export")
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, "rate")
	for _, col := range table.Columns {
		header = append(header, col.Header())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	winners := make([]string, 0, len(table.Columns)+1)
	winners = append(winners, "winning rate")
	for _, col := range table.Columns {
		if col.WinnerRate != 0 {
			winners = append(winners, fmt.Sprintf("%.4f", col.WinnerRate))
		} else {
			winners = append(winners, "")
		}
	}
	if err := cw.Write(winners); err != nil {
		return fmt.Errorf("write winning-rate row: %w", err)
	}

	for i, rate := range table.Rates {
		row := make([]string, 0, len(table.Columns)+1)
		rateCell := fmt.Sprintf("%.5f", rate)
		if inRecommendedRange(report.BlueOcean, rate) {
			rateCell += rangeMarker
		}
		row = append(row, rateCell)
		for _, col := range table.Columns {
			cell := col.Cells[i]
			if cell != "" && cell == col.Winner {
				cell += winnerMarker
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write rate row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func inRecommendedRange(blue *models.BlueOceanResult, rate float64) bool {
	if blue == nil {
		return false
	}
	return rate >= blue.Best.Start && rate <= blue.Best.End
}
