package telegram

import (
	"strings"
	"testing"

	"github.com/kbidlab/bidscope/internal/models"
)

func TestFormatReport(t *testing.T) {
	rec := 97.22
	report := &models.Report{
		RunID: "run-1234",
		Summary: models.Summary{
			Total:           3,
			Filtered:        2,
			Missing:         1,
			BlueRange:       "97.170% ~ 97.220%",
			RecommendedRate: &rec,
		},
		HotZone: &models.HotZone{Start: 97.12, End: 97.42, Count: 3},
	}

	msg := FormatReport(report)

	for _, want := range []string{
		"run\\-1234",
		"3 total, 2 analyzed, 1 missing",
		"97\\.12% \\~ 97\\.42%",
		"\\(3 winners\\)",
		"97\\.170% \\~ 97\\.220%",
		"*97\\.2200%*",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestFormatReportWithoutResults(t *testing.T) {
	report := &models.Report{
		RunID:   "run-5678",
		Summary: models.Summary{Total: 2, Missing: 2, BlueRange: "none"},
	}

	msg := FormatReport(report)

	if strings.Contains(msg, "Hot zone") {
		t.Error("Expected no hot-zone line without a zone")
	}
	if strings.Contains(msg, "Recommended rate") {
		t.Error("Expected no recommendation line without a rate")
	}
	if !strings.Contains(msg, "Blue ocean: none") {
		t.Errorf("Expected the no-data blue range, got:\n%s", msg)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "97.5%", want: "97\\.5%"},
		{input: "a-b (c)", want: "a\\-b \\(c\\)"},
		{input: "plain", want: "plain"},
	}

	for _, tt := range tests {
		if got := escapeMarkdownV2(tt.input); got != tt.want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
