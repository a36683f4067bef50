// Package report turns a finished run into its output artifacts: the
// spreadsheet, the raw and summary JSON files, the narrative, and the
// dashboard aggregations.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"siteguard/internal/domain"
)

var pageColumns = []string{
	"URL", "Title", "Status", "Result", "Health Score", "Risk",
	"Performance", "Accessibility", "Security", "Functional", "UI/Form",
	"Confidence", "Broken Nav Links", "JS Errors", "Redirects",
	"Load Time (s)", "FCP (ms)", "LCP (ms)", "TTFB (ms)",
	"A11y Issues", "HTTPS", "Root Cause", "Suggestion",
}

// WriteXLSX writes the per-page result sheet plus a run summary sheet and
// returns the file path.
func WriteXLSX(result *domain.RunResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const pagesSheet = "Pages"
	f.SetSheetName("Sheet1", pagesSheet)
	if err := f.SetSheetRow(pagesSheet, "A1", &pageColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, p := range result.Pages {
		row := []interface{}{
			p.URL, p.Title, p.Status, p.Result,
			cellFloat(p.HealthScore), cellString(p.RiskCategory),
			cellFloat(p.PerformanceScore), cellFloat(p.AccessibilityScore),
			cellFloat(p.SecurityScore), cellFloat(p.FunctionalScore),
			cellFloat(p.UIFormScore), cellFloat(p.ConfidenceScore),
			len(p.BrokenNavigationLinks), len(p.JSErrors), p.RedirectChainLength,
			cellFloat(p.LoadTime), cellFloat(p.FCPMs), cellFloat(p.LCPMs),
			cellFloat(p.TTFBMs), cellInt(p.AccessibilityIssues),
			cellBool(p.IsHTTPS), cellString(p.RootCauseTag),
			cellString(p.SelfHealingSuggestion),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(pagesSheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := writeSummarySheet(f, result); err != nil {
		return "", err
	}

	name := fmt.Sprintf("scan_%s_%s.xlsx", sanitizeHost(result.TargetURL), result.StartedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeSummarySheet(f *excelize.File, result *domain.RunResult) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Run ID", result.RunID},
		{"Target", result.TargetURL},
		{"State", string(result.State)},
		{"Filters", strings.Join(result.ActiveFilters, ", ")},
		{"Pages Scanned", result.Total},
		{"Passed", result.Passed},
		{"Failed", result.Failed},
		{"Started", result.StartedAt.Format(time.RFC3339)},
		{"Finished", result.FinishedAt.Format(time.RFC3339)},
		{"Confidence", result.ConfidenceScore},
	}
	if sh := result.SiteHealth; sh != nil {
		rows = append(rows,
			[]interface{}{"Site Health", cellFloat(sh.SiteHealthScore)},
			[]interface{}{"Risk", cellString(sh.RiskCategory)},
		)
	}
	for _, line := range result.ConfidenceExplanation {
		rows = append(rows, []interface{}{"Note", line})
	}

	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func cellFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellString(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellBool(v *bool) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func sanitizeHost(rawURL string) string {
	s := rawURL
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	replacer := strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", ".", "_")
	return replacer.Replace(strings.TrimSuffix(s, "/"))
}
