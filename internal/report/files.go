package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"siteguard/internal/domain"
)

// WriteRaw dumps the complete run result, every page record included, as
// indented JSON and returns the file path.
func WriteRaw(result *domain.RunResult, dir string) (string, error) {
	name := fmt.Sprintf("scan_%s_%s_raw.json", sanitizeHost(result.TargetURL), result.StartedAt.Format("20060102_150405"))
	return writeJSON(result, dir, name)
}

// runSummary is the condensed run view written next to the raw dump.
type runSummary struct {
	RunID                 string                   `json:"run_id"`
	TargetURL             string                   `json:"target_url"`
	State                 domain.RunState          `json:"state"`
	ActiveFilters         []string                 `json:"active_filters"`
	Total                 int                      `json:"total"`
	Passed                int                      `json:"passed"`
	Failed                int                      `json:"failed"`
	SiteHealth            *domain.SiteHealth       `json:"site_health"`
	ConfidenceScore       float64                  `json:"confidence_score"`
	ConfidenceFactors     domain.ConfidenceFactors `json:"confidence_factors"`
	ConfidenceExplanation []string                 `json:"confidence_explanation"`
	Narrative             string                   `json:"narrative"`
	AnomalyCount          int                      `json:"anomaly_count"`
}

// WriteSummary writes the run-level summary without per-page payloads.
func WriteSummary(result *domain.RunResult, dir string) (string, error) {
	s := runSummary{
		RunID:                 result.RunID,
		TargetURL:             result.TargetURL,
		State:                 result.State,
		ActiveFilters:         result.ActiveFilters,
		Total:                 result.Total,
		Passed:                result.Passed,
		Failed:                result.Failed,
		SiteHealth:            result.SiteHealth,
		ConfidenceScore:       result.ConfidenceScore,
		ConfidenceFactors:     result.ConfidenceFactors,
		ConfidenceExplanation: result.ConfidenceExplanation,
		Narrative:             result.Narrative,
		AnomalyCount:          result.AnomalyCount,
	}
	name := fmt.Sprintf("scan_%s_%s_summary.json", sanitizeHost(result.TargetURL), result.StartedAt.Format("20060102_150405"))
	return writeJSON(s, dir, name)
}

// WriteSiteHealth writes the standalone site health aggregate.
func WriteSiteHealth(result *domain.RunResult, dir string) (string, error) {
	if result.SiteHealth == nil {
		return "", nil
	}
	name := fmt.Sprintf("site_health_%s_%s.json", sanitizeHost(result.TargetURL), result.StartedAt.Format("20060102_150405"))
	return writeJSON(result.SiteHealth, dir, name)
}

func writeJSON(v interface{}, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
