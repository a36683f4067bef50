package inspect

import (
	"context"
	"fmt"
	"math"

	"siteguard/internal/domain"
)

// AccessibilityResult is the scored outcome of the accessibility inspector.
type AccessibilityResult struct {
	Score          float64
	RiskLevel      string
	Breakdown      map[string]domain.DeductionDetail
	WCAGViolations []string
}

// CaptureAccessibility runs the in-page accessibility battery (~10 checks).
func CaptureAccessibility(ctx context.Context, ev Evaluator) (*domain.AccessibilityData, error) {
	var data domain.AccessibilityData
	if err := ev.Evaluate(ctx, accessibilityScript, &data); err != nil {
		return nil, fmt.Errorf("accessibility capture: %w", err)
	}
	return &data, nil
}

// ScoreAccessibility applies severity-weighted deductions with per-tier
// caps: high -8 (cap 60), medium -4 (cap 30), low -1.5 (cap 15).
func ScoreAccessibility(data *domain.AccessibilityData) *AccessibilityResult {
	if data == nil {
		return nil
	}

	s := 100.0
	breakdown := make(map[string]domain.DeductionDetail)
	sev := data.SeverityCounts

	highDeduct := math.Min(60, float64(sev.High)*8)
	s -= highDeduct
	breakdown["high_severity"] = domain.DeductionDetail{Count: sev.High, Deduction: round1(highDeduct)}

	medDeduct := math.Min(30, float64(sev.Medium)*4)
	s -= medDeduct
	breakdown["medium_severity"] = domain.DeductionDetail{Count: sev.Medium, Deduction: round1(medDeduct)}

	lowDeduct := math.Min(15, float64(sev.Low)*1.5)
	s -= lowDeduct
	breakdown["low_severity"] = domain.DeductionDetail{Count: sev.Low, Deduction: round1(lowDeduct)}

	s = math.Max(0, math.Min(100, s))

	var risk string
	switch {
	case s >= 90:
		risk = "Low"
	case s >= 70:
		risk = "Medium"
	case s >= 50:
		risk = "High"
	default:
		risk = "Critical"
	}

	var wcag []string
	if data.Checks.MissingAlt > 0 {
		wcag = append(wcag, "WCAG 1.1.1 (Non-text Content)")
	}
	if data.Checks.UnlabeledInputs > 0 {
		wcag = append(wcag, "WCAG 1.3.1 (Info and Relationships)")
	}
	if !data.HasLangAttr {
		wcag = append(wcag, "WCAG 3.1.1 (Language of Page)")
	}
	if data.Checks.UnnamedButtons > 0 {
		wcag = append(wcag, "WCAG 4.1.2 (Name, Role, Value)")
	}

	return &AccessibilityResult{
		Score:          round1(s),
		RiskLevel:      risk,
		Breakdown:      breakdown,
		WCAGViolations: wcag,
	}
}
