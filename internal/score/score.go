// Package score converts inspector findings into normalized 0-100 component
// scores and combines them into page and site health scores.
// Weights: performance 30%, accessibility 25%, security 20%, functional 15%,
// ui/form 10%. Missing components have their weight redistributed.
package score

import (
	"math"

	"siteguard/internal/domain"
)

var Weights = map[string]float64{
	"performance":   0.30,
	"accessibility": 0.25,
	"security":      0.20,
	"functional":    0.15,
	"ui_form":       0.10,
}

const (
	brokenNavDeduction  = 7.0
	brokenNavCap        = 35.0
	jsErrorDeduction    = 3.0
	jsErrorCap          = 20.0
	redirectDeduction   = 3.0
	redirectCap         = 10.0
	redirectChainLimit  = 2
)

// FunctionalResult is the functional score plus its deduction breakdown.
type FunctionalResult struct {
	Score     float64
	Breakdown map[string]domain.DeductionDetail
}

// Functional scores page correctness from HTTP status, broken navigation
// links, JS errors, and redirect chain length. Failed assets and third-party
// failures are recorded elsewhere but never scored.
func Functional(status int, brokenNav []domain.LinkFailure, jsErrors []string, redirectChain int) FunctionalResult {
	score := 100.0
	breakdown := make(map[string]domain.DeductionDetail)

	switch {
	case status == 404:
		score -= 80
		breakdown["http_status"] = domain.DeductionDetail{Value: float64(status), Deduction: 80}
	case status >= 500:
		score -= 100
		breakdown["http_status"] = domain.DeductionDetail{Value: float64(status), Deduction: 100}
	case status >= 400:
		score -= 50
		breakdown["http_status"] = domain.DeductionDetail{Value: float64(status), Deduction: 50}
	default:
		breakdown["http_status"] = domain.DeductionDetail{Value: float64(status), Deduction: 0}
	}

	if n := len(brokenNav); n > 0 {
		d := math.Min(brokenNavCap, float64(n)*brokenNavDeduction)
		score -= d
		breakdown["broken_navigation_links"] = domain.DeductionDetail{Count: n, Deduction: round1(d)}
	} else {
		breakdown["broken_navigation_links"] = domain.DeductionDetail{Count: 0, Deduction: 0}
	}

	if n := len(jsErrors); n > 0 {
		d := math.Min(jsErrorCap, float64(n)*jsErrorDeduction)
		score -= d
		breakdown["js_errors"] = domain.DeductionDetail{Count: n, Deduction: round1(d)}
	} else {
		breakdown["js_errors"] = domain.DeductionDetail{Count: 0, Deduction: 0}
	}

	if redirectChain > redirectChainLimit {
		d := math.Min(redirectCap, float64(redirectChain-redirectChainLimit)*redirectDeduction)
		score -= d
		breakdown["redirect_chain"] = domain.DeductionDetail{Value: float64(redirectChain), Deduction: round1(d)}
	}

	return FunctionalResult{Score: clamp(score), Breakdown: breakdown}
}

// UIForm scores form health and UI element integrity.
func UIForm(forms []domain.Form, elements []domain.UIElement) float64 {
	score := 100.0

	if len(forms) > 0 {
		var totalHealth float64
		for _, f := range forms {
			if f.HealthScore != nil {
				totalHealth += *f.HealthScore
			}
		}
		avg := totalHealth / float64(len(forms))
		// each 10 pts below 100 of form health costs ~5 overall
		score -= math.Max(0, (100-avg)*0.5)
	}

	invisible := 0
	for _, el := range elements {
		if !el.Visible && el.Enabled {
			invisible++
		}
	}
	if invisible > 3 {
		score -= math.Min(10, float64(invisible)*1.5)
	}

	return clamp(score)
}

// PageHealth computes the weighted composite health score. A nil component's
// weight is redistributed proportionally among the rest; the result is nil
// only when every component is nil.
func PageHealth(performance, accessibility, security, functional, uiForm *float64) domain.HealthBreakdown {
	components := map[string]*float64{
		"performance":   performance,
		"accessibility": accessibility,
		"security":      security,
		"functional":    functional,
		"ui_form":       uiForm,
	}

	var totalWeight float64
	for k, v := range components {
		if v != nil {
			totalWeight += Weights[k]
		}
	}

	if totalWeight == 0 {
		return domain.HealthBreakdown{
			ComponentScores: components,
			WeightsUsed:     map[string]float64{},
		}
	}

	weightsUsed := make(map[string]float64)
	var weighted float64
	for k, v := range components {
		if v == nil {
			continue
		}
		w := Weights[k] / totalWeight
		weightsUsed[k] = round3(w)
		weighted += *v * w
	}

	health := round1(clamp(weighted))
	return domain.HealthBreakdown{
		HealthScore:     &health,
		RiskCategory:    domain.StringPtr(RiskCategory(health)),
		ComponentScores: components,
		WeightsUsed:     weightsUsed,
	}
}

// SiteHealth aggregates page health breakdowns into the site-level summary.
// Pages with nil health are excluded from the mean, never treated as zero.
func SiteHealth(pages []domain.HealthBreakdown) domain.SiteHealth {
	var valid []float64
	for _, p := range pages {
		if p.HealthScore != nil {
			valid = append(valid, *p.HealthScore)
		}
	}

	componentKeys := []string{"performance", "accessibility", "security", "functional", "ui_form"}
	averages := make(map[string]*float64, len(componentKeys))
	for _, key := range componentKeys {
		var vals []float64
		for _, p := range pages {
			if v := p.ComponentScores[key]; v != nil {
				vals = append(vals, *v)
			}
		}
		if len(vals) == 0 {
			averages[key] = nil
			continue
		}
		averages[key] = domain.Float64Ptr(round1(mean(vals)))
	}

	if len(valid) == 0 {
		return domain.SiteHealth{
			PageCount:         len(pages),
			ScoredPages:       0,
			ComponentAverages: averages,
			ScoreDistribution: map[string]int{},
		}
	}

	siteScore := round1(mean(valid))
	dist := map[string]int{"Excellent": 0, "Good": 0, "Needs Attention": 0, "Critical": 0}
	minScore, maxScore := valid[0], valid[0]
	for _, s := range valid {
		dist[RiskCategory(s)]++
		minScore = math.Min(minScore, s)
		maxScore = math.Max(maxScore, s)
	}

	return domain.SiteHealth{
		SiteHealthScore:   &siteScore,
		RiskCategory:      domain.StringPtr(RiskCategory(siteScore)),
		PageCount:         len(pages),
		ScoredPages:       len(valid),
		ComponentAverages: averages,
		ScoreDistribution: dist,
		MinPageScore:      domain.Float64Ptr(minScore),
		MaxPageScore:      domain.Float64Ptr(maxScore),
	}
}

// RiskCategory maps a score to the shared four-band classification.
func RiskCategory(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Needs Attention"
	default:
		return "Critical"
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
