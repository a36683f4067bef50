package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siteguard/internal/domain"
)

func TestScorePerformance(t *testing.T) {
	t.Run("nil metrics yield nil", func(tt *testing.T) {
		assert.Nil(tt, ScorePerformance(nil))
	})

	t.Run("fast page scores 100 with no indicators", func(tt *testing.T) {
		m := &domain.PerformanceMetrics{
			TTFBMs:         domain.Float64Ptr(120),
			FCPMs:          domain.Float64Ptr(900),
			LCPMs:          domain.Float64Ptr(1500),
			LoadEventEndMs: domain.Float64Ptr(2000),
		}
		res := ScorePerformance(m)
		assert.Equal(tt, 100.0, res.Score)
		assert.Equal(tt, "Excellent", res.Grade)
		assert.Empty(tt, res.SlowIndicators)
	})

	t.Run("moderate ttfb ramps linearly", func(tt *testing.T) {
		m := &domain.PerformanceMetrics{TTFBMs: domain.Float64Ptr(350)}
		res := ScorePerformance(m)
		// (350-200)/150 = 1
		assert.Equal(tt, 99.0, res.Score)
		assert.Empty(tt, res.SlowIndicators)
	})

	t.Run("slow metrics deduct steeply and flag indicators", func(tt *testing.T) {
		m := &domain.PerformanceMetrics{
			TTFBMs: domain.Float64Ptr(1000), // (1000-500)/100 = 5
			FCPMs:  domain.Float64Ptr(5000), // (5000-3000)/500 = 4
			LCPMs:  domain.Float64Ptr(6500), // (6500-4000)/500 = 5
		}
		res := ScorePerformance(m)
		assert.Equal(tt, 86.0, res.Score)
		assert.Len(tt, res.SlowIndicators, 3)
	})

	t.Run("deductions respect their caps", func(tt *testing.T) {
		m := &domain.PerformanceMetrics{
			TTFBMs:         domain.Float64Ptr(100000),
			FCPMs:          domain.Float64Ptr(100000),
			LCPMs:          domain.Float64Ptr(100000),
			LoadEventEndMs: domain.Float64Ptr(100000),
			RenderBlocking: &domain.RenderBlocking{Scripts: 50, Stylesheets: 10},
		}
		res := ScorePerformance(m)
		// 100 - 25 - 30 - 30 - 20 - 10 = -15, clamped
		assert.Equal(tt, 0.0, res.Score)
	})

	t.Run("missing metrics deduct nothing", func(tt *testing.T) {
		res := ScorePerformance(&domain.PerformanceMetrics{})
		assert.Equal(tt, 100.0, res.Score)
		assert.NotContains(tt, res.Breakdown, "ttfb")
	})

	t.Run("render blocking deducts past five resources", func(tt *testing.T) {
		m := &domain.PerformanceMetrics{
			RenderBlocking: &domain.RenderBlocking{Scripts: 5, Stylesheets: 3},
		}
		res := ScorePerformance(m)
		// 8 blocking - 5 = 3
		assert.Equal(tt, 97.0, res.Score)
	})
}

func TestScoreAccessibility(t *testing.T) {
	t.Run("nil data yields nil", func(tt *testing.T) {
		assert.Nil(tt, ScoreAccessibility(nil))
	})

	t.Run("clean audit scores 100 low risk", func(tt *testing.T) {
		res := ScoreAccessibility(&domain.AccessibilityData{HasLangAttr: true})
		assert.Equal(tt, 100.0, res.Score)
		assert.Equal(tt, "Low", res.RiskLevel)
		assert.Empty(tt, res.WCAGViolations)
	})

	t.Run("severity tiers deduct with caps", func(tt *testing.T) {
		res := ScoreAccessibility(&domain.AccessibilityData{
			SeverityCounts: domain.SeverityCounts{High: 2, Medium: 3, Low: 4},
			HasLangAttr:    true,
		})
		// 16 + 12 + 6 = 34
		assert.Equal(tt, 66.0, res.Score)
		assert.Equal(tt, "High", res.RiskLevel)

		capped := ScoreAccessibility(&domain.AccessibilityData{
			SeverityCounts: domain.SeverityCounts{High: 20, Medium: 20, Low: 20},
			HasLangAttr:    true,
		})
		// 60 + 30 + 15 = 105, clamped
		assert.Equal(tt, 0.0, capped.Score)
		assert.Equal(tt, "Critical", capped.RiskLevel)
	})

	t.Run("wcag labels follow the failed checks", func(tt *testing.T) {
		res := ScoreAccessibility(&domain.AccessibilityData{
			Checks: domain.AccessibilityChecks{
				MissingAlt:      2,
				UnlabeledInputs: 1,
				UnnamedButtons:  1,
			},
		})
		assert.Equal(tt, []string{
			"WCAG 1.1.1 (Non-text Content)",
			"WCAG 1.3.1 (Info and Relationships)",
			"WCAG 3.1.1 (Language of Page)",
			"WCAG 4.1.2 (Name, Role, Value)",
		}, res.WCAGViolations)
	})
}
