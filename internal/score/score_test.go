package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siteguard/internal/domain"
)

func brokenLinks(n int) []domain.LinkFailure {
	out := make([]domain.LinkFailure, n)
	for i := range out {
		out[i] = domain.LinkFailure{URL: "https://example.com/broken", Status: domain.IntPtr(404)}
	}
	return out
}

func TestFunctional(t *testing.T) {
	t.Run("clean 200 page scores 100", func(tt *testing.T) {
		res := Functional(200, nil, nil, 0)
		assert.Equal(tt, 100.0, res.Score)
		assert.Equal(tt, 0.0, res.Breakdown["http_status"].Deduction)
	})

	t.Run("404 deducts 80", func(tt *testing.T) {
		res := Functional(404, nil, nil, 0)
		assert.Equal(tt, 20.0, res.Score)
	})

	t.Run("server errors floor the score", func(tt *testing.T) {
		res := Functional(500, nil, nil, 0)
		assert.Equal(tt, 0.0, res.Score)
		res = Functional(503, nil, nil, 0)
		assert.Equal(tt, 0.0, res.Score)
	})

	t.Run("other 4xx deducts 50", func(tt *testing.T) {
		res := Functional(403, nil, nil, 0)
		assert.Equal(tt, 50.0, res.Score)
	})

	t.Run("three broken nav links deduct exactly 21", func(tt *testing.T) {
		res := Functional(200, brokenLinks(3), nil, 0)
		assert.Equal(tt, 79.0, res.Score)
		assert.Equal(tt, 21.0, res.Breakdown["broken_navigation_links"].Deduction)
	})

	t.Run("broken nav deduction caps at 35", func(tt *testing.T) {
		res := Functional(200, brokenLinks(20), nil, 0)
		assert.Equal(tt, 65.0, res.Score)
	})

	t.Run("js errors cap at 20", func(tt *testing.T) {
		errs := make([]string, 10)
		res := Functional(200, nil, errs, 0)
		assert.Equal(tt, 80.0, res.Score)
	})

	t.Run("redirect chain deducts only past two hops", func(tt *testing.T) {
		assert.Equal(tt, 100.0, Functional(200, nil, nil, 2).Score)
		assert.Equal(tt, 97.0, Functional(200, nil, nil, 3).Score)
		// cap at 10
		assert.Equal(tt, 90.0, Functional(200, nil, nil, 20).Score)
	})

	t.Run("score never drops below zero", func(tt *testing.T) {
		res := Functional(500, brokenLinks(10), make([]string, 10), 10)
		assert.Equal(tt, 0.0, res.Score)
	})
}

func TestUIForm(t *testing.T) {
	t.Run("no forms and healthy elements score 100", func(tt *testing.T) {
		assert.Equal(tt, 100.0, UIForm(nil, nil))
	})

	t.Run("unhealthy forms drag the score down", func(tt *testing.T) {
		forms := []domain.Form{{HealthScore: domain.Float64Ptr(60)}}
		// (100-60) * 0.5 = 20
		assert.Equal(tt, 80.0, UIForm(forms, nil))
	})

	t.Run("invisible enabled elements deduct past three", func(tt *testing.T) {
		elements := make([]domain.UIElement, 5)
		for i := range elements {
			elements[i] = domain.UIElement{Visible: false, Enabled: true}
		}
		// min(10, 5*1.5) = 7.5
		assert.Equal(tt, 92.5, UIForm(nil, elements))
	})
}

func TestPageHealth(t *testing.T) {
	t.Run("all components present uses canonical weights", func(tt *testing.T) {
		b := PageHealth(
			domain.Float64Ptr(80), domain.Float64Ptr(80), domain.Float64Ptr(80),
			domain.Float64Ptr(80), domain.Float64Ptr(80))
		assert.NotNil(tt, b.HealthScore)
		assert.Equal(tt, 80.0, *b.HealthScore)
		assert.Equal(tt, 0.3, b.WeightsUsed["performance"])
	})

	t.Run("missing component weight is redistributed", func(tt *testing.T) {
		b := PageHealth(domain.Float64Ptr(90), nil, domain.Float64Ptr(60), nil, nil)
		assert.NotNil(tt, b.HealthScore)
		// weights renormalize to 0.6 / 0.4 over perf+security
		assert.Equal(tt, 78.0, *b.HealthScore)
		assert.Equal(tt, 0.6, b.WeightsUsed["performance"])
		assert.Equal(tt, 0.4, b.WeightsUsed["security"])
		assert.NotContains(tt, b.WeightsUsed, "accessibility")
	})

	t.Run("all nil yields nil health not zero", func(tt *testing.T) {
		b := PageHealth(nil, nil, nil, nil, nil)
		assert.Nil(tt, b.HealthScore)
		assert.Nil(tt, b.RiskCategory)
	})
}

func TestSiteHealth(t *testing.T) {
	t.Run("unscored pages are excluded from the mean", func(tt *testing.T) {
		pages := []domain.HealthBreakdown{
			{HealthScore: domain.Float64Ptr(90)},
			{HealthScore: nil},
			{HealthScore: domain.Float64Ptr(70)},
		}
		sh := SiteHealth(pages)
		assert.NotNil(tt, sh.SiteHealthScore)
		assert.Equal(tt, 80.0, *sh.SiteHealthScore)
		assert.Equal(tt, 3, sh.PageCount)
		assert.Equal(tt, 2, sh.ScoredPages)
	})

	t.Run("no scored pages yields nil site score", func(tt *testing.T) {
		sh := SiteHealth([]domain.HealthBreakdown{{HealthScore: nil}})
		assert.Nil(tt, sh.SiteHealthScore)
		assert.Equal(tt, 0, sh.ScoredPages)
	})

	t.Run("distribution buckets by risk band", func(tt *testing.T) {
		pages := []domain.HealthBreakdown{
			{HealthScore: domain.Float64Ptr(95)},
			{HealthScore: domain.Float64Ptr(80)},
			{HealthScore: domain.Float64Ptr(60)},
			{HealthScore: domain.Float64Ptr(30)},
		}
		sh := SiteHealth(pages)
		assert.Equal(tt, 1, sh.ScoreDistribution["Excellent"])
		assert.Equal(tt, 1, sh.ScoreDistribution["Good"])
		assert.Equal(tt, 1, sh.ScoreDistribution["Needs Attention"])
		assert.Equal(tt, 1, sh.ScoreDistribution["Critical"])
		assert.Equal(tt, 30.0, *sh.MinPageScore)
		assert.Equal(tt, 95.0, *sh.MaxPageScore)
	})
}

func TestRiskCategory(t *testing.T) {
	assert.Equal(t, "Excellent", RiskCategory(90))
	assert.Equal(t, "Good", RiskCategory(75))
	assert.Equal(t, "Needs Attention", RiskCategory(50))
	assert.Equal(t, "Critical", RiskCategory(49.9))
}
