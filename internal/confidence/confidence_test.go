package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siteguard/internal/domain"
)

func scoredPage(url string, health float64, connected ...string) *domain.PageRecord {
	return &domain.PageRecord{
		URL:                 url,
		Status:              200,
		HealthScore:         domain.Float64Ptr(health),
		PerformanceScore:    domain.Float64Ptr(health),
		AccessibilityScore:  domain.Float64Ptr(health),
		SecurityScore:       domain.Float64Ptr(health),
		FunctionalScore:     domain.Float64Ptr(health),
		UIFormScore:         domain.Float64Ptr(health),
		FCPMs:               domain.Float64Ptr(1000),
		LCPMs:               domain.Float64Ptr(2000),
		TTFBMs:              domain.Float64Ptr(150),
		LoadTime:            domain.Float64Ptr(2.0),
		AccessibilityIssues: domain.IntPtr(0),
		IsHTTPS:             domain.BoolPtr(true),
		ConnectedPages:      connected,
	}
}

func TestPage(t *testing.T) {
	allFilters := domain.NewFilterSet(nil)

	t.Run("complete page reaches full completeness", func(tt *testing.T) {
		pr := Page(scoredPage("https://a.com", 90), allFilters)
		assert.NotNil(tt, pr.Score)
		assert.Equal(tt, 100.0, *pr.Score)
		assert.Equal(tt, 11, pr.ChecksExecuted)
		assert.Equal(tt, 0, pr.ChecksNull)
	})

	t.Run("missing checks lower the weighted ratio", func(tt *testing.T) {
		p := scoredPage("https://a.com", 90)
		p.PerformanceScore = nil
		p.FCPMs = nil
		pr := Page(p, allFilters)
		assert.NotNil(tt, pr.Score)
		// 0.15 + 0.10 of weight gone
		assert.Equal(tt, 75.0, *pr.Score)
		assert.Equal(tt, 2, pr.ChecksNull)
	})

	t.Run("filter subset narrows the expected checks", func(tt *testing.T) {
		filters := domain.NewFilterSet([]string{domain.FilterSecurity})
		p := &domain.PageRecord{
			SecurityScore: domain.Float64Ptr(80),
			IsHTTPS:       domain.BoolPtr(true),
		}
		pr := Page(p, filters)
		assert.NotNil(tt, pr.Score)
		assert.Equal(tt, 100.0, *pr.Score)
		assert.Equal(tt, 2, pr.ChecksExecuted)
	})
}

func TestRun(t *testing.T) {
	allFilters := domain.NewFilterSet(nil)

	t.Run("empty page list yields zero with zeroed factors", func(tt *testing.T) {
		score, factors := Run(nil, allFilters)
		assert.Equal(tt, 0.0, score)
		assert.Equal(tt, domain.ConfidenceFactors{}, factors)
	})

	t.Run("score stays within bounds", func(tt *testing.T) {
		pages := []*domain.PageRecord{
			scoredPage("https://a.com/1", 90),
			scoredPage("https://a.com/2", 85),
		}
		score, _ := Run(pages, allFilters)
		assert.GreaterOrEqual(tt, score, 0.0)
		assert.LessOrEqual(tt, score, 100.0)
	})

	t.Run("full coverage beats partial coverage", func(tt *testing.T) {
		full := []*domain.PageRecord{
			scoredPage("https://a.com/1", 90, "https://a.com/2"),
			scoredPage("https://a.com/2", 88, "https://a.com/1"),
		}
		partial := []*domain.PageRecord{
			scoredPage("https://a.com/1", 90,
				"https://a.com/2", "https://a.com/3", "https://a.com/4", "https://a.com/5"),
			scoredPage("https://a.com/2", 88, "https://a.com/1"),
		}
		fullScore, fullFactors := Run(full, allFilters)
		partialScore, partialFactors := Run(partial, allFilters)
		assert.Equal(tt, 1.0, fullFactors.CrawlCoverage)
		assert.Less(tt, partialFactors.CrawlCoverage, 1.0)
		assert.Greater(tt, fullScore, partialScore)
	})

	t.Run("single scored page uses the fixed stability default", func(tt *testing.T) {
		_, factors := Run([]*domain.PageRecord{scoredPage("https://a.com", 90)}, allFilters)
		assert.Equal(tt, 0.70, factors.ErrorStability)
	})

	t.Run("no scored pages uses the lower stability default", func(tt *testing.T) {
		p := &domain.PageRecord{URL: "https://a.com", Status: 500}
		_, factors := Run([]*domain.PageRecord{p}, allFilters)
		assert.Equal(tt, 0.50, factors.ErrorStability)
	})

	t.Run("broken links reduce link integrity", func(tt *testing.T) {
		clean := scoredPage("https://a.com/1", 90)
		clean.UISummary.Links = 20
		dirty := scoredPage("https://a.com/2", 90)
		dirty.UISummary.Links = 20
		dirty.BrokenNavigationLinks = []domain.LinkFailure{
			{URL: "https://a.com/x"}, {URL: "https://a.com/y"},
		}

		_, cleanFactors := Run([]*domain.PageRecord{clean}, allFilters)
		_, dirtyFactors := Run([]*domain.PageRecord{dirty}, allFilters)
		assert.Equal(tt, 1.0, cleanFactors.LinkIntegrity)
		assert.Less(tt, dirtyFactors.LinkIntegrity, 1.0)
	})

	t.Run("js errors reduce cleanliness", func(tt *testing.T) {
		p := scoredPage("https://a.com", 90)
		p.JSErrors = []string{"TypeError: x", "ReferenceError: y"}
		_, factors := Run([]*domain.PageRecord{p}, allFilters)
		assert.Equal(tt, 0.5, factors.JSCleanliness)
		assert.Equal(tt, 2, factors.JSErrorsTotal)
	})

	t.Run("long redirect chains reduce stability", func(tt *testing.T) {
		p := scoredPage("https://a.com", 90)
		p.RedirectChainLength = 3
		_, factors := Run([]*domain.PageRecord{p}, allFilters)
		assert.Equal(tt, 1, factors.UnstableRedirects)
		assert.Equal(tt, 0.0, factors.RedirectStability)
	})
}

func TestExplain(t *testing.T) {
	t.Run("strong factors produce the all-clear line", func(tt *testing.T) {
		lines := Explain(domain.ConfidenceFactors{CrawlCoveragePct: 100, PagesDiscovered: 5, PagesScanned: 5})
		assert.Len(tt, lines, 1)
		assert.Contains(tt, lines[0], "All factors strong")
	})

	t.Run("weak factors each contribute a line", func(tt *testing.T) {
		lines := Explain(domain.ConfidenceFactors{
			CrawlCoveragePct:  50,
			PagesScanned:      5,
			PagesDiscovered:   10,
			BrokenNavLinks:    3,
			JSErrorsTotal:     2,
			UnstableRedirects: 1,
			HealthScoreStddev: 25,
		})
		assert.Len(tt, lines, 5)
		assert.Contains(tt, lines[0], "50%")
	})
}
