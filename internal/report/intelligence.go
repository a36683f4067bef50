package report

import (
	"math"
	"sort"

	"siteguard/internal/domain"
)

// PatternCount is one recurring failure pattern and how many pages show it.
type PatternCount struct {
	PatternID string   `json:"pattern_id"`
	RootCause string   `json:"root_cause,omitempty"`
	Count     int      `json:"count"`
	Pages     []string `json:"pages"`
}

// PageRisk is one page's position on the risk heatmap.
type PageRisk struct {
	URL          string   `json:"url"`
	HealthScore  *float64 `json:"health_score"`
	RiskCategory string   `json:"risk_category"`
}

// CoverageSummary describes how much of the site the run actually saw.
type CoverageSummary struct {
	PagesScanned    int     `json:"pages_scanned"`
	PagesDiscovered int     `json:"pages_discovered"`
	CoveragePct     float64 `json:"coverage_pct"`
	State           string  `json:"state"`
}

// Intelligence is the dashboard aggregation bundle derived from one run.
type Intelligence struct {
	TopFailurePatterns   []PatternCount      `json:"top_failure_patterns"`
	SeverityDistribution map[string]int      `json:"severity_distribution"`
	RiskHeatmap          []PageRisk          `json:"risk_heatmap"`
	BrokenLinkSources    map[string][]string `json:"broken_link_sources"`
	MostUnstablePage     *PageRisk           `json:"most_unstable_page"`
	ComponentVariance    map[string]float64  `json:"component_variance"`
	Coverage             CoverageSummary     `json:"coverage"`
}

// BuildIntelligence computes the dashboard aggregations. Everything here is
// derived from the run result alone and is fully deterministic.
func BuildIntelligence(result *domain.RunResult) *Intelligence {
	intel := &Intelligence{
		SeverityDistribution: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0},
		BrokenLinkSources:    make(map[string][]string),
		ComponentVariance:    make(map[string]float64),
	}

	// Failure patterns, grouped by deterministic pattern id.
	patterns := make(map[string]*PatternCount)
	for _, p := range result.Pages {
		if p.FailurePatternID == nil {
			continue
		}
		id := *p.FailurePatternID
		pc, ok := patterns[id]
		if !ok {
			pc = &PatternCount{PatternID: id}
			if p.RootCauseTag != nil {
				pc.RootCause = *p.RootCauseTag
			}
			patterns[id] = pc
		}
		pc.Count++
		pc.Pages = append(pc.Pages, p.URL)
	}
	for _, pc := range patterns {
		intel.TopFailurePatterns = append(intel.TopFailurePatterns, *pc)
	}
	sort.Slice(intel.TopFailurePatterns, func(i, j int) bool {
		a, b := intel.TopFailurePatterns[i], intel.TopFailurePatterns[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.PatternID < b.PatternID
	})
	if len(intel.TopFailurePatterns) > 10 {
		intel.TopFailurePatterns = intel.TopFailurePatterns[:10]
	}

	// Severity distribution across accessibility and security findings.
	for _, p := range result.Pages {
		if p.AccessibilityData != nil {
			sc := p.AccessibilityData.SeverityCounts
			intel.SeverityDistribution["high"] += sc.High
			intel.SeverityDistribution["medium"] += sc.Medium
			intel.SeverityDistribution["low"] += sc.Low
		}
		if p.SecurityData != nil {
			sc := p.SecurityData.SeverityCounts
			intel.SeverityDistribution["critical"] += sc.Critical
			intel.SeverityDistribution["high"] += sc.High
			intel.SeverityDistribution["medium"] += sc.Medium
			intel.SeverityDistribution["low"] += sc.Low
		}
	}

	// Risk heatmap, worst pages first. Unscored pages sink to the bottom.
	for _, p := range result.Pages {
		risk := "unscored"
		if p.RiskCategory != nil {
			risk = *p.RiskCategory
		}
		intel.RiskHeatmap = append(intel.RiskHeatmap, PageRisk{
			URL:          p.URL,
			HealthScore:  p.HealthScore,
			RiskCategory: risk,
		})
	}
	sort.SliceStable(intel.RiskHeatmap, func(i, j int) bool {
		a, b := intel.RiskHeatmap[i].HealthScore, intel.RiskHeatmap[j].HealthScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	// Broken link target -> pages that link to it.
	for _, p := range result.Pages {
		for _, bl := range p.BrokenNavigationLinks {
			intel.BrokenLinkSources[bl.URL] = append(intel.BrokenLinkSources[bl.URL], p.URL)
		}
	}

	// Most unstable page: farthest health score from the site mean.
	if sh := result.SiteHealth; sh != nil && sh.SiteHealthScore != nil {
		mean := *sh.SiteHealthScore
		var worst *PageRisk
		var worstDelta float64
		for i := range intel.RiskHeatmap {
			pr := intel.RiskHeatmap[i]
			if pr.HealthScore == nil {
				continue
			}
			delta := math.Abs(*pr.HealthScore - mean)
			if worst == nil || delta > worstDelta {
				worst = &intel.RiskHeatmap[i]
				worstDelta = delta
			}
		}
		if worst != nil {
			cp := *worst
			intel.MostUnstablePage = &cp
		}
	}

	// Per-component score variance across pages.
	components := map[string]func(*domain.PageRecord) *float64{
		"performance":   func(p *domain.PageRecord) *float64 { return p.PerformanceScore },
		"accessibility": func(p *domain.PageRecord) *float64 { return p.AccessibilityScore },
		"security":      func(p *domain.PageRecord) *float64 { return p.SecurityScore },
		"functional":    func(p *domain.PageRecord) *float64 { return p.FunctionalScore },
		"ui_form":       func(p *domain.PageRecord) *float64 { return p.UIFormScore },
	}
	for name, get := range components {
		var vals []float64
		for _, p := range result.Pages {
			if v := get(p); v != nil {
				vals = append(vals, *v)
			}
		}
		if len(vals) < 2 {
			continue
		}
		intel.ComponentVariance[name] = round1(variance(vals))
	}

	intel.Coverage = CoverageSummary{
		PagesScanned:    result.ConfidenceFactors.PagesScanned,
		PagesDiscovered: result.ConfidenceFactors.PagesDiscovered,
		CoveragePct:     result.ConfidenceFactors.CrawlCoveragePct,
		State:           string(result.State),
	}
	return intel
}

func variance(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		sq += (v - m) * (v - m)
	}
	return sq / float64(len(vals))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
