// Package confidence quantifies how much the health scores should be
// trusted given crawl coverage gaps, missing inspector data, and
// instability signals. Missing data lowers confidence; nothing is estimated.
package confidence

import (
	"fmt"
	"math"

	"siteguard/internal/domain"
)

// The universe of possible checks and their weighted importance.
// Weights sum to 1.0 across all eleven checks.
var checkWeights = map[string]float64{
	"performance_score":    0.15,
	"accessibility_score":  0.15,
	"security_score":       0.15,
	"functional_score":     0.10,
	"ui_form_score":        0.05,
	"fcp_ms":               0.10,
	"lcp_ms":               0.10,
	"ttfb_ms":              0.08,
	"load_time":            0.07,
	"accessibility_issues": 0.03,
	"is_https":             0.02,
}

// filterChecks maps each filter key to the concrete checks it implies.
var filterChecks = map[string][]string{
	domain.FilterPerformance:    {"performance_score", "fcp_ms", "lcp_ms", "ttfb_ms", "load_time"},
	domain.FilterAccessibility:  {"accessibility_score", "accessibility_issues"},
	domain.FilterSecurity:       {"security_score", "is_https"},
	domain.FilterFunctional:     {"functional_score"},
	domain.FilterUIElements:     {"ui_form_score"},
	domain.FilterFormValidation: {"ui_form_score"},
}

// Run-level factor weights per the composite model.
const (
	wCoverage     = 0.30
	wCompleteness = 0.25
	wStability    = 0.20
	wLinks        = 0.15
	wJS           = 0.05
	wRedirects    = 0.05
)

// PageResult is the per-page confidence outcome.
type PageResult struct {
	Score             *float64
	ChecksExecuted    int
	ChecksNull        int
	CompletenessRatio float64
}

// expectedChecks returns the set of check keys implied by the filter set.
func expectedChecks(filters domain.FilterSet) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range filters.Names() {
		for _, c := range filterChecks[f] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func checkValue(p *domain.PageRecord, check string) bool {
	switch check {
	case "performance_score":
		return p.PerformanceScore != nil
	case "accessibility_score":
		return p.AccessibilityScore != nil
	case "security_score":
		return p.SecurityScore != nil
	case "functional_score":
		return p.FunctionalScore != nil
	case "ui_form_score":
		return p.UIFormScore != nil
	case "fcp_ms":
		return p.FCPMs != nil
	case "lcp_ms":
		return p.LCPMs != nil
	case "ttfb_ms":
		return p.TTFBMs != nil
	case "load_time":
		return p.LoadTime != nil
	case "accessibility_issues":
		return p.AccessibilityIssues != nil
	case "is_https":
		return p.IsHTTPS != nil
	}
	return false
}

// Page computes the weight-normalized completeness confidence for one page:
// (sum of weights of checks with values) / (sum of weights of expected
// checks) x 100. Weight redistribution happens implicitly by summing only
// over the expected subset.
func Page(p *domain.PageRecord, filters domain.FilterSet) PageResult {
	expected := expectedChecks(filters)
	if len(expected) == 0 {
		return PageResult{ChecksNull: 0}
	}

	var executed, nullCount int
	var gotWeight, totalWeight float64
	for _, check := range expected {
		w := checkWeights[check]
		totalWeight += w
		if checkValue(p, check) {
			executed++
			gotWeight += w
		} else {
			nullCount++
		}
	}

	if totalWeight == 0 {
		return PageResult{ChecksNull: len(expected)}
	}

	ratio := gotWeight / totalWeight
	score := round1(ratio * 100)
	return PageResult{
		Score:             &score,
		ChecksExecuted:    executed,
		ChecksNull:        nullCount,
		CompletenessRatio: math.Round(ratio*10000) / 10000,
	}
}

// componentForFilter maps a filter to the component score it must produce.
func componentPresent(p *domain.PageRecord, filter string) bool {
	switch filter {
	case domain.FilterPerformance:
		return p.PerformanceScore != nil
	case domain.FilterAccessibility:
		return p.AccessibilityScore != nil
	case domain.FilterSecurity:
		return p.SecurityScore != nil
	case domain.FilterFunctional:
		return p.FunctionalScore != nil
	case domain.FilterUIElements, domain.FilterFormValidation:
		return p.UIFormScore != nil
	}
	return true
}

// Run computes the run-level confidence score from six independently
// normalized [0,1] factors. An empty page list yields 0 with zeroed factors.
func Run(pages []*domain.PageRecord, filters domain.FilterSet) (float64, domain.ConfidenceFactors) {
	if len(pages) == 0 {
		return 0.0, domain.ConfidenceFactors{}
	}

	f := domain.ConfidenceFactors{PagesScanned: len(pages)}

	// 1. Crawl coverage: scanned vs distinct URLs known to exist.
	discovered := make(map[string]bool)
	for _, p := range pages {
		discovered[p.URL] = true
		for _, cp := range p.ConnectedPages {
			if cp != "" {
				discovered[cp] = true
			}
		}
	}
	f.PagesDiscovered = len(discovered)
	denom := len(pages)
	if f.PagesDiscovered > denom {
		denom = f.PagesDiscovered
	}
	f.CrawlCoverage = float64(len(pages)) / float64(denom)
	f.CrawlCoveragePct = round1(f.CrawlCoverage * 100)

	// 2. Completeness: mean per-page completeness, further penalized by the
	// fraction of pages missing an expected component score.
	var completenessSum float64
	missingComponent := 0
	for _, p := range pages {
		pr := Page(p, filters)
		completenessSum += pr.CompletenessRatio
		for _, filter := range filters.Names() {
			if !componentPresent(p, filter) {
				missingComponent++
				break
			}
		}
	}
	missingFrac := float64(missingComponent) / float64(len(pages))
	f.Completeness = clamp01(completenessSum / float64(len(pages)) * (1 - 0.5*missingFrac))

	// 3. Error stability from health score variance. With fewer than two
	// scored pages variance is unmeasurable, so fixed moderate defaults apply.
	var health []float64
	for _, p := range pages {
		if p.HealthScore != nil {
			health = append(health, *p.HealthScore)
		}
	}
	switch len(health) {
	case 0:
		f.ErrorStability = 0.50
	case 1:
		f.ErrorStability = 0.70
	default:
		stddev := populationStddev(health)
		f.HealthScoreStddev = round1(stddev)
		f.ErrorStability = math.Max(0, 1-stddev/35)
	}

	// 4. Link integrity. The estimated nav-link total comes from the DOM
	// link count summary, not the validated-link set; an approximation kept
	// for run-to-run comparability.
	totalBroken, estimatedLinks := 0, 0
	for _, p := range pages {
		totalBroken += len(p.BrokenNavigationLinks)
		estimatedLinks += p.UISummary.Links
	}
	f.BrokenNavLinks = totalBroken
	f.EstimatedNavLinks = estimatedLinks
	if estimatedLinks == 0 {
		if totalBroken == 0 {
			f.LinkIntegrity = 1.0
		} else {
			f.LinkIntegrity = 0.5
		}
	} else {
		density := float64(totalBroken) / float64(estimatedLinks)
		f.LinkIntegrity = 1 - math.Min(1, 5*density)
	}

	// 5. JS cleanliness.
	totalJS := 0
	for _, p := range pages {
		totalJS += len(p.JSErrors)
	}
	f.JSErrorsTotal = totalJS
	f.JSCleanliness = 1 - math.Min(1, (float64(totalJS)/float64(len(pages)))/4)

	// 6. Redirect stability.
	unstable := 0
	for _, p := range pages {
		if p.RedirectChainLength > 2 {
			unstable++
		}
	}
	f.UnstableRedirects = unstable
	f.RedirectStability = 1 - math.Min(1, 2*float64(unstable)/float64(len(pages)))

	total := wCoverage*f.CrawlCoverage +
		wCompleteness*f.Completeness +
		wStability*f.ErrorStability +
		wLinks*f.LinkIntegrity +
		wJS*f.JSCleanliness +
		wRedirects*f.RedirectStability

	score := round1(math.Max(0, math.Min(100, total*100)))
	return score, f
}

// Explain renders the factor breakdown as human-readable lines. It reads the
// same ConfidenceFactors the scoring path produced, so the two never diverge.
func Explain(f domain.ConfidenceFactors) []string {
	var lines []string
	if f.CrawlCoveragePct < 100 && f.PagesDiscovered > 0 {
		lines = append(lines, fmt.Sprintf("Only %.0f%% of discovered pages were scanned (%d/%d)",
			f.CrawlCoveragePct, f.PagesScanned, f.PagesDiscovered))
	}
	if f.BrokenNavLinks > 0 {
		lines = append(lines, fmt.Sprintf("%d broken navigation link(s) reduce link integrity factor", f.BrokenNavLinks))
	}
	if f.JSErrorsTotal > 0 {
		lines = append(lines, fmt.Sprintf("%d JS error(s) across site reduce cleanliness factor", f.JSErrorsTotal))
	}
	if f.UnstableRedirects > 0 {
		lines = append(lines, fmt.Sprintf("%d page(s) with long redirect chains reduce stability factor", f.UnstableRedirects))
	}
	if f.HealthScoreStddev > 20 {
		lines = append(lines, fmt.Sprintf("High health score variance (σ=%.1f) indicates inconsistent quality", f.HealthScoreStddev))
	}
	if len(lines) == 0 {
		lines = append(lines, "All factors strong: full crawl coverage, low errors, consistent scores")
	}
	return lines
}

func populationStddev(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(vals)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
