package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"siteguard/internal/domain"
)

// Generator produces a prose narrative for a finished run. Implementations
// may call external services; the caller enforces the timeout.
type Generator interface {
	Narrative(ctx context.Context, result *domain.RunResult) (string, error)
}

// BuildNarrative asks the generator for a narrative under a hard deadline and
// falls back to the deterministic summary on any failure. The fallback path
// can never fail, so every run gets a narrative.
func BuildNarrative(ctx context.Context, gen Generator, result *domain.RunResult, timeout time.Duration, logger *zap.Logger) string {
	if gen == nil {
		return FallbackNarrative(result)
	}

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		text, err := gen.Narrative(genCtx, result)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil || strings.TrimSpace(out.text) == "" {
			logger.Warn("narrative generator failed, using fallback", zap.Error(out.err))
			return FallbackNarrative(result)
		}
		return out.text
	case <-genCtx.Done():
		logger.Warn("narrative generator timed out, using fallback",
			zap.Duration("timeout", timeout))
		return FallbackNarrative(result)
	}
}

// Per-category inclusion thresholds for the fallback narrative. A category
// is mentioned only when its run-wide count exceeds the threshold, so noisy
// low-grade findings don't pad the summary. Structural failures always
// surface.
const (
	httpErrorThreshold   = 0
	secCriticalThreshold = 0
	brokenLinkThreshold  = 0
	secHighThreshold     = 0
	slowPageThreshold    = 1
	jsErrorThreshold     = 2
	a11yIssueThreshold   = 5
)

// FallbackNarrative builds a deterministic narrative from the aggregated
// issue counts, worst problems first.
func FallbackNarrative(result *domain.RunResult) string {
	var critical, high, medium []string

	httpErrors, brokenLinks, jsErrors := 0, 0, 0
	a11yTotal, secCritical, secHigh := 0, 0, 0
	slowPages := 0
	for _, p := range result.Pages {
		if p.Status >= 400 || p.Status == 0 {
			httpErrors++
		}
		brokenLinks += len(p.BrokenNavigationLinks)
		jsErrors += len(p.JSErrors)
		if p.AccessibilityIssues != nil {
			a11yTotal += *p.AccessibilityIssues
		}
		if p.SecurityData != nil {
			secCritical += p.SecurityData.SeverityCounts.Critical
			secHigh += p.SecurityData.SeverityCounts.High
		}
		if p.PerformanceScore != nil && *p.PerformanceScore < 50 {
			slowPages++
		}
	}

	if httpErrors > httpErrorThreshold {
		critical = append(critical, fmt.Sprintf("%d page(s) returned HTTP errors or failed to load", httpErrors))
	}
	if secCritical > secCriticalThreshold {
		critical = append(critical, fmt.Sprintf("%d critical security finding(s) detected", secCritical))
	}
	if brokenLinks > brokenLinkThreshold {
		high = append(high, fmt.Sprintf("%d broken navigation link(s) found across the site", brokenLinks))
	}
	if secHigh > secHighThreshold {
		high = append(high, fmt.Sprintf("%d high-severity security finding(s) need attention", secHigh))
	}
	if slowPages > slowPageThreshold {
		high = append(high, fmt.Sprintf("%d page(s) scored below 50 on performance", slowPages))
	}
	if jsErrors > jsErrorThreshold {
		medium = append(medium, fmt.Sprintf("%d JavaScript error(s) were thrown during page loads", jsErrors))
	}
	if a11yTotal > a11yIssueThreshold {
		medium = append(medium, fmt.Sprintf("%d accessibility issue(s) were found", a11yTotal))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %d page(s) on %s: %d passed, %d failed.",
		result.Total, result.TargetURL, result.Passed, result.Failed)
	if sh := result.SiteHealth; sh != nil && sh.SiteHealthScore != nil {
		fmt.Fprintf(&b, " Site health is %.1f (%s).", *sh.SiteHealthScore, deref(sh.RiskCategory))
	}

	issues := append(append(critical, high...), medium...)
	if len(issues) == 0 {
		b.WriteString(" No significant issues were detected; the site is in good shape.")
	} else {
		b.WriteString(" Key findings: ")
		b.WriteString(strings.Join(issues, "; "))
		b.WriteString(".")
	}
	fmt.Fprintf(&b, " Confidence in these results: %.1f%%.", result.ConfidenceScore)
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return "unscored"
	}
	return *s
}
