// Package crawl runs the scan pipeline: a breadth-first, same-domain crawl
// that opens each page in a headless browser, runs the filtered inspection
// engines, scores the results, and aggregates them into a run result.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"siteguard/internal/browser"
	"siteguard/internal/confidence"
	"siteguard/internal/domain"
	"siteguard/internal/inspect"
	"siteguard/internal/links"
	"siteguard/internal/monitoring"
	"siteguard/internal/score"
	"siteguard/internal/urlutil"
)

// Options tunes a single orchestrator instance.
type Options struct {
	PageDelay        time.Duration
	AnomalyThreshold int
	Screenshots      bool
	ScreenshotDir    string
	DefaultPageLimit int
}

func (o *Options) withDefaults() {
	if o.PageDelay <= 0 {
		o.PageDelay = 500 * time.Millisecond
	}
	if o.AnomalyThreshold <= 0 {
		o.AnomalyThreshold = 3
	}
	if o.DefaultPageLimit <= 0 {
		o.DefaultPageLimit = 25
	}
}

// PageSession is one open page, ready for inspection. Implemented by
// browser.Page.
type PageSession interface {
	Status() int
	Headers() map[string]string
	FinalURL() string
	RedirectCount() int
	FailedRequests() []links.ObservedFailure
	JSErrors() []string
	Title(ctx context.Context) (string, error)
	Evaluate(ctx context.Context, script string, out any) error
	Links(ctx context.Context) ([]string, error)
	Screenshot(ctx context.Context, quality int) ([]byte, error)
	Close()
}

// Navigator opens page sessions. An error means every navigation tier was
// exhausted for that URL.
type Navigator interface {
	Open(ctx context.Context, rawURL string) (PageSession, error)
}

type browserNavigator struct {
	b *browser.Browser
}

// NewBrowserNavigator adapts the chromedp driver to the Navigator interface.
func NewBrowserNavigator(b *browser.Browser) Navigator {
	return browserNavigator{b: b}
}

func (n browserNavigator) Open(ctx context.Context, rawURL string) (PageSession, error) {
	p, err := n.b.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Orchestrator executes scan jobs one page at a time. It owns no job state
// between runs; everything per-job lives on the Run call stack.
type Orchestrator struct {
	nav        Navigator
	classifier *links.Classifier
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	opts       Options
}

func NewOrchestrator(nav Navigator, cl *links.Classifier, m *monitoring.Metrics, l *zap.Logger, opts Options) *Orchestrator {
	opts.withDefaults()
	return &Orchestrator{
		nav:        nav,
		classifier: cl,
		metrics:    m,
		logger:     l,
		opts:       opts,
	}
}

// Run crawls the job's target domain breadth-first and returns the full run
// result. The result is valid for every terminal state; a non-nil error is
// returned only when the job could not start at all.
func (o *Orchestrator) Run(ctx context.Context, job domain.ScanJob, progress domain.ProgressFunc) (*domain.RunResult, error) {
	seed, err := url.Parse(job.TargetURL)
	if err != nil || (seed.Scheme != "http" && seed.Scheme != "https") || seed.Host == "" {
		return nil, fmt.Errorf("invalid target url %q", job.TargetURL)
	}

	limit := job.PageLimit
	if limit == 0 {
		limit = o.opts.DefaultPageLimit
	}

	result := &domain.RunResult{
		RunID:         job.RunID,
		TargetURL:     job.TargetURL,
		State:         domain.StateRunning,
		ActiveFilters: job.Filters.Names(),
		StartedAt:     time.Now(),
	}

	start := urlutil.Normalize(job.TargetURL)
	queue := []string{start}
	visited := map[string]bool{start: true}
	discovered := map[string]bool{start: true}

	breaker := NewBreaker(o.opts.AnomalyThreshold)
	eta := &ETATracker{}
	limiter := rate.NewLimiter(rate.Every(o.opts.PageDelay), 1)

	aborted := false
	for len(queue) > 0 && len(result.Pages) < limit {
		target := queue[0]
		queue = queue[1:]

		if err := limiter.Wait(ctx); err != nil {
			aborted = true
			break
		}

		pageStart := time.Now()
		rec, internal := o.visitPage(ctx, job, target)

		// A nil record means every navigation tier failed: the URL stays
		// visited, the breaker counts it, and no page is emitted.
		if rec == nil {
			warn, abort := breaker.Failure()
			if warn {
				o.logger.Warn("consecutive navigation failures at warning threshold",
					zap.String("run_id", job.RunID),
					zap.Int("consecutive", breaker.Consecutive()))
			}
			if abort {
				o.logger.Error("aborting run after sustained navigation failures",
					zap.String("run_id", job.RunID),
					zap.Int("consecutive", breaker.Consecutive()))
				aborted = true
				break
			}
			continue
		}
		breaker.Success()

		elapsed := time.Since(pageStart)
		eta.Record(elapsed)
		o.metrics.IncPagesScanned()
		o.metrics.ObservePageDuration(elapsed)

		result.Pages = append(result.Pages, rec)
		if rec.Result == "pass" {
			result.Passed++
		} else {
			result.Failed++
		}

		for _, link := range internal {
			norm := urlutil.Normalize(link)
			discovered[norm] = true
			if !visited[norm] && urlutil.SameDomain(start, norm) {
				visited[norm] = true
				queue = append(queue, norm)
			}
		}

		if progress != nil {
			totalEstimate := len(discovered)
			if totalEstimate > limit {
				totalEstimate = limit
			}
			progress(domain.Progress{
				Scanned:       len(result.Pages),
				Discovered:    len(discovered),
				TotalEstimate: totalEstimate,
				AvgPageMS:     eta.AvgPageMS(),
				ETASeconds:    eta.ETASeconds(totalEstimate - len(result.Pages)),
			})
		}
	}

	switch {
	case aborted:
		result.State = domain.StateAborted
	case len(queue) > 0:
		result.State = domain.StateCapped
	default:
		result.State = domain.StateCompleted
	}

	o.finalize(result, job)
	result.AnomalyCount = breaker.Total()
	result.FinishedAt = time.Now()
	o.metrics.IncRunsTotal(string(result.State))
	return result, nil
}

// visitPage opens one page, runs the active inspectors, scores the page, and
// returns the record plus the internal links for the frontier. Inspector
// failures degrade individually; a navigation failure returns a nil record
// so the page never enters the results.
func (o *Orchestrator) visitPage(ctx context.Context, job domain.ScanJob, target string) (*domain.PageRecord, []string) {
	page, err := o.nav.Open(ctx, target)
	if err != nil {
		o.logger.Warn("navigation failed", zap.String("url", target), zap.Error(err))
		o.metrics.IncErrorsTotal("navigation_failed")
		return nil, nil
	}
	defer page.Close()

	rec := &domain.PageRecord{
		URL:           target,
		Timestamp:     time.Now(),
		Result:        "fail",
		Viewport:      "1280x800",
		ActiveFilters: job.Filters.Names(),
	}

	rec.Status = page.Status()
	if rec.Status == 200 {
		rec.Result = "pass"
	}
	rec.JSErrors = page.JSErrors()
	rec.RedirectChainLength = page.RedirectCount()

	if title, err := page.Title(ctx); err == nil {
		rec.Title = title
	}

	filters := job.Filters
	uiActive := filters.Active(domain.FilterUIElements) || filters.Active(domain.FilterFormValidation)

	var dom *domain.DOMData
	if uiActive {
		dom, err = inspect.CaptureDOM(ctx, page)
		if err != nil {
			o.logger.Warn("dom capture failed", zap.String("url", target), zap.Error(err))
			o.metrics.IncErrorsTotal("dom_capture_failed")
			dom = nil
		}
	}

	var perfScore, a11yScore, secScore, funcScore, uiFormScore *float64

	if dom != nil {
		inspect.AnalyzeForms(dom.Forms)
		rec.UIElements = dom.UIElements
		rec.UISummary = dom.UISummary
		rec.Forms = dom.Forms
		rec.Dropdowns = dom.Dropdowns
		rec.Pagination = dom.Pagination
		rec.NavMenus = dom.NavMenus
		rec.Tabs = dom.Tabs
		rec.Modals = dom.Modals
		rec.Accordions = dom.Accordions
		rec.Breadcrumbs = dom.Breadcrumbs
		rec.Sidebar = dom.Sidebar

		uiFormScore = domain.Float64Ptr(score.UIForm(dom.Forms, dom.UIElements))
		rec.UIFormScore = uiFormScore
	}

	if filters.Active(domain.FilterPerformance) {
		metrics, err := inspect.CapturePerformance(ctx, page)
		if err != nil {
			o.logger.Warn("performance capture failed", zap.String("url", target), zap.Error(err))
			o.metrics.IncErrorsTotal("performance_capture_failed")
		} else {
			rec.PerformanceMetrics = metrics
			rec.FCPMs = metrics.FCPMs
			rec.LCPMs = metrics.LCPMs
			rec.TTFBMs = metrics.TTFBMs
			if metrics.LoadEventEndMs != nil {
				rec.LoadTime = domain.Float64Ptr(*metrics.LoadEventEndMs / 1000)
			}
			if res := inspect.ScorePerformance(metrics); res != nil {
				perfScore = domain.Float64Ptr(res.Score)
				rec.PerformanceScore = perfScore
				rec.PerformanceGrade = domain.StringPtr(res.Grade)
				rec.SlowIndicators = res.SlowIndicators
			}
		}
	}

	if filters.Active(domain.FilterAccessibility) {
		data, err := inspect.CaptureAccessibility(ctx, page)
		if err != nil {
			o.logger.Warn("accessibility capture failed", zap.String("url", target), zap.Error(err))
			o.metrics.IncErrorsTotal("accessibility_capture_failed")
		} else {
			rec.AccessibilityData = data
			rec.AccessibilityIssues = domain.IntPtr(data.TotalIssues)
			if res := inspect.ScoreAccessibility(data); res != nil {
				a11yScore = domain.Float64Ptr(res.Score)
				rec.AccessibilityScore = a11yScore
				rec.AccessibilityRisk = domain.StringPtr(res.RiskLevel)
				rec.WCAGViolations = res.WCAGViolations
			}
		}
	}

	if filters.Active(domain.FilterSecurity) {
		data, err := inspect.CaptureSecurity(ctx, page, page.Headers(), page.FinalURL())
		if err != nil {
			o.logger.Warn("security inspection failed", zap.String("url", target), zap.Error(err))
			o.metrics.IncErrorsTotal("security_capture_failed")
		} else {
			rec.SecurityData = data
			rec.IsHTTPS = domain.BoolPtr(data.IsHTTPS)
			if res := inspect.ScoreSecurity(data); res != nil {
				secScore = domain.Float64Ptr(res.Score)
				rec.SecurityScore = secScore
				rec.SecurityRisk = domain.StringPtr(res.RiskLevel)
			}
		}
	}

	anchors, err := page.Links(ctx)
	if err != nil {
		o.logger.Warn("link extraction failed", zap.String("url", target), zap.Error(err))
		o.metrics.IncErrorsTotal("link_extraction_failed")
	}
	report := o.classifier.Classify(ctx, page.FinalURL(), anchors, page.FailedRequests())
	rec.BrokenNavigationLinks = report.BrokenNavigation
	rec.FailedAssets = report.FailedAssets
	rec.ThirdPartyFailures = report.ThirdPartyFailures
	rec.ConnectedPages = report.InternalLinks

	if filters.Active(domain.FilterFunctional) {
		res := score.Functional(rec.Status, report.BrokenNavigation, rec.JSErrors, rec.RedirectChainLength)
		funcScore = domain.Float64Ptr(res.Score)
		rec.FunctionalScore = funcScore
		rec.FunctionalBreakdown = res.Breakdown
	}

	breakdown := score.PageHealth(perfScore, a11yScore, secScore, funcScore, uiFormScore)
	rec.HealthScore = breakdown.HealthScore
	rec.RiskCategory = breakdown.RiskCategory
	rec.HealthBreakdown = &breakdown

	confidence.Enrich(rec, filters)

	if o.opts.Screenshots {
		o.captureScreenshot(ctx, page, job.RunID, rec)
	}

	return rec, report.InternalLinks
}

func (o *Orchestrator) captureScreenshot(ctx context.Context, page PageSession, runID string, rec *domain.PageRecord) {
	buf, err := page.Screenshot(ctx, 80)
	if err != nil {
		o.logger.Warn("screenshot failed", zap.String("url", rec.URL), zap.Error(err))
		return
	}
	if err := os.MkdirAll(o.opts.ScreenshotDir, 0o755); err != nil {
		o.logger.Warn("screenshot dir", zap.Error(err))
		return
	}
	name := fmt.Sprintf("%s_%d.jpg", runID, rec.Timestamp.UnixMilli())
	path := filepath.Join(o.opts.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		o.logger.Warn("screenshot write failed", zap.String("path", path), zap.Error(err))
		return
	}
	rec.Screenshot = domain.StringPtr(path)
}

// finalize fills the run-level aggregates: site health, confidence, and the
// explanation lines.
func (o *Orchestrator) finalize(result *domain.RunResult, job domain.ScanJob) {
	result.Total = len(result.Pages)

	breakdowns := make([]domain.HealthBreakdown, 0, len(result.Pages))
	for _, p := range result.Pages {
		if p.HealthBreakdown != nil {
			breakdowns = append(breakdowns, *p.HealthBreakdown)
		}
	}
	site := score.SiteHealth(breakdowns)

	conf, factors := confidence.Run(result.Pages, job.Filters)
	site.ConfidenceScore = conf

	result.SiteHealth = &site
	result.ConfidenceScore = conf
	result.ConfidenceFactors = factors
	result.ConfidenceExplanation = confidence.Explain(factors)
}
