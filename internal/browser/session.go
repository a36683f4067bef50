package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"siteguard/internal/links"
)

// Options configures the browser driver. Zero values fall back to the
// defaults used by the scan pipeline.
type Options struct {
	NavTimeout        time.Duration // per-attempt limit for the wait tiers
	CommitTimeout     time.Duration // limit for the last-resort commit tier
	SettleDelay       time.Duration // post-navigation settle before inspection
	ScreenshotQuality int
	UserAgents        []string
}

func (o *Options) withDefaults() {
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.CommitTimeout <= 0 {
		o.CommitTimeout = 15 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.ScreenshotQuality <= 0 {
		o.ScreenshotQuality = 80
	}
}

// Browser opens page sessions against a pooled set of headless Chrome
// allocators.
type Browser struct {
	opts   Options
	agents *AgentRotator
	pool   *allocatorPool
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Browser {
	opts.withDefaults()
	rotator := NewAgentRotator(opts.UserAgents, time.Now().UnixNano())
	return &Browser{
		opts:   opts,
		agents: rotator,
		pool:   newAllocatorPool(rotator.Next()),
		logger: logger,
	}
}

// Page is one open tab with its load-time network and console capture.
// Callers must Close it on every path.
type Page struct {
	ctx      context.Context
	cancel   context.CancelFunc
	allocCtx context.Context
	pool     *allocatorPool
	capture  *capture
	reqURL   string
	tier     string
}

// capture accumulates CDP events while the page loads. Listener callbacks
// run on the event goroutine, so all fields are mutex-guarded.
type capture struct {
	mu          sync.Mutex
	status      int
	headers     map[string]string
	finalURL    string
	redirects   int
	requestURLs map[network.RequestID]string
	failed      []links.ObservedFailure
	jsErrors    []string
}

func newCapture() *capture {
	return &capture{
		headers:     make(map[string]string),
		requestURLs: make(map[network.RequestID]string),
	}
}

func (c *capture) listen(ev interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		c.requestURLs[e.RequestID] = e.Request.URL
		if e.Type == network.ResourceTypeDocument && e.RedirectResponse != nil {
			c.redirects++
		}
	case *network.EventResponseReceived:
		if e.Type == network.ResourceTypeDocument && c.status == 0 {
			c.status = int(e.Response.Status)
			c.finalURL = e.Response.URL
			for k, v := range e.Response.Headers {
				c.headers[strings.ToLower(k)] = fmt.Sprint(v)
			}
		}
	case *network.EventLoadingFailed:
		if e.Canceled {
			return
		}
		c.failed = append(c.failed, links.ObservedFailure{
			URL:   c.requestURLs[e.RequestID],
			Error: e.ErrorText,
		})
	case *cdpruntime.EventExceptionThrown:
		c.jsErrors = append(c.jsErrors, e.ExceptionDetails.Error())
	}
}

// Open navigates to rawURL through three escalating wait tiers: interactive
// readiness, full load, then a bare navigation commit. Each tier ends with a
// settle delay so scripts quiet down before the inspectors run. A timed-out
// chromedp context is unusable, so every tier gets a fresh tab.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Page, error) {
	tiers := []struct {
		name    string
		timeout time.Duration
		actions []chromedp.Action
	}{
		{
			name:    "interactive",
			timeout: b.opts.NavTimeout + b.opts.SettleDelay,
			actions: []chromedp.Action{
				chromedp.Navigate(rawURL),
				chromedp.WaitReady("body", chromedp.ByQuery),
				chromedp.Sleep(b.opts.SettleDelay),
			},
		},
		{
			name:    "load",
			timeout: b.opts.NavTimeout + b.opts.SettleDelay,
			actions: []chromedp.Action{
				chromedp.Navigate(rawURL),
				chromedp.WaitVisible("body", chromedp.ByQuery),
				chromedp.Sleep(b.opts.SettleDelay),
			},
		},
		{
			name:    "commit",
			timeout: b.opts.CommitTimeout + b.opts.SettleDelay,
			actions: []chromedp.Action{
				chromedp.ActionFunc(func(ctx context.Context) error {
					_, _, _, err := cdppage.Navigate(rawURL).Do(ctx)
					return err
				}),
				chromedp.Sleep(b.opts.SettleDelay),
			},
		},
	}

	var lastErr error
	for _, tier := range tiers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		allocCtx := b.pool.get()
		tabCtx, tabCancel := chromedp.NewContext(allocCtx)
		capt := newCapture()
		chromedp.ListenTarget(tabCtx, capt.listen)

		runCtx, runCancel := context.WithTimeout(tabCtx, tier.timeout)
		err := chromedp.Run(runCtx, tier.actions...)
		runCancel()

		if err == nil {
			return &Page{
				ctx:      tabCtx,
				cancel:   tabCancel,
				allocCtx: allocCtx,
				pool:     b.pool,
				capture:  capt,
				reqURL:   rawURL,
				tier:     tier.name,
			}, nil
		}

		lastErr = err
		b.logger.Debug("navigation tier failed",
			zap.String("url", rawURL),
			zap.String("tier", tier.name),
			zap.Error(err))
		tabCancel()
		b.pool.put(allocCtx)
	}

	return nil, fmt.Errorf("navigate %s: all tiers exhausted: %w", rawURL, lastErr)
}

// Close tears down the tab and returns its allocator to the pool.
func (p *Page) Close() {
	p.cancel()
	p.pool.put(p.allocCtx)
}

// Status returns the HTTP status of the main document, or 0 if no response
// was observed.
func (p *Page) Status() int {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	return p.capture.status
}

// Headers returns the main document's response headers with lowercase keys.
func (p *Page) Headers() map[string]string {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	out := make(map[string]string, len(p.capture.headers))
	for k, v := range p.capture.headers {
		out[k] = v
	}
	return out
}

// FinalURL is the URL the main document was served from after redirects.
func (p *Page) FinalURL() string {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	if p.capture.finalURL != "" {
		return p.capture.finalURL
	}
	return p.reqURL
}

// RedirectCount is the number of document-level redirect hops observed.
func (p *Page) RedirectCount() int {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	return p.capture.redirects
}

// FailedRequests returns subresource and navigation requests that failed at
// the network level while the page loaded.
func (p *Page) FailedRequests() []links.ObservedFailure {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	out := make([]links.ObservedFailure, len(p.capture.failed))
	copy(out, p.capture.failed)
	return out
}

// JSErrors returns uncaught exception messages thrown during load.
func (p *Page) JSErrors() []string {
	p.capture.mu.Lock()
	defer p.capture.mu.Unlock()
	out := make([]string, len(p.capture.jsErrors))
	copy(out, p.capture.jsErrors)
	return out
}

// Title returns the document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	evalCtx, cancel := mergeDeadline(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(evalCtx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

// NavigationTier names the wait tier that succeeded for this page.
func (p *Page) NavigationTier() string {
	return p.tier
}

// Evaluate runs a script in the page and decodes its JSON result into out.
// It satisfies the inspector evaluator contract.
func (p *Page) Evaluate(ctx context.Context, script string, out any) error {
	var raw json.RawMessage
	evalCtx, cancel := mergeDeadline(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(script, &raw)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode evaluate result: %w", err)
	}
	return nil
}

// Links extracts all anchor hrefs from the rendered document, resolved
// against the final URL.
func (p *Page) Links(ctx context.Context) ([]string, error) {
	var html string
	evalCtx, cancel := mergeDeadline(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(evalCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	base, err := url.Parse(p.FinalURL())
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var anchors []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		anchors = append(anchors, base.ResolveReference(ref).String())
	})
	return anchors, nil
}

// Screenshot captures a full-page screenshot as JPEG bytes.
func (p *Page) Screenshot(ctx context.Context, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = 80
	}
	var buf []byte
	evalCtx, cancel := mergeDeadline(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(evalCtx, chromedp.FullScreenshot(&buf, quality)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// mergeDeadline runs tab actions on the tab context while honoring the
// caller's deadline, if it has one.
func mergeDeadline(tabCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := callerCtx.Deadline(); ok {
		return context.WithDeadline(tabCtx, deadline)
	}
	return context.WithCancel(tabCtx)
}
