// Package links validates a page's outbound links without incurring a full
// page load per link, and splits failures into three buckets: broken
// navigation links, failed assets, and third-party failures. Only the first
// bucket carries scoring weight.
package links

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"siteguard/internal/urlutil"
	"siteguard/internal/domain"
)

// Non-navigable asset types: a failing response for one of these is an
// asset-load problem, not a broken navigation target.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".avif": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".js": true, ".mjs": true, ".css": true, ".map": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true, ".ogg": true,
	".avi": true, ".mov": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".json": true, ".xml": true, ".csv": true, ".pdf": true,
}

// Checker issues a lightweight request for link validation without loading
// a full page. Implemented by the browser package's HTTP client.
type Checker interface {
	CheckLink(ctx context.Context, rawURL string, timeout time.Duration) (int, error)
}

// ObservedFailure is a failing network response captured by the page's
// load-time listeners. Status 0 means a request-level failure with no
// HTTP response.
type ObservedFailure struct {
	URL    string
	Status int
	Error  string
}

// Classifier buckets link failures and actively validates internal
// navigation targets.
type Classifier struct {
	checker      Checker
	logger       *zap.Logger
	checkTimeout time.Duration
	maxChecks    int
}

// NewClassifier returns a classifier using the given lightweight checker.
// maxChecks caps the active validations per page.
func NewClassifier(checker Checker, checkTimeout time.Duration, maxChecks int, logger *zap.Logger) *Classifier {
	if checkTimeout <= 0 {
		checkTimeout = 8 * time.Second
	}
	if maxChecks <= 0 {
		maxChecks = 50
	}
	return &Classifier{
		checker:      checker,
		logger:       logger,
		checkTimeout: checkTimeout,
		maxChecks:    maxChecks,
	}
}

// IsAsset reports whether the URL path ends in a known non-navigable
// asset extension.
func IsAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return assetExtensions[ext]
}

// Classify processes extracted anchors plus load-time failures into a
// LinkReport. It never returns an error: a failure of the whole step
// degrades to empty buckets.
func (c *Classifier) Classify(ctx context.Context, baseURL string, anchors []string, observed []ObservedFailure) domain.LinkReport {
	report := domain.LinkReport{
		BrokenNavigation:   []domain.LinkFailure{},
		FailedAssets:       []string{},
		ThirdPartyFailures: []string{},
	}

	// Bucket the failures already seen while the page loaded.
	knownFailing := make(map[string]bool)
	for _, of := range observed {
		switch {
		case IsAsset(of.URL):
			report.FailedAssets = append(report.FailedAssets, of.URL)
		case !urlutil.SameDomain(baseURL, of.URL):
			report.ThirdPartyFailures = append(report.ThirdPartyFailures, of.URL)
		default:
			norm := urlutil.Normalize(of.URL)
			if knownFailing[norm] {
				continue
			}
			knownFailing[norm] = true
			lf := domain.LinkFailure{URL: norm, Error: of.Error}
			if of.Status >= 400 {
				lf.Status = domain.IntPtr(of.Status)
			}
			report.BrokenNavigation = append(report.BrokenNavigation, lf)
		}
	}

	// Deduplicate internal non-asset anchors; these feed the frontier.
	seen := make(map[string]bool)
	for _, a := range anchors {
		if !urlutil.SameDomain(baseURL, a) || IsAsset(a) {
			continue
		}
		norm := urlutil.Normalize(a)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		report.InternalLinks = append(report.InternalLinks, norm)
	}

	// Actively validate internal anchors not already known to fail.
	checked := 0
	for _, link := range report.InternalLinks {
		if knownFailing[link] {
			continue
		}
		if checked >= c.maxChecks {
			break
		}
		checked++

		status, err := c.checker.CheckLink(ctx, link, c.checkTimeout)
		if err != nil {
			// TLS mismatches on local/dev targets are not broken links.
			if isCertError(err) {
				continue
			}
			report.BrokenNavigation = append(report.BrokenNavigation, domain.LinkFailure{
				URL:   link,
				Error: err.Error(),
			})
			continue
		}
		if status >= 400 {
			report.BrokenNavigation = append(report.BrokenNavigation, domain.LinkFailure{
				URL:    link,
				Status: domain.IntPtr(status),
			})
		}
	}

	if len(report.BrokenNavigation) > 0 && c.logger != nil {
		c.logger.Debug("broken navigation links found",
			zap.String("base_url", baseURL),
			zap.Int("count", len(report.BrokenNavigation)))
	}
	return report
}

func isCertError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "x509") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "tls:")
}
