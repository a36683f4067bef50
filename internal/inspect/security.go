package inspect

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strings"

	"siteguard/internal/domain"
)

// SecurityResult is the scored outcome of the security inspector.
type SecurityResult struct {
	Score     float64
	RiskLevel string
	Breakdown map[string]domain.DeductionDetail
}

// CaptureSecurity inspects the document response headers and runs the DOM
// security scan. Header names are expected lowercase (as delivered by the
// browser session). A DOM scan failure degrades to header findings only.
func CaptureSecurity(ctx context.Context, ev Evaluator, headers map[string]string, pageURL string) (*domain.SecurityData, error) {
	var findings []domain.SecurityFinding
	var passed []string

	parsed, err := url.Parse(pageURL)
	isHTTPS := err == nil && parsed.Scheme == "https"
	if !isHTTPS {
		findings = append(findings, domain.SecurityFinding{
			Category:       "https",
			Severity:       "critical",
			Detail:         "Page served over HTTP, not HTTPS",
			Recommendation: "Enforce HTTPS sitewide with 301 redirect",
		})
	} else {
		passed = append(passed, "HTTPS enforced")
	}

	hsts := headers["strict-transport-security"]
	if isHTTPS && hsts == "" {
		findings = append(findings, domain.SecurityFinding{
			Category:       "hsts",
			Severity:       "high",
			Detail:         "Strict-Transport-Security header missing",
			Recommendation: "Add HSTS header: max-age=31536000; includeSubDomains",
		})
	} else if hsts != "" {
		passed = append(passed, "HSTS header present")
	}

	csp := headers["content-security-policy"]
	if csp == "" {
		csp = headers["x-content-security-policy"]
	}
	if csp == "" {
		findings = append(findings, domain.SecurityFinding{
			Category:       "csp",
			Severity:       "high",
			Detail:         "Content-Security-Policy header not set",
			Recommendation: "Implement a CSP to prevent XSS and data injection",
		})
	} else {
		passed = append(passed, "CSP header present")
		if strings.Contains(csp, "unsafe-inline") {
			findings = append(findings, domain.SecurityFinding{
				Category:       "csp",
				Severity:       "medium",
				Detail:         "CSP allows unsafe-inline - weakens XSS protection",
				Recommendation: "Remove unsafe-inline; use nonces or hashes instead",
			})
		}
		if strings.Contains(csp, "unsafe-eval") {
			findings = append(findings, domain.SecurityFinding{
				Category:       "csp",
				Severity:       "medium",
				Detail:         "CSP allows unsafe-eval",
				Recommendation: "Remove unsafe-eval from CSP directives",
			})
		}
	}

	xfo := headers["x-frame-options"]
	cspFrame := strings.Contains(csp, "frame-ancestors")
	if xfo == "" && !cspFrame {
		findings = append(findings, domain.SecurityFinding{
			Category:       "clickjacking",
			Severity:       "medium",
			Detail:         "X-Frame-Options header missing (clickjacking risk)",
			Recommendation: "Set X-Frame-Options: DENY or use CSP frame-ancestors",
		})
	} else {
		passed = append(passed, "Clickjacking protection present")
	}

	if headers["x-content-type-options"] == "" {
		findings = append(findings, domain.SecurityFinding{
			Category:       "mime_sniffing",
			Severity:       "low",
			Detail:         "X-Content-Type-Options header missing",
			Recommendation: "Set X-Content-Type-Options: nosniff",
		})
	} else {
		passed = append(passed, "MIME sniffing protection present")
	}

	if headers["referrer-policy"] == "" {
		findings = append(findings, domain.SecurityFinding{
			Category:       "referrer_policy",
			Severity:       "low",
			Detail:         "Referrer-Policy header not set",
			Recommendation: "Set Referrer-Policy: strict-origin-when-cross-origin",
		})
	} else {
		passed = append(passed, "Referrer-Policy set")
	}

	var domFindings []domain.SecurityFinding
	if evalErr := ev.Evaluate(ctx, securityDOMScript, &domFindings); evalErr == nil {
		findings = append(findings, domFindings...)
	}

	if headers["permissions-policy"] == "" && headers["feature-policy"] == "" {
		findings = append(findings, domain.SecurityFinding{
			Category:       "permissions_policy",
			Severity:       "low",
			Detail:         "Permissions-Policy header not set",
			Recommendation: "Restrict browser features with Permissions-Policy header",
		})
	}

	var counts domain.SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case "critical":
			counts.Critical++
		case "high":
			counts.High++
		case "medium":
			counts.Medium++
		case "low":
			counts.Low++
		}
	}

	analyzed := make([]string, 0, len(headers))
	for k := range headers {
		analyzed = append(analyzed, k)
	}
	sort.Strings(analyzed)

	return &domain.SecurityData{
		IsHTTPS:         isHTTPS,
		HeadersAnalyzed: analyzed,
		Findings:        findings,
		PassedChecks:    passed,
		TotalIssues:     len(findings),
		SeverityCounts:  counts,
	}, nil
}

// ScoreSecurity applies severity-tier deductions with caps: critical -25
// (cap 50), high -12 (cap 40), medium -5 (cap 25), low -2 (cap 15).
func ScoreSecurity(data *domain.SecurityData) *SecurityResult {
	if data == nil {
		return nil
	}

	s := 100.0
	breakdown := make(map[string]domain.DeductionDetail)
	sev := data.SeverityCounts

	cDeduct := math.Min(50, float64(sev.Critical)*25)
	s -= cDeduct
	breakdown["critical"] = domain.DeductionDetail{Count: sev.Critical, Deduction: round1(cDeduct)}

	hDeduct := math.Min(40, float64(sev.High)*12)
	s -= hDeduct
	breakdown["high"] = domain.DeductionDetail{Count: sev.High, Deduction: round1(hDeduct)}

	mDeduct := math.Min(25, float64(sev.Medium)*5)
	s -= mDeduct
	breakdown["medium"] = domain.DeductionDetail{Count: sev.Medium, Deduction: round1(mDeduct)}

	lDeduct := math.Min(15, float64(sev.Low)*2)
	s -= lDeduct
	breakdown["low"] = domain.DeductionDetail{Count: sev.Low, Deduction: round1(lDeduct)}

	s = math.Max(0, math.Min(100, s))

	var risk string
	switch {
	case s >= 85:
		risk = "Low"
	case s >= 65:
		risk = "Medium"
	case s >= 40:
		risk = "High"
	default:
		risk = "Critical"
	}

	return &SecurityResult{Score: round1(s), RiskLevel: risk, Breakdown: breakdown}
}
