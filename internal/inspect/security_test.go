package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteguard/internal/domain"
)

// fakeEvaluator replays a canned JSON result or an error.
type fakeEvaluator struct {
	result string
	err    error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, script string, out any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.result), out)
}

func secHeaders() map[string]string {
	return map[string]string{
		"strict-transport-security": "max-age=31536000",
		"content-security-policy":   "default-src 'self'; frame-ancestors 'none'",
		"x-content-type-options":    "nosniff",
		"referrer-policy":           "strict-origin-when-cross-origin",
		"permissions-policy":        "geolocation=()",
	}
}

func TestCaptureSecurity(t *testing.T) {
	ev := &fakeEvaluator{result: `[]`}

	t.Run("hardened https page passes every header check", func(tt *testing.T) {
		data, err := CaptureSecurity(context.Background(), ev, secHeaders(), "https://example.com")
		require.NoError(tt, err)
		assert.True(tt, data.IsHTTPS)
		assert.Empty(tt, data.Findings)
		assert.Contains(tt, data.PassedChecks, "HTTPS enforced")
		assert.Contains(tt, data.PassedChecks, "CSP header present")
	})

	t.Run("plain http is a critical finding", func(tt *testing.T) {
		data, err := CaptureSecurity(context.Background(), ev, map[string]string{}, "http://example.com")
		require.NoError(tt, err)
		assert.False(tt, data.IsHTTPS)
		assert.Equal(tt, 1, data.SeverityCounts.Critical)
	})

	t.Run("missing headers produce expected severities", func(tt *testing.T) {
		data, err := CaptureSecurity(context.Background(), ev, map[string]string{}, "https://example.com")
		require.NoError(tt, err)
		// hsts high, csp high, clickjacking medium, nosniff low, referrer low, permissions low
		assert.Equal(tt, 0, data.SeverityCounts.Critical)
		assert.Equal(tt, 2, data.SeverityCounts.High)
		assert.Equal(tt, 1, data.SeverityCounts.Medium)
		assert.Equal(tt, 3, data.SeverityCounts.Low)
	})

	t.Run("unsafe csp directives are medium findings", func(tt *testing.T) {
		headers := secHeaders()
		headers["content-security-policy"] = "default-src 'self' 'unsafe-inline' 'unsafe-eval'; frame-ancestors 'none'"
		data, err := CaptureSecurity(context.Background(), ev, headers, "https://example.com")
		require.NoError(tt, err)
		assert.Equal(tt, 2, data.SeverityCounts.Medium)
	})

	t.Run("dom scan failure degrades to header findings", func(tt *testing.T) {
		broken := &fakeEvaluator{err: errors.New("execution context destroyed")}
		data, err := CaptureSecurity(context.Background(), broken, secHeaders(), "https://example.com")
		require.NoError(tt, err)
		assert.Empty(tt, data.Findings)
	})

	t.Run("dom findings merge into the report", func(tt *testing.T) {
		domEv := &fakeEvaluator{result: `[
			{"category": "mixed_content", "severity": "high", "detail": "HTTP script on HTTPS page"}
		]`}
		data, err := CaptureSecurity(context.Background(), domEv, secHeaders(), "https://example.com")
		require.NoError(tt, err)
		assert.Equal(tt, 1, data.SeverityCounts.High)
		assert.Equal(tt, "mixed_content", data.Findings[0].Category)
	})
}

func TestScoreSecurity(t *testing.T) {
	t.Run("nil data yields nil", func(tt *testing.T) {
		assert.Nil(tt, ScoreSecurity(nil))
	})

	t.Run("clean report is low risk", func(tt *testing.T) {
		res := ScoreSecurity(&domain.SecurityData{IsHTTPS: true})
		assert.Equal(tt, 100.0, res.Score)
		assert.Equal(tt, "Low", res.RiskLevel)
	})

	t.Run("severity tiers deduct with caps", func(tt *testing.T) {
		res := ScoreSecurity(&domain.SecurityData{
			SeverityCounts: domain.SeverityCounts{Critical: 1, High: 1, Medium: 1, Low: 1},
		})
		// 25 + 12 + 5 + 2 = 44
		assert.Equal(tt, 56.0, res.Score)
		assert.Equal(tt, "High", res.RiskLevel)

		capped := ScoreSecurity(&domain.SecurityData{
			SeverityCounts: domain.SeverityCounts{Critical: 5, High: 5, Medium: 10, Low: 10},
		})
		// 50 + 40 + 25 + 15 = 130, clamped
		assert.Equal(tt, 0.0, capped.Score)
		assert.Equal(tt, "Critical", capped.RiskLevel)
	})

	t.Run("risk bands split at 85 65 40", func(tt *testing.T) {
		low := ScoreSecurity(&domain.SecurityData{
			SeverityCounts: domain.SeverityCounts{Medium: 3},
		})
		assert.Equal(tt, 85.0, low.Score)
		assert.Equal(tt, "Low", low.RiskLevel)

		medium := ScoreSecurity(&domain.SecurityData{
			SeverityCounts: domain.SeverityCounts{High: 1, Low: 4},
		})
		assert.Equal(tt, 80.0, medium.Score)
		assert.Equal(tt, "Medium", medium.RiskLevel)
	})
}
