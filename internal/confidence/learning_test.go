package confidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"siteguard/internal/domain"
)

func TestFailurePatternID(t *testing.T) {
	t.Run("clean page has no pattern", func(tt *testing.T) {
		assert.Nil(tt, FailurePatternID(&domain.PageRecord{Status: 200}))
	})

	t.Run("same flag set always hashes to the same id", func(tt *testing.T) {
		a := &domain.PageRecord{
			Status:                404,
			BrokenNavigationLinks: []domain.LinkFailure{{URL: "https://a.com/x"}},
		}
		b := &domain.PageRecord{
			Status:                500,
			BrokenNavigationLinks: []domain.LinkFailure{{URL: "https://b.com/other"}, {URL: "https://b.com/more"}},
		}
		idA, idB := FailurePatternID(a), FailurePatternID(b)
		assert.NotNil(tt, idA)
		assert.NotNil(tt, idB)
		// both pages carry exactly {http_error, broken_nav}
		assert.Equal(tt, *idA, *idB)
		assert.Len(tt, *idA, 16)
	})

	t.Run("different flag sets hash differently", func(tt *testing.T) {
		httpOnly := FailurePatternID(&domain.PageRecord{Status: 404})
		jsOnly := FailurePatternID(&domain.PageRecord{Status: 200, JSErrors: []string{"a", "b", "c"}})
		assert.NotEqual(tt, *httpOnly, *jsOnly)
	})

	t.Run("two js errors are below the flag threshold", func(tt *testing.T) {
		assert.Nil(tt, FailurePatternID(&domain.PageRecord{Status: 200, JSErrors: []string{"a", "b"}}))
	})
}

func TestRootCauseTag(t *testing.T) {
	t.Run("accessibility tokens come before security categories", func(tt *testing.T) {
		p := &domain.PageRecord{
			AccessibilityData: &domain.AccessibilityData{
				Checks:      domain.AccessibilityChecks{MissingAlt: 2},
				HasLangAttr: true,
			},
			SecurityData: &domain.SecurityData{
				Findings: []domain.SecurityFinding{
					{Category: "csp", Severity: "high"},
				},
			},
		}
		tag := RootCauseTag(p)
		assert.NotNil(tt, tag)
		assert.Equal(tt, "missing_alt+csp", *tag)
	})

	t.Run("security categories are deduplicated and capped at two", func(tt *testing.T) {
		p := &domain.PageRecord{
			AccessibilityData: &domain.AccessibilityData{HasLangAttr: true},
			SecurityData: &domain.SecurityData{
				Findings: []domain.SecurityFinding{
					{Category: "https", Severity: "critical"},
					{Category: "https", Severity: "critical"},
					{Category: "csp", Severity: "high"},
					{Category: "hsts", Severity: "high"},
				},
			},
		}
		tag := RootCauseTag(p)
		assert.Equal(tt, "https+csp", *tag)
	})

	t.Run("slow lcp appends only past four seconds", func(tt *testing.T) {
		p := &domain.PageRecord{LCPMs: domain.Float64Ptr(4500)}
		assert.Equal(tt, "slow_lcp", *RootCauseTag(p))
		p.LCPMs = domain.Float64Ptr(3999)
		assert.Nil(tt, RootCauseTag(p))
	})

	t.Run("tag list caps at five tokens", func(tt *testing.T) {
		p := &domain.PageRecord{
			AccessibilityData: &domain.AccessibilityData{
				Checks: domain.AccessibilityChecks{MissingAlt: 1, UnlabeledInputs: 1},
			},
			SecurityData: &domain.SecurityData{
				Findings: []domain.SecurityFinding{
					{Category: "https", Severity: "critical"},
					{Category: "csp", Severity: "high"},
				},
			},
			BrokenNavigationLinks: []domain.LinkFailure{{URL: "https://a.com/x"}},
			LCPMs:                 domain.Float64Ptr(5000),
		}
		tag := RootCauseTag(p)
		// missing_alt, unlabeled_inputs, no_lang_attr, https, csp; broken_nav and lcp fall off
		assert.Equal(tt, "missing_alt+unlabeled_inputs+no_lang_attr+https+csp", *tag)
	})
}

func TestSelfHealingSuggestion(t *testing.T) {
	t.Run("nothing actionable yields nil", func(tt *testing.T) {
		assert.Nil(tt, SelfHealingSuggestion(&domain.PageRecord{Status: 200}))
	})

	t.Run("suggestions carry real counts and cap at three", func(tt *testing.T) {
		p := &domain.PageRecord{
			AccessibilityData: &domain.AccessibilityData{
				Checks: domain.AccessibilityChecks{MissingAlt: 4, UnlabeledInputs: 2},
			},
			BrokenNavigationLinks: []domain.LinkFailure{{URL: "https://a.com/dead"}},
			JSErrors:              []string{"TypeError: boom"},
		}
		s := SelfHealingSuggestion(p)
		assert.NotNil(tt, s)
		assert.Contains(tt, *s, "4 image(s)")
		assert.Contains(tt, *s, "2 unlabeled input(s)")
		assert.Contains(tt, *s, "https://a.com/dead")
		assert.NotContains(tt, *s, "TypeError")
		assert.Len(tt, strings.Split(*s, " | "), 3)
	})
}

func TestEnrich(t *testing.T) {
	t.Run("fills confidence and learning fields", func(tt *testing.T) {
		p := scoredPage("https://a.com", 90)
		p.Status = 404
		Enrich(p, domain.NewFilterSet(nil))
		assert.NotNil(tt, p.ConfidenceScore)
		assert.Equal(tt, 11, p.ChecksExecuted)
		assert.NotNil(tt, p.FailurePatternID)
	})
}
