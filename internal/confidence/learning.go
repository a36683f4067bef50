package confidence

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"siteguard/internal/domain"
)

// FailurePatternID derives a stable 16-hex-char fingerprint from the page's
// failure flag set, used to match recurring issues across runs. Nil when no
// flags apply. The hash is a dedup key only, not a security boundary.
func FailurePatternID(p *domain.PageRecord) *string {
	var flags []string

	if p.Status >= 400 {
		flags = append(flags, "http_error")
	}
	if len(p.BrokenNavigationLinks) > 0 {
		flags = append(flags, "broken_nav")
	}
	if len(p.JSErrors) > 2 {
		flags = append(flags, "js_errors")
	}
	if p.AccessibilityData != nil && p.AccessibilityData.TotalIssues > 5 {
		flags = append(flags, "a11y_issues")
	}
	if p.SecurityData != nil {
		for _, f := range p.SecurityData.Findings {
			if f.Severity == "critical" {
				flags = append(flags, "sec_critical")
				break
			}
		}
	}

	if len(flags) == 0 {
		return nil
	}

	sort.Strings(flags)
	sum := sha256.Sum256([]byte(strings.Join(flags, "|")))
	id := hex.EncodeToString(sum[:])[:16]
	return &id
}

// RootCauseTag assembles a human-readable "+"-joined label of a page's
// dominant issue categories: accessibility tokens first, then up to two
// high/critical security categories, then link and LCP signals. Capped at
// five tokens; nil when nothing applies.
func RootCauseTag(p *domain.PageRecord) *string {
	var tags []string

	if a := p.AccessibilityData; a != nil {
		if a.Checks.MissingAlt > 0 {
			tags = append(tags, "missing_alt")
		}
		if a.Checks.UnlabeledInputs > 0 {
			tags = append(tags, "unlabeled_inputs")
		}
		if !a.HasLangAttr {
			tags = append(tags, "no_lang_attr")
		}
	}

	if s := p.SecurityData; s != nil {
		seen := make(map[string]bool)
		added := 0
		for _, f := range s.Findings {
			if added >= 2 {
				break
			}
			if (f.Severity == "critical" || f.Severity == "high") && !seen[f.Category] {
				seen[f.Category] = true
				tags = append(tags, f.Category)
				added++
			}
		}
	}

	if len(p.BrokenNavigationLinks) > 0 {
		tags = append(tags, "broken_nav_links")
	}
	if p.LCPMs != nil && *p.LCPMs > 4000 {
		tags = append(tags, "slow_lcp")
	}

	if len(tags) == 0 {
		return nil
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}
	joined := strings.Join(tags, "+")
	return &joined
}

// SelfHealingSuggestion builds up to three concrete remediation strings, each
// referencing real counts from the page's data. Nil when nothing actionable.
func SelfHealingSuggestion(p *domain.PageRecord) *string {
	var suggestions []string

	if a := p.AccessibilityData; a != nil {
		if n := a.Checks.MissingAlt; n > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Add alt attributes to %d image(s) missing them", n))
		}
		if n := a.Checks.UnlabeledInputs; n > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Associate labels or aria-label with %d unlabeled input(s)", n))
		}
	}

	if s := p.SecurityData; s != nil {
		for _, f := range s.Findings {
			if f.Category == "csp" {
				suggestions = append(suggestions, "Set a Content-Security-Policy header in server responses")
				break
			}
			if f.Category == "csrf" {
				suggestions = append(suggestions, fmt.Sprintf("Add CSRF token fields to POST forms (%s)", f.Detail))
				break
			}
		}
	}

	if n := len(p.BrokenNavigationLinks); n > 0 {
		sample := p.BrokenNavigationLinks[0].URL
		suggestions = append(suggestions, fmt.Sprintf("Repair %d broken navigation link(s), e.g. %s", n, sample))
	}

	if len(p.JSErrors) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Investigate JS error: %s", truncate(p.JSErrors[0], 120)))
	}

	if len(suggestions) == 0 {
		return nil
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	joined := strings.Join(suggestions, " | ")
	return &joined
}

// Enrich fills the confidence and learning fields on a freshly scored page.
func Enrich(p *domain.PageRecord, filters domain.FilterSet) {
	pr := Page(p, filters)
	p.ConfidenceScore = pr.Score
	p.ChecksExecuted = pr.ChecksExecuted
	p.ChecksNull = pr.ChecksNull
	p.CompletenessRatio = pr.CompletenessRatio

	p.FailurePatternID = FailurePatternID(p)
	p.RootCauseTag = RootCauseTag(p)
	p.SelfHealingSuggestion = SelfHealingSuggestion(p)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
