package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"siteguard/internal/domain"
)

type stubGenerator struct {
	text  string
	err   error
	delay time.Duration
}

func (s *stubGenerator) Narrative(ctx context.Context, result *domain.RunResult) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func cleanRun() *domain.RunResult {
	health := 95.0
	risk := "Excellent"
	return &domain.RunResult{
		RunID:           "run1",
		TargetURL:       "https://example.com",
		State:           domain.StateCompleted,
		Total:           3,
		Passed:          3,
		ConfidenceScore: 92.5,
		Pages: []*domain.PageRecord{
			{URL: "https://example.com", Status: 200, Result: "pass"},
			{URL: "https://example.com/a", Status: 200, Result: "pass"},
			{URL: "https://example.com/b", Status: 200, Result: "pass"},
		},
		SiteHealth: &domain.SiteHealth{SiteHealthScore: &health, RiskCategory: &risk},
	}
}

func TestBuildNarrative(t *testing.T) {
	logger := zap.NewNop()

	t.Run("nil generator uses the fallback", func(tt *testing.T) {
		text := BuildNarrative(context.Background(), nil, cleanRun(), time.Second, logger)
		assert.Contains(tt, text, "Scanned 3 page(s)")
	})

	t.Run("generator output is used when it succeeds", func(tt *testing.T) {
		gen := &stubGenerator{text: "custom narrative"}
		text := BuildNarrative(context.Background(), gen, cleanRun(), time.Second, logger)
		assert.Equal(tt, "custom narrative", text)
	})

	t.Run("generator error falls back", func(tt *testing.T) {
		gen := &stubGenerator{err: errors.New("service unavailable")}
		text := BuildNarrative(context.Background(), gen, cleanRun(), time.Second, logger)
		assert.Contains(tt, text, "Scanned 3 page(s)")
	})

	t.Run("slow generator is cut off at the deadline", func(tt *testing.T) {
		gen := &stubGenerator{text: "too late", delay: 5 * time.Second}
		start := time.Now()
		text := BuildNarrative(context.Background(), gen, cleanRun(), 50*time.Millisecond, logger)
		assert.Less(tt, time.Since(start), time.Second)
		assert.NotEqual(tt, "too late", text)
	})
}

func TestFallbackNarrative(t *testing.T) {
	t.Run("clean run gets the all-clear statement", func(tt *testing.T) {
		text := FallbackNarrative(cleanRun())
		assert.Contains(tt, text, "No significant issues were detected")
		assert.Contains(tt, text, "95.0 (Excellent)")
		assert.Contains(tt, text, "92.5%")
	})

	t.Run("issues appear worst first", func(tt *testing.T) {
		run := cleanRun()
		run.Pages[0].Status = 500
		run.Pages[0].Result = "fail"
		run.Pages[1].BrokenNavigationLinks = []domain.LinkFailure{{URL: "https://example.com/x"}}
		run.Pages[2].JSErrors = []string{"TypeError", "ReferenceError", "SyntaxError"}
		run.Passed, run.Failed = 2, 1

		text := FallbackNarrative(run)
		httpIdx := strings.Index(text, "HTTP errors")
		linkIdx := strings.Index(text, "broken navigation link")
		jsIdx := strings.Index(text, "JavaScript error")
		assert.Greater(tt, httpIdx, -1)
		assert.Greater(tt, linkIdx, httpIdx)
		assert.Greater(tt, jsIdx, linkIdx)
	})

	t.Run("low-frequency noise stays below the reporting thresholds", func(tt *testing.T) {
		run := cleanRun()
		slow := 45.0
		a11y := 5
		run.Pages[0].JSErrors = []string{"warn-1", "warn-2"}
		run.Pages[1].AccessibilityIssues = &a11y
		run.Pages[2].PerformanceScore = &slow

		text := FallbackNarrative(run)
		assert.Contains(tt, text, "No significant issues were detected")
		assert.NotContains(tt, text, "JavaScript error")
		assert.NotContains(tt, text, "accessibility issue")
		assert.NotContains(tt, text, "performance")
	})

	t.Run("counts above the thresholds are reported", func(tt *testing.T) {
		run := cleanRun()
		a11y := 6
		run.Pages[0].JSErrors = []string{"e1", "e2", "e3"}
		run.Pages[1].AccessibilityIssues = &a11y

		text := FallbackNarrative(run)
		assert.Contains(tt, text, "3 JavaScript error(s)")
		assert.Contains(tt, text, "6 accessibility issue(s)")
	})

	t.Run("is deterministic", func(tt *testing.T) {
		run := cleanRun()
		run.Pages[0].JSErrors = []string{"boom"}
		assert.Equal(tt, FallbackNarrative(run), FallbackNarrative(run))
	})
}
