package inspect

import (
	"context"
	"fmt"
	"math"

	"siteguard/internal/domain"
	"siteguard/internal/score"
)

// PerformanceResult is the scored outcome of the performance inspector.
type PerformanceResult struct {
	Score          float64
	Grade          string
	Breakdown      map[string]domain.DeductionDetail
	SlowIndicators []string
}

// CapturePerformance reads browser timing and paint entries. All values come
// from the Performance API; missing entries stay nil.
func CapturePerformance(ctx context.Context, ev Evaluator) (*domain.PerformanceMetrics, error) {
	var metrics domain.PerformanceMetrics
	if err := ev.Evaluate(ctx, performanceScript, &metrics); err != nil {
		return nil, fmt.Errorf("performance capture: %w", err)
	}
	return &metrics, nil
}

// ScorePerformance converts raw metrics into a 0-100 score with a grade and
// slow-indicator strings. Deductions ramp linearly past a moderate threshold
// and steeper, capped, past a slow threshold. Nil metrics yield nil.
func ScorePerformance(m *domain.PerformanceMetrics) *PerformanceResult {
	if m == nil {
		return nil
	}

	res := &PerformanceResult{
		Breakdown:      make(map[string]domain.DeductionDetail),
		SlowIndicators: []string{},
	}
	s := 100.0

	// TTFB: <200ms good, <500ms moderate, >500ms slow
	if ttfb := m.TTFBMs; ttfb != nil {
		switch {
		case *ttfb > 500:
			d := math.Min(25, (*ttfb-500)/100)
			s -= d
			res.Breakdown["ttfb"] = domain.DeductionDetail{Value: *ttfb, Deduction: round1(d)}
			res.SlowIndicators = append(res.SlowIndicators, fmt.Sprintf("High TTFB: %.0fms", *ttfb))
		case *ttfb > 200:
			d := (*ttfb - 200) / 150
			s -= d
			res.Breakdown["ttfb"] = domain.DeductionDetail{Value: *ttfb, Deduction: round1(d)}
		default:
			res.Breakdown["ttfb"] = domain.DeductionDetail{Value: *ttfb, Deduction: 0}
		}
	}

	// FCP: <1800ms good, <3000ms moderate, >3000ms slow
	if fcp := m.FCPMs; fcp != nil {
		switch {
		case *fcp > 3000:
			d := math.Min(30, (*fcp-3000)/500)
			s -= d
			res.Breakdown["fcp"] = domain.DeductionDetail{Value: *fcp, Deduction: round1(d)}
			res.SlowIndicators = append(res.SlowIndicators, fmt.Sprintf("Slow FCP: %.1fs", *fcp/1000))
		case *fcp > 1800:
			d := (*fcp - 1800) / 400
			s -= d
			res.Breakdown["fcp"] = domain.DeductionDetail{Value: *fcp, Deduction: round1(d)}
		default:
			res.Breakdown["fcp"] = domain.DeductionDetail{Value: *fcp, Deduction: 0}
		}
	}

	// LCP: <2500ms good, <4000ms moderate, >4000ms slow
	if lcp := m.LCPMs; lcp != nil {
		switch {
		case *lcp > 4000:
			d := math.Min(30, (*lcp-4000)/500)
			s -= d
			res.Breakdown["lcp"] = domain.DeductionDetail{Value: *lcp, Deduction: round1(d)}
			res.SlowIndicators = append(res.SlowIndicators, fmt.Sprintf("Slow LCP: %.1fs", *lcp/1000))
		case *lcp > 2500:
			d := (*lcp - 2500) / 500
			s -= d
			res.Breakdown["lcp"] = domain.DeductionDetail{Value: *lcp, Deduction: round1(d)}
		default:
			res.Breakdown["lcp"] = domain.DeductionDetail{Value: *lcp, Deduction: 0}
		}
	}

	if load := m.LoadEventEndMs; load != nil {
		if *load > 5000 {
			d := math.Min(20, (*load-5000)/1000)
			s -= d
			res.Breakdown["load_time"] = domain.DeductionDetail{Value: *load, Deduction: round1(d)}
			res.SlowIndicators = append(res.SlowIndicators, fmt.Sprintf("High total load: %.1fs", *load/1000))
		} else {
			res.Breakdown["load_time"] = domain.DeductionDetail{Value: *load, Deduction: 0}
		}
	}

	blocking := 0
	if m.RenderBlocking != nil {
		blocking = m.RenderBlocking.Scripts + m.RenderBlocking.Stylesheets
	}
	if blocking > 5 {
		d := math.Min(10, float64(blocking-5))
		s -= d
		res.Breakdown["render_blocking"] = domain.DeductionDetail{Count: blocking, Deduction: round1(d)}
		res.SlowIndicators = append(res.SlowIndicators, fmt.Sprintf("%d render-blocking resources", blocking))
	} else {
		res.Breakdown["render_blocking"] = domain.DeductionDetail{Count: blocking, Deduction: 0}
	}

	res.Score = round1(math.Max(0, math.Min(100, s)))
	res.Grade = score.RiskCategory(res.Score)
	return res
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
