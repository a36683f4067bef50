package crawl

import "time"

// ETATracker keeps a running record of per-page scan durations so the
// progress callback can report a rolling average and time remaining.
type ETATracker struct {
	pageTimes []time.Duration
}

// Record adds one page's elapsed scan time.
func (t *ETATracker) Record(elapsed time.Duration) {
	t.pageTimes = append(t.pageTimes, elapsed)
}

// AvgPageMS returns the mean page time in milliseconds, 0 when nothing
// has been recorded yet.
func (t *ETATracker) AvgPageMS() float64 {
	if len(t.pageTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range t.pageTimes {
		total += d
	}
	avg := total / time.Duration(len(t.pageTimes))
	return float64(avg.Microseconds()) / 1000.0
}

// ETASeconds estimates seconds remaining for the given number of pending
// pages. Nil when no timing data exists or nothing remains.
func (t *ETATracker) ETASeconds(remaining int) *float64 {
	if len(t.pageTimes) == 0 || remaining <= 0 {
		return nil
	}
	eta := t.AvgPageMS() / 1000.0 * float64(remaining)
	// one decimal, matches the progress payload precision
	rounded := float64(int(eta*10+0.5)) / 10
	return &rounded
}
