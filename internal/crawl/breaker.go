package crawl

// Breaker aborts a crawl that keeps failing page after page, before it
// wastes a full run against a blocking or broken target. Only page-level
// navigation failures count; inspector-level degradations do not.
type Breaker struct {
	warnThreshold int
	consecutive   int
	total         int
}

// NewBreaker returns a breaker that warns at warnThreshold consecutive
// failures and trips at twice that.
func NewBreaker(warnThreshold int) *Breaker {
	if warnThreshold < 1 {
		warnThreshold = 1
	}
	return &Breaker{warnThreshold: warnThreshold}
}

// Failure records one page-level failure. It returns warn when the warn
// threshold is reached and abort when the consecutive count reaches 2x.
func (b *Breaker) Failure() (warn, abort bool) {
	b.consecutive++
	b.total++
	return b.consecutive == b.warnThreshold, b.consecutive >= 2*b.warnThreshold
}

// Success resets the consecutive counter.
func (b *Breaker) Success() {
	b.consecutive = 0
}

// Consecutive returns the current consecutive failure count.
func (b *Breaker) Consecutive() int { return b.consecutive }

// Total returns the total anomaly count for the run.
func (b *Breaker) Total() int { return b.total }
