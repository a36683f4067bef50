package browser

import (
	"math/rand"
	"sync"
)

// AgentRotator hands out user agent strings for new browser sessions so a
// long scan does not present a single fingerprint to every page.
type AgentRotator struct {
	mu         sync.Mutex
	userAgents []string
	rng        *rand.Rand
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// NewAgentRotator builds a rotator over the given agents, falling back to a
// small built-in set when none are configured.
func NewAgentRotator(agents []string, seed int64) *AgentRotator {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &AgentRotator{
		userAgents: agents,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns a random user agent string.
func (r *AgentRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userAgents[r.rng.Intn(len(r.userAgents))]
}
