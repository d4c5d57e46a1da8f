package pipeline

import "sync"

// Aggregator collects outcomes from concurrent workers. Outcomes are
// appended under a mutex and never mutated afterwards.
type Aggregator struct {
	mu       sync.Mutex
	outcomes []JobOutcome
	errors   int
}

// NewAggregator returns an Aggregator sized for n outcomes.
func NewAggregator(n int) *Aggregator {
	return &Aggregator{outcomes: make([]JobOutcome, 0, n)}
}

// Add records o and returns the running count and error count, for
// progress reporting.
func (a *Aggregator) Add(o JobOutcome) (count, errors int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, o)
	if !o.OK() {
		a.errors++
	}
	return len(a.outcomes), a.errors
}

// Outcomes returns a copy of everything recorded so far, in arrival order.
func (a *Aggregator) Outcomes() []JobOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]JobOutcome, len(a.outcomes))
	copy(out, a.outcomes)
	return out
}

// Failures returns the outcomes with a diagnostic, in arrival order.
func (a *Aggregator) Failures() []JobOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []JobOutcome
	for _, o := range a.outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Stats derives RunStats from the recorded outcomes.
func (a *Aggregator) Stats() RunStats {
	return computeStats(a.Outcomes())
}
