// Package costs accumulates token and cost telemetry across concurrent
// translations. One Aggregator instance is shared by every translator in
// the process; all writers go through its single mutex so a snapshot taken
// mid-run is always internally consistent.
package costs

import "sync"

// Totals is a consistent copy of the accumulated telemetry. All fields are
// monotonically non-decreasing except through an explicit Reset.
type Totals struct {
	Cost             float64
	Tokens           int
	PromptTokens     int
	CompletionTokens int
	Requests         int
}

// Aggregator is a concurrency-safe accumulator of per-request usage.
type Aggregator struct {
	mu     sync.Mutex
	totals Totals
}

// NewAggregator returns a zeroed Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record adds one metered request's usage. It is called once per translator
// attempt that produced a response; transport failures with no response are
// not recorded.
func (a *Aggregator) Record(promptTokens, completionTokens int, cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totals.PromptTokens += promptTokens
	a.totals.CompletionTokens += completionTokens
	a.totals.Tokens += promptTokens + completionTokens
	a.totals.Cost += cost
	a.totals.Requests++
}

// Snapshot returns a copy of the totals reflecting every fully-applied
// Record call so far.
func (a *Aggregator) Snapshot() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totals
}

// Reset zeroes the totals. For test isolation and explicit operator use.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totals = Totals{}
}
