// Package ledger tracks candidate ids that received a terminal decision in
// the current run. The set grows monotonically and is reset only on an
// explicit full-rescan directive.
package ledger

import "sync"

// Ledger is an in-run dedup set. Safe for concurrent use; the orchestrator
// is single-flight but status queries may read concurrently.
type Ledger struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func New() *Ledger {
	return &Ledger{ids: make(map[string]struct{})}
}

// Seen reports whether the id already received a terminal decision.
func (l *Ledger) Seen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Mark records a terminal decision for the id. Marking an already-seen id is
// a no-op.
func (l *Ledger) Mark(id string) {
	if id == "" {
		return
	}
	l.mu.Lock()
	l.ids[id] = struct{}{}
	l.mu.Unlock()
}

// Len returns the number of decided ids.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Reset clears the ledger. Only an explicit operator full-rescan directive
// should call this.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.ids = make(map[string]struct{})
	l.mu.Unlock()
}
