package decode

import "sync"

// WarningSink accumulates free-form diagnostic strings for one decoder
// instance (spec.md §3/§7: "append-only for the parser's lifetime"). It is
// safe for concurrent use so a single sink may be shared within one
// worker's goroutines, though the coordinator gives each worker its own
// sink. The coordinator concatenates the sinks' contents into its result in
// segment order, without deduplicating or reordering them (spec.md §5).
type WarningSink struct {
	mu    sync.Mutex
	items []string
}

// NewWarningSink returns an empty sink.
func NewWarningSink() *WarningSink {
	return &WarningSink{}
}

// Add appends a warning.
func (w *WarningSink) Add(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, msg)
}

// All returns a snapshot of every warning added so far, in order.
func (w *WarningSink) All() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.items))
	copy(out, w.items)
	return out
}

// Len reports how many warnings have been recorded.
func (w *WarningSink) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
