package format

import (
	"fmt"
	"sync"

	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

// Registry maps a declared type_id to its Descriptor. It is the Go
// counterpart of the teacher's peer.PeerManager: a sync.RWMutex-guarded
// map with Insert/Lookup/Count, generalized from "connected peers" to
// "known message layouts."
type Registry struct {
	mu          sync.RWMutex
	descriptors map[uint8]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[uint8]*Descriptor)}
}

// Insert registers a descriptor. A duplicate type_id overwrites the
// previous entry silently — spec.md §4.1: "the last FMT wins."
func (r *Registry) Insert(d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.TypeID] = d
}

// Lookup retrieves a descriptor by type_id.
func (r *Registry) Lookup(typeID uint8) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[typeID]
	return d, ok
}

// Count returns the number of registered descriptors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// All returns a snapshot slice of every registered descriptor. The slice
// and its elements must not be mutated by callers.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	return out
}

// Clone returns an independent Registry holding the same descriptors.
// Descriptors themselves are treated as immutable once inserted, so the
// clone can share the *Descriptor pointers safely — this is how
// parallel-worker mode gives each worker its own registry value without
// copying every field (spec.md §5: "the registry is immutable and
// shareable by value").
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for id, d := range r.descriptors {
		clone.descriptors[id] = d
	}
	return clone
}

// Validate scans every descriptor and reports (via warn) any whose wire
// layout failed to compile, whose computed payload size disagrees with the
// stored PayloadSize, or whose PayloadSize exceeds MessageLength-3.
// Validation never removes or alters a descriptor (spec.md §4.1:
// "Validation is non-destructive").
func (r *Registry) Validate(warn func(string)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if warn == nil {
		warn = func(string) {}
	}
	for id, d := range r.descriptors {
		if d.WireFormat == nil {
			warn(fmt.Sprintf("wire format failed to compile for %s (ID %d)", d.Name, id))
			continue
		}
		computed := wire.PayloadSize(d.WireFormat)
		if computed != d.PayloadSize {
			warn(fmt.Sprintf("payload size mismatch for %s (ID %d): declared %d bytes, computed %d",
				d.Name, id, d.PayloadSize, computed))
		}
		expected := d.MessageLength - 3
		if d.PayloadSize > expected {
			warn(fmt.Sprintf("payload exceeds message length for %s (ID %d): payload %d, message length %d",
				d.Name, id, d.PayloadSize, d.MessageLength))
		}
	}
}
