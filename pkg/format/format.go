// Package format holds the per-message-type layout descriptors discovered
// during the FMT pass, and the registry that maps a type_id to its
// descriptor.
package format

import "github.com/dbehnke/adlog-decoder/pkg/wire"

// Descriptor is one declared message type's layout, as announced by an FMT
// record (spec.md §3). Once inserted into a Registry it is treated as
// immutable; callers must not mutate a Descriptor obtained from Lookup.
type Descriptor struct {
	TypeID        uint8
	Name          string
	ArduFormat    string
	FieldNames    []string
	WireFormat    []wire.Primitive
	PayloadSize   int
	MessageLength int
}

// HasWireFormat reports whether the descriptor carries a compiled wire
// layout. Descriptors parsed from FMT records always do (unknown format
// characters compile to wire.PrimNone); a nil WireFormat only occurs in a
// Descriptor built by other means, and Registry.Insert accepts it as is.
func (d *Descriptor) HasWireFormat() bool {
	return d.WireFormat != nil
}
