// Package decode turns one byte range of a flight log, plus a populated
// format registry, into an ordered sequence of decoded messages — spec.md
// §4.3's Single-Segment Decoder.
package decode

import (
	"fmt"

	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/frame"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

// Resync advance policy (spec.md §4.3 step 5 / §9's "Open question"): an
// unknown type id advances by exactly one byte, since its length can't be
// trusted; a known-but-malformed frame advances by its declared
// message_length, since the length itself is trustworthy even though the
// payload failed to decode. The asymmetry is deliberate, not an oversight.
const advanceOnUnknownID = 1

// Decoder decodes one contiguous byte range against a fixed registry and
// alphabet. A Decoder holds no state across calls to DecodeSegment beyond
// its warning sink, so the same value may be reused for multiple
// non-overlapping ranges if the caller wants one sink per segment instead
// of per worker.
type Decoder struct {
	view        []byte
	registry    *format.Registry
	scanner     *frame.Scanner
	alphabet    *wire.Alphabet
	nameFilter  format.NameFilter
	roundFloats bool
	warnings    *WarningSink
}

// NewDecoder builds a Decoder over view. registry must already have
// completed FMT discovery and Validate(); alphabet supplies the scale and
// round-field tables. nameFilter may be nil (no filtering).
func NewDecoder(view []byte, registry *format.Registry, alphabet *wire.Alphabet, nameFilter format.NameFilter, roundFloats bool, warnings *WarningSink) *Decoder {
	if warnings == nil {
		warnings = NewWarningSink()
	}
	return &Decoder{
		view:        view,
		registry:    registry,
		scanner:     frame.NewScanner(view),
		alphabet:    alphabet,
		nameFilter:  nameFilter,
		roundFloats: roundFloats,
		warnings:    warnings,
	}
}

// Warnings returns the decoder's warning sink.
func (d *Decoder) Warnings() *WarningSink {
	return d.warnings
}

// DecodeSegment decodes every message whose start lies in
// [segmentStart, segmentEnd), implementing spec.md §4.3's 13-step
// algorithm and its named edge cases.
func (d *Decoder) DecodeSegment(segmentStart, segmentEnd int) []Message {
	var out []Message
	position := segmentStart

	for {
		syncOffset, ok := d.scanner.FindNextMessage(position, segmentEnd)
		if !ok {
			break
		}

		typeID := d.view[syncOffset+2]

		if typeID == frame.FMTTypeID {
			position = syncOffset + frame.FMTMessageLength
			continue
		}

		desc, known := d.registry.Lookup(typeID)
		if !known || !desc.HasWireFormat() {
			d.warnings.Add(fmt.Sprintf("Unknown or uninitialized message ID at offset %d: %d", syncOffset, typeID))
			position = syncOffset + advanceOnUnknownID
			continue
		}

		if !d.nameFilter.Allows(desc.Name) {
			position = syncOffset + desc.MessageLength
			continue
		}

		payloadStart := syncOffset + 3
		payloadEnd := payloadStart + desc.PayloadSize
		if payloadEnd > segmentEnd {
			d.warnings.Add(fmt.Sprintf("truncated %s message at offset %d: need %d payload bytes, only %d available",
				desc.Name, syncOffset, desc.PayloadSize, segmentEnd-payloadStart))
			break
		}

		values, ok := decodePayload(desc.WireFormat, d.view[payloadStart:payloadEnd])
		if !ok {
			d.warnings.Add(fmt.Sprintf("payload decode failed for %s at offset %d", desc.Name, syncOffset))
			position = syncOffset + desc.MessageLength
			continue
		}

		d.scaleValues(desc, values)
		fields := d.pairFields(desc, values, syncOffset)
		if d.roundFloats {
			applyRounding(fields, d.alphabet)
		}

		out = append(out, Message{Type: desc.Name, Fields: fields})
		position = syncOffset + desc.MessageLength
	}

	return out
}

// decodePayload reads one fixed-width value per wire-layout primitive in
// order. It fails only if raw is shorter than the layout demands, which
// should not happen for a payload slice sized from PayloadSize but is
// checked defensively (spec.md §4.3 step 8: "On decode failure emit a
// warning and advance by message_length").
func decodePayload(layout []wire.Primitive, raw []byte) ([]Value, bool) {
	values := make([]Value, len(layout))
	pos := 0
	for i, prim := range layout {
		size := prim.Size()
		if pos+size > len(raw) {
			return nil, false
		}
		values[i] = readPrimitive(prim, raw[pos:pos+size])
		pos += size
	}
	return values, true
}

// scaleValues applies spec.md §4.3 step 9: for each field position with a
// corresponding ardu_format character that carries a scale factor, multiply
// the decoded value.
func (d *Decoder) scaleValues(desc *format.Descriptor, values []Value) {
	for i := range values {
		if i >= len(desc.ArduFormat) {
			continue
		}
		if factor, ok := d.alphabet.ScaleFactor(desc.ArduFormat[i]); ok {
			values[i] = values[i].Scaled(factor)
		}
	}
}

// pairFields implements spec.md §4.3 step 10: pair field names with
// values positionally, truncating to the shorter side on a count mismatch
// (spec.md §7 FieldCountMismatch), warning but still emitting the pairs
// that survive truncation.
func (d *Decoder) pairFields(desc *format.Descriptor, values []Value, offset int) []Field {
	n := len(values)
	if len(desc.FieldNames) < n {
		n = len(desc.FieldNames)
	}
	fields := make([]Field, n)
	for i := 0; i < n; i++ {
		fields[i] = Field{Name: desc.FieldNames[i], Value: values[i]}
	}
	if len(desc.FieldNames) != len(values) {
		d.warnings.Add(fmt.Sprintf("field name/value count mismatch for %s at offset %d: %d names, %d values",
			desc.Name, offset, len(desc.FieldNames), len(values)))
	}
	return fields
}

// applyRounding implements spec.md §4.3 step 12.
func applyRounding(fields []Field, alphabet *wire.Alphabet) {
	for i := range fields {
		if alphabet.ShouldRound(fields[i].Name) {
			fields[i].Value = fields[i].Value.Rounded()
		}
	}
}
