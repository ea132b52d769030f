// Package wire compiles ArduPilot-style format strings into fixed-width
// binary layouts and applies the scale/round transforms the field values
// carry once decoded.
package wire

import "fmt"

// Primitive identifies one fixed-width element of a compiled wire layout.
type Primitive int

const (
	// PrimNone marks an ardu_format character with no entry in the
	// configured alphabet. It contributes zero bytes to the payload.
	PrimNone Primitive = iota
	PrimInt8
	PrimUint8
	PrimInt16
	PrimUint16
	PrimInt32
	PrimUint32
	PrimInt64
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimString4
	PrimString16
	PrimString64
)

// Size returns the on-wire byte width of the primitive.
func (p Primitive) Size() int {
	switch p {
	case PrimInt8, PrimUint8:
		return 1
	case PrimInt16, PrimUint16:
		return 2
	case PrimInt32, PrimUint32, PrimFloat32:
		return 4
	case PrimInt64, PrimUint64, PrimFloat64:
		return 8
	case PrimString4:
		return 4
	case PrimString16:
		return 16
	case PrimString64:
		return 64
	default:
		return 0
	}
}

// String renders a short struct-like token, used only for diagnostics.
func (p Primitive) String() string {
	switch p {
	case PrimInt8:
		return "i8"
	case PrimUint8:
		return "u8"
	case PrimInt16:
		return "i16"
	case PrimUint16:
		return "u16"
	case PrimInt32:
		return "i32"
	case PrimUint32:
		return "u32"
	case PrimInt64:
		return "i64"
	case PrimUint64:
		return "u64"
	case PrimFloat32:
		return "f32"
	case PrimFloat64:
		return "f64"
	case PrimString4:
		return "s4"
	case PrimString16:
		return "s16"
	case PrimString64:
		return "s64"
	default:
		return ""
	}
}

// primitiveByCode maps the configuration-surface primitive codes (spec.md
// §6's "ardu_to_struct" values) onto Primitive constants.
var primitiveByCode = map[string]Primitive{
	"int8":    PrimInt8,
	"uint8":   PrimUint8,
	"int16":   PrimInt16,
	"uint16":  PrimUint16,
	"int32":   PrimInt32,
	"uint32":  PrimUint32,
	"int64":   PrimInt64,
	"uint64":  PrimUint64,
	"float32": PrimFloat32,
	"float64": PrimFloat64,
	"string4": PrimString4,
	"string16": PrimString16,
	"string64": PrimString64,
}

// Alphabet is the configured mapping from an ardu_format character to a
// primitive binary code (spec.md §6's ardu_to_struct), plus the scale
// factors and round-field set that ride alongside it in configuration.
type Alphabet struct {
	charToPrimitive map[byte]Primitive
	scaleFactors    map[byte]float64
	roundFields     map[string]bool
}

// NewAlphabet builds an Alphabet from raw configuration maps. Codes in
// arduToStruct that don't match a known primitive name are ignored (they
// behave the same as an entirely absent character: PrimNone).
func NewAlphabet(arduToStruct map[string]string, scaleFactors map[string]float64, roundFields []string) *Alphabet {
	a := &Alphabet{
		charToPrimitive: make(map[byte]Primitive, len(arduToStruct)),
		scaleFactors:    make(map[byte]float64, len(scaleFactors)),
		roundFields:     make(map[string]bool, len(roundFields)),
	}
	for char, code := range arduToStruct {
		if len(char) != 1 {
			continue
		}
		if prim, ok := primitiveByCode[code]; ok {
			a.charToPrimitive[char[0]] = prim
		}
	}
	for char, factor := range scaleFactors {
		if len(char) != 1 {
			continue
		}
		a.scaleFactors[char[0]] = factor
	}
	for _, f := range roundFields {
		a.roundFields[f] = true
	}
	return a
}

// Compile turns an ardu_format string into its wire layout. Characters with
// no alphabet entry compile to PrimNone and are reported via warn, but do
// not themselves fail compilation (spec.md §6: "unknown characters map to
// the empty binary type and contribute no bytes (warning on decode)").
func (a *Alphabet) Compile(arduFormat string, warn func(string)) []Primitive {
	layout := make([]Primitive, 0, len(arduFormat))
	for i := 0; i < len(arduFormat); i++ {
		c := arduFormat[i]
		prim, ok := a.charToPrimitive[c]
		if !ok {
			if warn != nil {
				warn(fmt.Sprintf("unrecognized ardu_format character %q at position %d", c, i))
			}
			layout = append(layout, PrimNone)
			continue
		}
		layout = append(layout, prim)
	}
	return layout
}

// PayloadSize sums the byte widths of a compiled layout.
func PayloadSize(layout []Primitive) int {
	total := 0
	for _, p := range layout {
		total += p.Size()
	}
	return total
}

// ScaleFactor returns the configured multiplier for an ardu_format
// character, if any.
func (a *Alphabet) ScaleFactor(char byte) (float64, bool) {
	f, ok := a.scaleFactors[char]
	return f, ok
}

// ShouldRound reports whether a decoded field name is in the configured
// round set.
func (a *Alphabet) ShouldRound(fieldName string) bool {
	return a.roundFields[fieldName]
}
