package decode

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

// readPrimitive decodes one fixed-width little-endian field (spec.md §4.3
// step 8 / §6: "Little-endian throughout").
func readPrimitive(prim wire.Primitive, raw []byte) Value {
	switch prim {
	case wire.PrimInt8:
		return intValue(int64(int8(raw[0])))
	case wire.PrimUint8:
		return uintValue(uint64(raw[0]))
	case wire.PrimInt16:
		return intValue(int64(int16(binary.LittleEndian.Uint16(raw))))
	case wire.PrimUint16:
		return uintValue(uint64(binary.LittleEndian.Uint16(raw)))
	case wire.PrimInt32:
		return intValue(int64(int32(binary.LittleEndian.Uint32(raw))))
	case wire.PrimUint32:
		return uintValue(uint64(binary.LittleEndian.Uint32(raw)))
	case wire.PrimInt64:
		return intValue(int64(binary.LittleEndian.Uint64(raw)))
	case wire.PrimUint64:
		return uintValue(binary.LittleEndian.Uint64(raw))
	case wire.PrimFloat32:
		return floatValue(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw))))
	case wire.PrimFloat64:
		return floatValue(math.Float64frombits(binary.LittleEndian.Uint64(raw)))
	case wire.PrimString4, wire.PrimString16, wire.PrimString64:
		return stringValue(decodeASCIIBlob(raw))
	default:
		return noneValue()
	}
}

// decodeASCIIBlob decodes raw as ASCII, ignoring invalid bytes, and strips
// trailing NULs (spec.md §4.3 step 11).
func decodeASCIIBlob(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c < 0x80 {
			b.WriteByte(c)
		}
	}
	return strings.TrimRight(b.String(), "\x00")
}
