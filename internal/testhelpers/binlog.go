// Package testhelpers builds synthetic ArduPilot-style .bin logs for unit
// and integration tests, mirroring the fixtures original_source/tests
// builds in Python (conftest.py's build_fmt_message/build_data_message).
package testhelpers

import (
	"bytes"
	"encoding/binary"
)

const (
	syncByte0 = 0xA3
	syncByte1 = 0x95
	fmtTypeID = 0x80
)

// BuildFMTMessage returns the 89-byte wire encoding of one FMT record.
func BuildFMTMessage(typeID uint8, name string, arduFormat string, fieldNamesCSV string, messageLength uint8) []byte {
	buf := make([]byte, 89)
	buf[0], buf[1], buf[2] = syncByte0, syncByte1, fmtTypeID
	buf[3] = typeID
	buf[4] = messageLength
	copy(buf[5:9], padRight(name, 4))
	copy(buf[9:25], padRight(arduFormat, 16))
	copy(buf[25:89], padRight(fieldNamesCSV, 64))
	return buf
}

// BuildDataMessage returns sync+type_id+payload for a non-FMT message.
func BuildDataMessage(typeID uint8, payload []byte) []byte {
	out := make([]byte, 0, 3+len(payload))
	out = append(out, syncByte0, syncByte1, typeID)
	out = append(out, payload...)
	return out
}

func padRight(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// TSTMessage is one synthetic "TST" record: IffZ == uint32,float32,float32,64-byte blob.
type TSTMessage struct {
	TimeUS uint32
	Val1   float32
	Val2   float32
	Note   string
}

// BuildTSTPayload packs one TSTMessage's fields little-endian, matching the
// "IffZ" ardu_format from spec.md §8 scenario 1.
func BuildTSTPayload(m TSTMessage) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, m.TimeUS)
	binary.Write(&buf, binary.LittleEndian, m.Val1)
	binary.Write(&buf, binary.LittleEndian, m.Val2)
	note := make([]byte, 64)
	copy(note, m.Note)
	buf.Write(note)
	return buf.Bytes()
}

// TSTMessageLength is the total on-wire length of a TST message: 3-byte
// header + 4 (uint32) + 4 (float32) + 4 (float32) + 64 (blob).
const TSTMessageLength = 3 + 4 + 4 + 4 + 64

// BuildSyntheticLog assembles the canonical synthetic log from spec.md §8
// scenario 1: one TST FMT record (type_id 200) followed by the given
// messages, in order.
func BuildSyntheticLog(messages []TSTMessage) []byte {
	var out bytes.Buffer
	out.Write(BuildFMTMessage(200, "TST", "IffZ", "TimeUS,Val1,Val2,Note", TSTMessageLength))
	for _, m := range messages {
		out.Write(BuildDataMessage(200, BuildTSTPayload(m)))
	}
	return out.Bytes()
}

// DefaultSyntheticMessages returns the exact three messages spec.md §8
// scenario 1 specifies.
func DefaultSyntheticMessages() []TSTMessage {
	return []TSTMessage{
		{TimeUS: 1000, Val1: 1.234567, Val2: -2.7182818, Note: "hello"},
		{TimeUS: 1010, Val1: 3.141592, Val2: 0.0001234, Note: "world"},
		{TimeUS: 1020, Val1: 10.0, Val2: 20.5, Note: ""},
	}
}

// TSTAlphabetConfig returns the ardu_to_struct/scale_factors/round_fields
// configuration needed to decode TST messages, in the shape
// wire.NewAlphabet expects.
func TSTAlphabetConfig() (arduToStruct map[string]string, scaleFactors map[string]float64, roundFields []string) {
	return map[string]string{
			"I": "uint32",
			"f": "float32",
			"Z": "string64",
		}, map[string]float64{}, []string{}
}
