package frame

import (
	"testing"

	"github.com/dbehnke/adlog-decoder/internal/testhelpers"
	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

func testAlphabet() *wire.Alphabet {
	toStruct, scales, round := testhelpers.TSTAlphabetConfig()
	return wire.NewAlphabet(toStruct, scales, round)
}

func TestScanner_FMTStarts_FindsSingleRecord(t *testing.T) {
	data := testhelpers.BuildSyntheticLog(testhelpers.DefaultSyntheticMessages())
	s := NewScanner(data)

	starts := s.FMTStarts()
	if len(starts) != 1 || starts[0] != 0 {
		t.Fatalf("FMTStarts() = %v, want [0]", starts)
	}
}

func TestScanner_ParseFMTAt_ValidRecord(t *testing.T) {
	data := testhelpers.BuildSyntheticLog(nil)
	s := NewScanner(data)

	var warnings []string
	d, ok := s.ParseFMTAt(0, testAlphabet(), func(w string) { warnings = append(warnings, w) })
	if !ok {
		t.Fatalf("ParseFMTAt(0) failed, warnings=%v", warnings)
	}
	if d.Name != "TST" {
		t.Errorf("Name = %q, want TST", d.Name)
	}
	if d.TypeID != 200 {
		t.Errorf("TypeID = %d, want 200", d.TypeID)
	}
	if d.ArduFormat != "IffZ" {
		t.Errorf("ArduFormat = %q, want IffZ", d.ArduFormat)
	}
	wantFields := []string{"TimeUS", "Val1", "Val2", "Note"}
	if len(d.FieldNames) != len(wantFields) {
		t.Fatalf("FieldNames = %v, want %v", d.FieldNames, wantFields)
	}
	for i, f := range wantFields {
		if d.FieldNames[i] != f {
			t.Errorf("FieldNames[%d] = %q, want %q", i, d.FieldNames[i], f)
		}
	}
	if d.PayloadSize != 4+4+4+64 {
		t.Errorf("PayloadSize = %d, want %d", d.PayloadSize, 4+4+4+64)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestScanner_ParseFMTAt_InvalidName_Rejected(t *testing.T) {
	data := testhelpers.BuildFMTMessage(201, "\x01\x02\x03\x04", "I", "X", 7)
	s := NewScanner(data)

	var warnings []string
	_, ok := s.ParseFMTAt(0, testAlphabet(), func(w string) { warnings = append(warnings, w) })
	if ok {
		t.Fatal("expected ParseFMTAt to reject a non-ASCII-identifier name")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %v", warnings)
	}
}

func TestScanner_ParseFMTAt_UnknownArduFormatChar_WarnsButAccepts(t *testing.T) {
	data := testhelpers.BuildFMTMessage(202, "ODD", "Iq", "TimeUS,Weird", 11)
	s := NewScanner(data)

	var warnings []string
	d, ok := s.ParseFMTAt(0, testAlphabet(), func(w string) { warnings = append(warnings, w) })
	if !ok {
		t.Fatalf("expected record to be accepted despite unknown char, warnings=%v", warnings)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly 1 warning for the unrecognized 'q' character, got %v", warnings)
	}
	if len(d.WireFormat) != 2 || d.WireFormat[1] != wire.PrimNone {
		t.Errorf("WireFormat = %v, want [uint32, PrimNone]", d.WireFormat)
	}
}

func TestScanner_ParseFMTAt_Truncated(t *testing.T) {
	full := testhelpers.BuildFMTMessage(200, "TST", "IffZ", "TimeUS,Val1,Val2,Note", testhelpers.TSTMessageLength)
	data := full[:50]
	s := NewScanner(data)

	var warnings []string
	_, ok := s.ParseFMTAt(0, testAlphabet(), func(w string) { warnings = append(warnings, w) })
	if ok {
		t.Fatal("expected truncated FMT record to be rejected")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %v", warnings)
	}
}

func TestScanner_FindNextMessage(t *testing.T) {
	data := testhelpers.BuildSyntheticLog(testhelpers.DefaultSyntheticMessages())
	s := NewScanner(data)

	offset, ok := s.FindNextMessage(0, len(data))
	if !ok || offset != 0 {
		t.Fatalf("FindNextMessage(0, len) = (%d, %v), want (0, true)", offset, ok)
	}

	// The FMT record occupies [0,89); the first data message starts at 89.
	next, ok := s.FindNextMessage(offset+1, len(data))
	if !ok || next != 89 {
		t.Fatalf("FindNextMessage(1, len) = (%d, %v), want (89, true)", next, ok)
	}

	_, ok = s.FindNextMessage(len(data)-1, len(data))
	if ok {
		t.Fatal("expected no message to fit in the final byte")
	}
}

func TestScanner_ValidSyncs(t *testing.T) {
	data := testhelpers.BuildSyntheticLog(testhelpers.DefaultSyntheticMessages())
	s := NewScanner(data)

	registry := format.NewRegistry()
	d, ok := s.ParseFMTAt(0, testAlphabet(), nil)
	if !ok {
		t.Fatal("setup: ParseFMTAt failed")
	}
	registry.Insert(d)

	syncs := s.ValidSyncs(registry)
	if len(syncs) != 3 {
		t.Fatalf("ValidSyncs() = %v, want 3 entries (one per data message)", syncs)
	}
	want := []int{89, 89 + testhelpers.TSTMessageLength, 89 + 2*testhelpers.TSTMessageLength}
	for i, w := range want {
		if syncs[i] != w {
			t.Errorf("syncs[%d] = %d, want %d", i, syncs[i], w)
		}
	}
}

func TestScanner_ValidSyncs_EmptyWhenNoRegistryMatch(t *testing.T) {
	data := testhelpers.BuildSyntheticLog(testhelpers.DefaultSyntheticMessages())
	s := NewScanner(data)

	syncs := s.ValidSyncs(format.NewRegistry())
	if len(syncs) != 0 {
		t.Fatalf("ValidSyncs() with empty registry = %v, want empty", syncs)
	}
}
