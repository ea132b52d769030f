package frame

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Scanner locates candidate message starts in a byte view and decodes FMT
// records from it (spec.md §4.2). It holds no mutable state beyond the
// slice it was built from, so a single Scanner can be shared by any number
// of readers.
type Scanner struct {
	data []byte
}

// NewScanner wraps a byte slice (typically backed by mmapfile.ByteView).
func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

func (s *Scanner) findSync(from, limit int) int {
	if from >= limit || from < 0 {
		return -1
	}
	window := s.data[from:limit]
	idx := bytes.IndexByte(window, SyncByte0)
	for idx != -1 {
		abs := from + idx
		if abs+1 < len(s.data) && s.data[abs+1] == SyncByte1 {
			return abs
		}
		next := bytes.IndexByte(window[idx+1:], SyncByte0)
		if next == -1 {
			return -1
		}
		idx = idx + 1 + next
	}
	return -1
}

// FMTStarts returns every offset at which an FMT record begins (the
// 3-byte sequence A3 95 80), advancing by FMTMessageLength past each hit so
// adjacent FMT regions are never scanned twice (spec.md §4.2).
func (s *Scanner) FMTStarts() []int {
	var starts []int
	limit := len(s.data)
	position := 0
	for position < limit {
		syncAt := s.findSync(position, limit)
		if syncAt == -1 {
			break
		}
		if syncAt+2 < limit && s.data[syncAt+2] == FMTTypeID {
			starts = append(starts, syncAt)
			position = syncAt + FMTMessageLength
			continue
		}
		position = syncAt + 1
	}
	return starts
}

// ParseFMTAt decodes one candidate FMT record. It returns (nil, false) and
// reports a warning if the record is truncated, if any byte of the name,
// ardu_format or field-name columns is not ASCII, or if the declared name
// fails the ASCII identifier check; an ardu_format character outside the
// configured alphabet is a warning only and does not reject the record
// (spec.md §4.2).
func (s *Scanner) ParseFMTAt(offset int, alphabet *wire.Alphabet, warn func(string)) (*format.Descriptor, bool) {
	if warn == nil {
		warn = func(string) {}
	}
	if offset+FMTMessageLength > len(s.data) {
		warn(fmt.Sprintf("truncated FMT record at offset %d", offset))
		return nil, false
	}

	for _, c := range s.data[offset+fmtOffsetName : offset+FMTMessageLength] {
		if c >= 0x80 {
			warn(fmt.Sprintf("bad FMT at offset %d: non-ASCII byte in name, format or field names", offset))
			return nil, false
		}
	}

	declaredTypeID := s.data[offset+fmtOffsetDeclaredTypeID]
	declaredMessageLength := s.data[offset+fmtOffsetDeclaredMessageLen]

	name := decodeASCII(s.data[offset+fmtOffsetName : offset+fmtOffsetName+fmtNameLen])
	if !nameRegexp.MatchString(name) {
		warn(fmt.Sprintf("bad FMT at offset %d: invalid name %q", offset, name))
		return nil, false
	}

	arduFormat := decodeASCII(s.data[offset+fmtOffsetArduFormat : offset+fmtOffsetArduFormat+fmtArduFormatLen])
	fieldNames := extractFieldNames(s.data[offset+fmtOffsetFieldNames : offset+fmtOffsetFieldNames+fmtFieldNamesLen])

	layout := alphabet.Compile(arduFormat, warn)

	d := &format.Descriptor{
		TypeID:        declaredTypeID,
		Name:          name,
		ArduFormat:    arduFormat,
		FieldNames:    fieldNames,
		WireFormat:    layout,
		PayloadSize:   wire.PayloadSize(layout),
		MessageLength: int(declaredMessageLength),
	}
	return d, true
}

// extractFieldNames implements spec.md §4.2's field-name extraction: the
// portion before the first run of two-or-more NULs, stripped of spaces,
// split on commas, with empty entries discarded.
func extractFieldNames(raw []byte) []string {
	text := decodeASCIIKeepNuls(raw)
	cut := strings.Index(text, "\x00\x00")
	if cut != -1 {
		text = text[:cut]
	}
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, " ", "")

	var names []string
	for _, part := range strings.Split(text, ",") {
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// FindNextMessage returns the next sync offset in [start, limit) such that
// offset+3 <= limit, or (-1, false) if none exists (spec.md §4.2).
func (s *Scanner) FindNextMessage(start, limit int) (int, bool) {
	if limit > len(s.data) {
		limit = len(s.data)
	}
	offset := s.findSync(start, limit)
	if offset == -1 || offset+3 > limit {
		return -1, false
	}
	return offset, true
}

// ValidSyncs scans the whole view for sync markers whose following type_id
// names a known descriptor and whose declared message_length fits within
// the file (spec.md §4.4's valid_syncs input, computed the way
// original_source's find_valid_sync_positions does).
func (s *Scanner) ValidSyncs(registry *format.Registry) []int {
	fileSize := len(s.data)
	var positions []int
	position := 0
	for {
		syncAt := s.findSync(position, fileSize)
		if syncAt == -1 || syncAt+3 > fileSize {
			break
		}
		typeID := s.data[syncAt+2]
		if d, ok := registry.Lookup(typeID); ok {
			if syncAt+d.MessageLength <= fileSize {
				positions = append(positions, syncAt)
			}
		}
		position = syncAt + 1
	}
	return positions
}

// decodeASCII decodes raw to ASCII, dropping invalid bytes, and trims
// leading and trailing NULs; NULs between other characters are kept.
func decodeASCII(raw []byte) string {
	return strings.Trim(decodeASCIIKeepNuls(raw), "\x00")
}

// decodeASCIIKeepNuls decodes raw to ASCII ignoring non-ASCII bytes, but
// keeps NUL bytes intact so callers needing to find a NUL run (field-name
// extraction) still can.
func decodeASCIIKeepNuls(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c < 0x80 {
			b.WriteByte(c)
		}
	}
	return b.String()
}
