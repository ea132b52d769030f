// Package frame locates message starts in a flight log byte view: the
// two-byte sync marker, the FMT-message special case, and the FMT record's
// fixed internal layout.
package frame

// Sync marker and FMT framing constants (spec.md §4.2, §6).
const (
	SyncByte0 = 0xA3
	SyncByte1 = 0x95

	// FMTTypeID is the reserved type_id for format-definition records.
	FMTTypeID = 0x80
	// FMTMessageLength is the fixed on-wire size of every FMT record.
	FMTMessageLength = 89
)

// FMT record field offsets, relative to the start of the sync marker
// (spec.md §4.2's layout table).
const (
	fmtOffsetDeclaredTypeID     = 3
	fmtOffsetDeclaredMessageLen = 4
	fmtOffsetName               = 5
	fmtNameLen                  = 4
	fmtOffsetArduFormat         = 9
	fmtArduFormatLen            = 16
	fmtOffsetFieldNames         = 25
	fmtFieldNamesLen            = 64
)
