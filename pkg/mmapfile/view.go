// Package mmapfile provides a read-only byte view over a log file, backed
// by a memory-mapped region where the platform supports it. Each View is
// safe for concurrent reads; it carries no mutable state.
package mmapfile

import "os"

// ByteView is a read-only, randomly-addressable view over a file's bytes.
// It satisfies the shared-immutable-resource requirement spec.md §5
// describes for the byte view the frame scanner and segment decoder read.
type ByteView interface {
	// Bytes returns the full backing slice. Callers must not mutate it.
	Bytes() []byte
	// Size returns the length of the view in bytes.
	Size() int
	// Close releases any underlying OS resources (mapping or file handle).
	Close() error
}

// Open opens path read-only and returns a ByteView over its entire
// contents, preferring a memory-mapped view where the platform supports it
// (see view_unix.go) and falling back to a single buffered read otherwise
// (see view_other.go).
func Open(path string) (ByteView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return openView(f, info.Size())
}
