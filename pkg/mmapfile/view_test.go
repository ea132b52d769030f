package mmapfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_RoundTripsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.bin")
	want := []byte{0xA3, 0x95, 0x80, 0x01, 0x02, 0x03}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	view, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer view.Close()

	if view.Size() != len(want) {
		t.Fatalf("Size() = %d, want %d", view.Size(), len(want))
	}
	got := view.Bytes()
	if len(got) != len(want) {
		t.Fatalf("Bytes() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bytes()[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	view, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer view.Close()

	if view.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", view.Size())
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/path/log.bin"); err == nil {
		t.Fatal("expected error opening a nonexistent file")
	}
}
