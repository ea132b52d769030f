//go:build !unix

package mmapfile

import "os"

// bufferView is the portable fallback: the whole file read into memory
// once. Semantically equivalent to a mapped view for our read-only,
// random-access use (spec.md §6: "memory mapping recommended... equivalent
// to random-access read").
type bufferView struct {
	data []byte
}

func openView(f *os.File, size int64) (ByteView, error) {
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && size > 0 {
		return nil, err
	}
	return &bufferView{data: data}, nil
}

func (v *bufferView) Bytes() []byte { return v.data }
func (v *bufferView) Size() int     { return len(v.data) }
func (v *bufferView) Close() error  { v.data = nil; return nil }
