//go:build unix

package mmapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapView is a POSIX memory-mapped byte view, opened PROT_READ/MAP_SHARED
// so the kernel can page it in lazily and share physical pages across
// workers that each open their own mapping of the same file (spec.md §5:
// "parallel-worker mode: each worker gets its own byte view of the same
// file").
type mmapView struct {
	data []byte
}

func openView(f *os.File, size int64) (ByteView, error) {
	if size == 0 {
		return &mmapView{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	return &mmapView{data: data}, nil
}

func (v *mmapView) Bytes() []byte { return v.data }
func (v *mmapView) Size() int     { return len(v.data) }

func (v *mmapView) Close() error {
	if v.data == nil {
		return nil
	}
	err := unix.Munmap(v.data)
	v.data = nil
	return err
}
