//go:build unix

package mg

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MappedTable A table backed by a read-only shared memory mapping of a table file
type MappedTable struct {
	Table Table
	data  []byte
}

// mappable The in-memory Entry layout matches the file records only on little-endian hosts without padding
var mappable = unsafe.Sizeof(Entry{}) == EntrySize && binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// Map Maps up to expected entries of path into memory without copying.
// Processes mapping the same file share its page cache. The table must not be used after Close.
// Like Load, a short file yields the available entries and a *PartialTableError.
func Map(path string, expected int) (*MappedTable, error) {
	if expected <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, expected)
	}
	if !mappable {
		t, err := Load(path, expected)
		return &MappedTable{Table: t}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	n := min(int(fi.Size()/EntrySize), expected)
	if n == 0 {
		return &MappedTable{}, &PartialTableError{Read: 0, Expected: expected}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, n*EntrySize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m := &MappedTable{
		// #nosec G103 -- layout checked by mappable
		Table: unsafe.Slice((*Entry)(unsafe.Pointer(unsafe.SliceData(data))), n),
		data:  data,
	}
	if n < expected {
		return m, &PartialTableError{Read: n, Expected: expected}
	}
	return m, nil
}

func (m *MappedTable) Close() error {
	m.Table = nil
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
