package mg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
)

const ioBufferSize = 1 << 20

// Write Serializes t as consecutive EntrySize records, without header
func Write(w io.Writer, t Table) error {
	bw := bufio.NewWriterSize(w, ioBufferSize)
	buf := make([]byte, 0, EntrySize)
	for i := range t {
		if _, err := bw.Write(t[i].AppendBinary(buf[:0])); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read Reads up to expected records from r.
// If r ends early the entries read so far are returned together with a *PartialTableError. A trailing incomplete record is discarded.
func Read(r io.Reader, expected int) (Table, error) {
	if expected <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, expected)
	}

	br := bufio.NewReaderSize(r, ioBufferSize)
	t := make(Table, expected)
	var buf [EntrySize]byte
	for i := range t {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return t[:i:i], &PartialTableError{Read: i, Expected: expected}
			}
			return t[:i:i], fmt.Errorf("%w: %w", ErrStorage, err)
		}
		_ = t[i].FromBytes(buf[:])
	}
	return t, nil
}

// Save Writes t to path, creating parent directories as needed.
// The table is written to a temporary file in the same directory and renamed over path, so readers that mapped
// the previous file keep a consistent view and a failed write leaves the previous file in place.
func Save(t Table, path string) (err error) {
	startTime := time.Now()

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = Write(f, t); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	utils.Debugf("mG", "saved %d entries (%s) to %s in %s", len(t), utils.ByteUnits(uint64(len(t))*EntrySize), path, time.Since(startTime))
	return nil
}

// Load Reads expected entries from path. See Read for short files.
func Load(path string, expected int) (Table, error) {
	startTime := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer f.Close()

	t, err := Read(f, expected)
	if err != nil {
		return t, err
	}

	utils.Debugf("mG", "loaded %d entries from %s in %s", len(t), path, time.Since(startTime))
	return t, nil
}

// LoadDefault Load from DefaultPath
func LoadDefault(expected int) (Table, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path, expected)
}
