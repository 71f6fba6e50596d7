package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by [OpenFile] when the file is already locked
// by another process.
var ErrWouldBlock = errors.New("adapter: file is locked by another process")

// File is an os-file-backed [Adapter]. It holds an exclusive flock(2) guard
// on the underlying file for its entire lifetime, reflecting the store's
// single-writer-owns-its-adapter model (§5): at most one File may be open
// on a given path at a time.
type File struct {
	f      *os.File
	size   uint32
	locked bool
}

// OpenFile opens (creating if necessary) the file at path and grows it to
// size bytes if it is smaller, returning a [File] adapter holding an
// exclusive lock for size bytes of address space.
//
// Returns [ErrWouldBlock] if another process already holds the lock.
func OpenFile(path string, size uint32) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("adapter: opening %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrWouldBlock
		}
		return nil, fmt.Errorf("adapter: locking %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		return nil, fmt.Errorf("adapter: stat %s: %w", path, err)
	}

	if uint32(info.Size()) < size {
		if err := f.Truncate(int64(size)); err != nil {
			_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
			_ = f.Close()
			return nil, fmt.Errorf("adapter: truncating %s to %d: %w", path, size, err)
		}
	}

	return &File{f: f, size: size, locked: true}, nil
}

// Read implements [Adapter].
func (fa *File) Read(addr uint32, buf []byte) error {
	end := uint64(addr) + uint64(len(buf))
	if end > uint64(fa.size) {
		return fmt.Errorf("adapter: read [%d,%d) exceeds max address %d", addr, end, fa.size)
	}
	if _, err := fa.f.ReadAt(buf, int64(addr)); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("adapter: read at %d: %w", addr, err)
	}
	return nil
}

// Write implements [Adapter].
func (fa *File) Write(addr uint32, bytes []byte) error {
	end := uint64(addr) + uint64(len(bytes))
	if end > uint64(fa.size) {
		return fmt.Errorf("adapter: write [%d,%d) exceeds max address %d", addr, end, fa.size)
	}
	if _, err := fa.f.WriteAt(bytes, int64(addr)); err != nil {
		return fmt.Errorf("adapter: write at %d: %w", addr, err)
	}
	return nil
}

// MaxAddress implements [Adapter].
func (fa *File) MaxAddress() uint32 {
	return fa.size
}

// Sync flushes pending writes to stable storage. The store core never
// calls this itself (§5: "if a caller demands durability, the adapter
// itself must flush"); callers that need durability after a mutation
// should call Sync explicitly.
func (fa *File) Sync() error {
	return fa.f.Sync()
}

// Snapshot atomically writes the entire current contents of the store file
// to dstPath, using a temp-file-then-rename so a reader of dstPath never
// observes a partial snapshot.
func (fa *File) Snapshot(dstPath string) error {
	buf := make([]byte, fa.size)
	if err := fa.Read(0, buf); err != nil {
		return fmt.Errorf("adapter: reading snapshot source: %w", err)
	}
	if err := atomic.WriteFile(dstPath, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("adapter: writing snapshot %s: %w", dstPath, err)
	}
	return nil
}

// Close releases the flock guard and closes the file descriptor.
//
// Close is idempotent.
func (fa *File) Close() error {
	if fa.f == nil {
		return nil
	}

	var unlockErr error
	if fa.locked {
		unlockErr = unix.Flock(int(fa.f.Fd()), unix.LOCK_UN)
		fa.locked = false
	}

	closeErr := fa.f.Close()
	fa.f = nil

	if unlockErr != nil {
		return fmt.Errorf("adapter: unlocking: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("adapter: closing: %w", closeErr)
	}
	return nil
}

var _ Adapter = (*File)(nil)
