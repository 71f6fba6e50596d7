package adapter

import "fmt"

// Ram is an in-memory [Adapter] backed by a single byte slice. It is the
// reference adapter used by the store's own tests and is suitable for
// embedded targets with a static RAM buffer.
type Ram struct {
	mem []byte
}

// NewRam allocates a Ram adapter of the given size, zero-filled.
func NewRam(size int) *Ram {
	return &Ram{mem: make([]byte, size)}
}

// NewRamFromBytes wraps an existing slice without copying. Writes through
// the adapter mutate buf in place.
func NewRamFromBytes(buf []byte) *Ram {
	return &Ram{mem: buf}
}

// Bytes returns the backing slice. Callers must not retain it across
// concurrent adapter use.
func (r *Ram) Bytes() []byte {
	return r.mem
}

// Read implements [Adapter].
func (r *Ram) Read(addr uint32, buf []byte) error {
	end := uint64(addr) + uint64(len(buf))
	if end > uint64(len(r.mem)) {
		return fmt.Errorf("adapter: read [%d,%d) exceeds max address %d", addr, end, len(r.mem))
	}
	copy(buf, r.mem[addr:uint32(end)])
	return nil
}

// Write implements [Adapter].
func (r *Ram) Write(addr uint32, bytes []byte) error {
	end := uint64(addr) + uint64(len(bytes))
	if end > uint64(len(r.mem)) {
		return fmt.Errorf("adapter: write [%d,%d) exceeds max address %d", addr, end, len(r.mem))
	}
	copy(r.mem[addr:uint32(end)], bytes)
	return nil
}

// MaxAddress implements [Adapter].
func (r *Ram) MaxAddress() uint32 {
	return uint32(len(r.mem))
}

var _ Adapter = (*Ram)(nil)
