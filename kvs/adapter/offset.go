package adapter

import "fmt"

// Offset wraps an [Adapter] and translates every address by a fixed
// shift, exposing a window [0, size) onto inner's
// [shift, shift+size) range.
//
// This is the "directed wrapper may translate addresses by a fixed
// offset" adapter referenced in the adapter contract: it lets several
// independent stores share one physical medium (for example, a small
// store living past a boot-loader region on the same flash chip) without
// the core needing any notion of a base address.
type Offset struct {
	inner Adapter
	shift uint32
	size  uint32
}

// NewOffset wraps inner so that address 0 maps to inner address shift, and
// the window is size bytes long. size must fit within inner's remaining
// space after shift.
func NewOffset(inner Adapter, shift, size uint32) (*Offset, error) {
	if uint64(shift)+uint64(size) > uint64(inner.MaxAddress()) {
		return nil, fmt.Errorf("adapter: offset window [%d,%d) exceeds inner max address %d",
			shift, uint64(shift)+uint64(size), inner.MaxAddress())
	}
	return &Offset{inner: inner, shift: shift, size: size}, nil
}

// Read implements [Adapter].
func (o *Offset) Read(addr uint32, buf []byte) error {
	if err := o.checkRange(addr, len(buf)); err != nil {
		return err
	}
	return o.inner.Read(addr+o.shift, buf)
}

// Write implements [Adapter].
func (o *Offset) Write(addr uint32, bytes []byte) error {
	if err := o.checkRange(addr, len(bytes)); err != nil {
		return err
	}
	return o.inner.Write(addr+o.shift, bytes)
}

// MaxAddress implements [Adapter].
func (o *Offset) MaxAddress() uint32 {
	return o.size
}

func (o *Offset) checkRange(addr uint32, n int) error {
	end := uint64(addr) + uint64(n)
	if end > uint64(o.size) {
		return fmt.Errorf("adapter: access [%d,%d) exceeds window size %d", addr, end, o.size)
	}
	return nil
}

var _ Adapter = (*Offset)(nil)
