// Package alloc implements the store's free-space allocator: a fixed-size
// array of disjoint [start, end) slots over the data region, supporting
// anonymous allocation (max/min/first fit) and directed allocation
// (reserve a specific address range, splitting an existing slot).
package alloc

// Strategy selects how [Allocator.Alloc] picks a slot for an anonymous
// request (directed requests go through [Allocator.AllocAt]).
type Strategy int

const (
	// MaxFit picks the largest slot that fits, reducing fragmentation of
	// large runs. This is the default.
	MaxFit Strategy = iota
	// MinFit picks the smallest slot that fits (best-fit).
	MinFit
	// FirstFit picks the first slot (in array order) that fits.
	FirstFit
)

// slot is one [start, end) free range. A slot with start == end is an
// unused array entry.
type slot struct {
	start uint32
	end   uint32
}

func (s slot) size() uint32 {
	return s.end - s.start
}

// Allocator is a fixed-capacity free-list over the byte addresses
// [start, start+space) given to [New]; addresses are used as given, with
// no translation.
//
// Allocator holds no heap-allocated backing beyond its fixed slots array;
// cap(slots) never grows past what New was constructed with.
type Allocator struct {
	slots    []slot
	strategy Strategy
}

// New creates an allocator with the given number of slots, all of
// [start, start+space) free. numSlots == 0 produces a read-only allocator: every Alloc
// and Free call is a no-op failure.
func New(numSlots int, start, space uint32, strategy Strategy) *Allocator {
	slots := make([]slot, numSlots)
	if numSlots > 0 {
		slots[0] = slot{start: start, end: start + space}
	}
	return &Allocator{slots: slots, strategy: strategy}
}

// Reset clears every slot to unused, then (if numSlots > 0) reinstates a
// single free slot covering [start, start+space). Used when rebuilding the
// free list from scratch (lazy rebuild on first mutation, §4.3.1).
func (a *Allocator) Reset(start, space uint32) {
	for i := range a.slots {
		a.slots[i] = slot{}
	}
	if len(a.slots) > 0 {
		a.slots[0] = slot{start: start, end: start + space}
	}
}

// Alloc reserves size bytes anonymously, returning the start address.
// Returns ok == false if no slot is large enough.
func (a *Allocator) Alloc(size uint32) (addr uint32, ok bool) {
	idx := -1

	switch a.strategy {
	case MinFit:
		var best uint32
		for i, s := range a.slots {
			if s.size() < size {
				continue
			}
			if idx == -1 || s.size() < best {
				idx, best = i, s.size()
			}
		}
	case FirstFit:
		for i, s := range a.slots {
			if s.size() >= size {
				idx = i
				break
			}
		}
	default: // MaxFit
		var best uint32
		for i, s := range a.slots {
			if s.size() < size {
				continue
			}
			if idx == -1 || s.size() > best {
				idx, best = i, s.size()
			}
		}
	}

	if idx == -1 {
		return 0, false
	}

	addr = a.slots[idx].start
	a.slots[idx].start += size
	return addr, true
}

// AllocAt reserves exactly [addr, addr+size) (directed allocation).
//
// Three cases, per spec §4.2:
//   - addr == slot.start: advance the slot's start.
//   - addr > slot.start with enough residual room: split the slot,
//     shrinking it to [slot.start, addr) and claiming an unused entry for
//     [addr+size, slot.end). Fails if no unused entry is available.
//   - no containing slot with enough room: fails.
func (a *Allocator) AllocAt(addr, size uint32) bool {
	containing := -1
	for i, s := range a.slots {
		if addr >= s.start && addr < s.end && s.end-addr >= size {
			containing = i
			break
		}
	}
	if containing == -1 {
		return false
	}

	s := a.slots[containing]
	if addr == s.start {
		a.slots[containing].start += size
		return true
	}

	// Split: shrink this slot to [s.start, addr), carve [addr+size, s.end)
	// into an unused entry.
	unused := -1
	for i, o := range a.slots {
		if o.size() == 0 {
			unused = i
			break
		}
	}
	if unused == -1 {
		return false
	}

	a.slots[containing].end = addr
	a.slots[unused] = slot{start: addr + size, end: s.end}
	return true
}

// Free releases [addr, addr+size), coalescing with a neighboring slot when
// possible:
//   - a slot ending at addr is extended to cover the freed range;
//   - else a slot starting at addr+size is extended backward;
//   - else an unused entry claims [addr, addr+size) exactly.
//
// Returns false if none of the above applies (every entry is occupied and
// non-adjacent) --- the free list is exhausted.
func (a *Allocator) Free(addr, size uint32) bool {
	end := addr + size

	for i, s := range a.slots {
		if s.size() > 0 && s.end == addr {
			a.slots[i].end = end
			return true
		}
	}

	for i, s := range a.slots {
		if s.size() > 0 && s.start == end {
			a.slots[i].start = addr
			return true
		}
	}

	for i, s := range a.slots {
		if s.size() == 0 {
			a.slots[i] = slot{start: addr, end: end}
			return true
		}
	}

	return false
}

// Ranges returns the currently free [start, end) ranges, in array order,
// skipping unused entries. Used by tests and diagnostics to verify the
// free list covers exactly the complement of occupied records (I2).
func (a *Allocator) Ranges() [][2]uint32 {
	var out [][2]uint32
	for _, s := range a.slots {
		if s.size() > 0 {
			out = append(out, [2]uint32{s.start, s.end})
		}
	}
	return out
}

// NumSlots returns the allocator's fixed slot-array capacity.
func (a *Allocator) NumSlots() int {
	return len(a.slots)
}
