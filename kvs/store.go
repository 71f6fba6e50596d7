// Package kvs is a persistent key-value store for constrained,
// byte-addressable storage media (RAM buffers, SPI FRAM/EEPROM, NOR
// flash). See SPEC_FULL.md for the full design.
//
// The store is fixed-capacity, single-writer, and synchronous: every
// operation issues a short, ordered sequence of reads/writes to an
// [adapter.Adapter] and returns. There is no background goroutine, no
// cache, and no retry logic --- see the package's concurrency notes below.
//
// # Basic usage
//
//	a := adapter.NewRam(4096)
//	store, err := kvs.Create(a, kvs.Options{Magic: 0x4b1d, Buckets: 64, Slots: 8})
//	if err != nil { ... }
//	defer store.Close()
//
//	if err := store.Insert([]byte("foo"), []byte("bar")); err != nil { ... }
//	b, err := store.Lookup([]byte("foo"))
//
// # Concurrency
//
// A Store exclusively owns its adapter (§5). It is single-threaded and
// non-reentrant: all operations must run on one goroutine at a time. If a
// caller needs multi-goroutine access, it must serialize externally.
package kvs

import (
	"fmt"

	"github.com/dotcypress/kvs/adapter"
	"github.com/dotcypress/kvs/alloc"
)

// Bucket is a read-only snapshot of a bucket table entry, returned by
// [Store.Lookup] and [Store.Load] so callers can see the true stored
// value length (and detect buffer truncation) without a second call.
type Bucket struct {
	KeyLen  int
	ValLen  int
	Address uint32
	Hash    uint16
}

func (b Bucket) recordLen() uint32 {
	return uint32(b.KeyLen) + uint32(b.ValLen)
}

func bucketToEntry(b Bucket) bucketEntry {
	return bucketEntry{
		valLen:  uint16(b.ValLen),
		keyLen:  uint8(b.KeyLen),
		address: b.Address,
		hash:    b.Hash,
	}
}

func entryToBucket(e bucketEntry) Bucket {
	return Bucket{
		KeyLen:  int(e.keyLen),
		ValLen:  int(e.valLen),
		Address: e.address,
		Hash:    e.hash,
	}
}

// Store is the persistent key-value store handle. Construct with [Create]
// or [Open].
type Store struct {
	a         adapter.Adapter
	opts      Options
	dataStart uint32
	allocStr  alloc.Strategy
	alloc     *alloc.Allocator
	rebuilt   bool
	closed    bool
}

func dataStart(buckets int) uint32 {
	return headerSize + uint32(buckets)*bucketSize
}

func toAllocStrategy(s AllocStrategy) alloc.Strategy {
	switch s {
	case AllocMinFit:
		return alloc.MinFit
	case AllocFirstFit:
		return alloc.FirstFit
	default:
		return alloc.MaxFit
	}
}

// newStore wires up (but does not rebuild) a Store's in-memory state for
// an already-validated header/options pair.
func newStore(a adapter.Adapter, opts Options) *Store {
	ds := dataStart(opts.Buckets)
	strat := toAllocStrategy(opts.Strategy)
	return &Store{
		a:         a,
		opts:      opts,
		dataStart: ds,
		allocStr:  strat,
		alloc:     alloc.New(opts.Slots, ds, a.MaxAddress()-ds, strat),
	}
}

// Close releases the Store's logical ownership of its adapter. Every
// error-returning operation on a closed Store returns [ErrStoreClosed],
// except Close itself, which returns nil again; [Store.Keys] and
// [Store.KeysWithPrefix] yield nothing. Close does not
// close the underlying adapter itself --- the caller retains whatever
// Close semantics the adapter type offers (e.g. [adapter.File.Close]).
func (s *Store) Close() error {
	s.closed = true
	return nil
}

// FreeRanges returns a snapshot of the allocator's currently free byte
// ranges, in array order. It triggers the lazy free-list rebuild (§4.3.1)
// if this is the first call on a freshly opened writable store, same as
// any other mutating operation. Exposed for diagnostics (cmd/kvsh's info
// verb) and for tests that want to assert on allocator structure directly.
func (s *Store) FreeRanges() ([][2]uint32, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := s.ensureRebuilt(); err != nil {
		return nil, err
	}
	return s.alloc.Ranges(), nil
}

func (s *Store) checkOpen() error {
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) checkKey(key []byte) error {
	if len(key) == 0 || len(key) > s.opts.MaxKeyLen {
		return fmt.Errorf("%w: key length must be in [1, %d], got %d", ErrInvalidInput, s.opts.MaxKeyLen, len(key))
	}
	return nil
}

func (s *Store) checkValue(val []byte) error {
	if len(val) == 0 || len(val) > s.opts.MaxValueLen {
		return fmt.Errorf("%w: value length must be in [1, %d], got %d", ErrInvalidInput, s.opts.MaxValueLen, len(val))
	}
	return nil
}

func (s *Store) checkWritable() error {
	if s.opts.Slots == 0 {
		return ErrReadOnlyStore
	}
	return nil
}

func wrapAdapterErr(err error) error {
	return fmt.Errorf("%w: %w", ErrAdapter, err)
}

// readBucket reads and decodes bucket index i.
func (s *Store) readBucket(i int) (bucketEntry, error) {
	var buf [bucketSize]byte
	if err := s.a.Read(bucketOffset(i), buf[:]); err != nil {
		return bucketEntry{}, fmt.Errorf("%w: %w", ErrAdapter, err)
	}
	return decodeBucket(buf[:]), nil
}

// writeBucket encodes and writes bucket index i.
func (s *Store) writeBucket(i int, b bucketEntry) error {
	buf := encodeBucket(b)
	if err := s.a.Write(bucketOffset(i), buf[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrAdapter, err)
	}
	return nil
}

// readKeyAt reads keyLen bytes of key data starting at address.
func (s *Store) readKeyAt(address uint32, keyLen int) ([]byte, error) {
	buf := make([]byte, keyLen)
	if err := s.a.Read(address, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapter, err)
	}
	return buf, nil
}
