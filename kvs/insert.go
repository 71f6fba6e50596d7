package kvs

import (
	"bytes"

	"github.com/dotcypress/kvs/grasshopper"
)

// claim walks the probe sequence for key looking for a bucket to write
// into: an occupied bucket holding the same key (replace) anywhere in the
// sequence, else the first empty bucket. It does not allocate or write
// anything; it only decides which bucket index to use and, for a replace,
// returns the old entry so the caller can free its range.
//
// Returns [ErrIndexOverflow] if the probe budget is exhausted without
// finding a usable bucket.
func (s *Store) claim(key []byte) (index int, hash uint16, replacing *bucketEntry, err error) {
	hash, hopper := grasshopper.New(uint32(s.opts.Buckets), s.opts.Nonce, key, s.opts.MaxHops)

	firstEmpty := -1
	for {
		idx, ok := hopper.Next()
		if !ok {
			if firstEmpty >= 0 {
				return firstEmpty, hash, nil, nil
			}
			return 0, hash, nil, ErrIndexOverflow
		}

		b, err := s.readBucket(idx)
		if err != nil {
			return 0, hash, nil, err
		}

		if !b.occupied() {
			if firstEmpty < 0 {
				firstEmpty = idx
			}
			continue
		}

		if b.hash != hash || int(b.keyLen) != len(key) {
			continue
		}

		onMedium, err := s.readKeyAt(b.address, int(b.keyLen))
		if err != nil {
			return 0, hash, nil, err
		}
		if bytes.Equal(onMedium, key) {
			found := b
			return idx, hash, &found, nil
		}
	}
}

// Insert writes key/val, replacing any existing value for key.
//
// Preconditions (returned as [ErrInvalidInput]): 0 < len(key) <=
// Options.MaxKeyLen, 0 < len(val) <= Options.MaxValueLen.
// Returns [ErrReadOnlyStore] if Options.Slots == 0.
func (s *Store) Insert(key, val []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.checkKey(key); err != nil {
		return err
	}
	if err := s.checkValue(val); err != nil {
		return err
	}
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.ensureRebuilt(); err != nil {
		return err
	}

	return s.insertBytes(key, val)
}

// Alloc reserves space for key without writing a value, optionally
// pre-filling the record's payload with fill (writing in chunks of at
// most 8 bytes so paged adapters can handle any alignment). Use
// [Store.Patch]/[Store.Append] to populate the value afterward.
func (s *Store) Alloc(key []byte, valLen int, fill *byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.checkKey(key); err != nil {
		return err
	}
	if valLen <= 0 || valLen > s.opts.MaxValueLen {
		return errInvalidValueLen(valLen, s.opts.MaxValueLen)
	}
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.ensureRebuilt(); err != nil {
		return err
	}

	return s.allocRecord(key, valLen, fill)
}

func (s *Store) insertBytes(key, val []byte) error {
	idx, hash, replacing, err := s.claim(key)
	if err != nil {
		return err
	}

	if replacing != nil {
		s.alloc.Free(replacing.address, uint32(replacing.keyLen)+uint32(replacing.valLen))
	}

	size := uint32(len(key)) + uint32(len(val))
	addr, ok := s.alloc.Alloc(size)
	if !ok {
		if replacing != nil {
			s.alloc.AllocAt(replacing.address, uint32(replacing.keyLen)+uint32(replacing.valLen))
		}
		return ErrStoreOverflow
	}

	if err := s.a.Write(addr, key); err != nil {
		return wrapAdapterErr(err)
	}
	if err := s.a.Write(addr+uint32(len(key)), val); err != nil {
		return wrapAdapterErr(err)
	}

	return s.writeBucket(idx, bucketEntry{
		valLen:  uint16(len(val)),
		keyLen:  uint8(len(key)),
		address: addr,
		hash:    hash,
	})
}

func (s *Store) allocRecord(key []byte, valLen int, fill *byte) error {
	idx, hash, replacing, err := s.claim(key)
	if err != nil {
		return err
	}

	if replacing != nil {
		s.alloc.Free(replacing.address, uint32(replacing.keyLen)+uint32(replacing.valLen))
	}

	size := uint32(len(key)) + uint32(valLen)
	addr, ok := s.alloc.Alloc(size)
	if !ok {
		if replacing != nil {
			s.alloc.AllocAt(replacing.address, uint32(replacing.keyLen)+uint32(replacing.valLen))
		}
		return ErrStoreOverflow
	}

	if err := s.a.Write(addr, key); err != nil {
		return wrapAdapterErr(err)
	}

	if fill != nil {
		if err := s.fillRange(addr+uint32(len(key)), valLen, *fill); err != nil {
			return err
		}
	}

	return s.writeBucket(idx, bucketEntry{
		valLen:  uint16(valLen),
		keyLen:  uint8(len(key)),
		address: addr,
		hash:    hash,
	})
}

// fillRange writes n bytes of value b starting at addr, in chunks of at
// most 8 bytes (so paged adapters see small, alignment-agnostic writes).
func (s *Store) fillRange(addr uint32, n int, b byte) error {
	const chunkSize = 8
	var chunk [chunkSize]byte
	for i := range chunk {
		chunk[i] = b
	}

	for written := 0; written < n; {
		take := n - written
		if take > chunkSize {
			take = chunkSize
		}
		if err := s.a.Write(addr+uint32(written), chunk[:take]); err != nil {
			return wrapAdapterErr(err)
		}
		written += take
	}

	return nil
}
