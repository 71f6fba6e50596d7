package kvs

import "bytes"

// KeyRef is one entry yielded by [Store.Keys]/[Store.KeysWithPrefix]: the
// key bytes (owned, safe to retain) and the value's current length.
type KeyRef struct {
	Key    []byte
	ValLen int
}

// Seq is the iterator type returned by Keys/KeysWithPrefix. It has the
// same underlying type as iter.Seq[KeyRef], so it can be ranged over
// directly; as a distinct named type it must be converted to
// iter.Seq[KeyRef] before being passed to slices.Collect. This package
// does not depend on iter directly.
type Seq func(yield func(KeyRef) bool)

// Keys scans the bucket table from index 0 to Buckets-1 and yields a
// [KeyRef] for every occupied bucket.
//
// Iteration order is bucket-table order: not sorted, not stable under
// concurrent inserts (there are none, §5), and not reproducible across
// stores with different nonces.
func (s *Store) Keys() Seq {
	return s.keysMatching(nil)
}

// KeysWithPrefix is like Keys but skips buckets whose key does not start
// with prefix.
func (s *Store) KeysWithPrefix(prefix []byte) Seq {
	return s.keysMatching(prefix)
}

func (s *Store) keysMatching(prefix []byte) Seq {
	return func(yield func(KeyRef) bool) {
		if s.closed {
			return
		}

		for i := 0; i < s.opts.Buckets; i++ {
			b, err := s.readBucket(i)
			if err != nil || !b.occupied() {
				continue
			}

			key, err := s.readKeyAt(b.address, int(b.keyLen))
			if err != nil {
				continue
			}

			if prefix != nil && !bytes.HasPrefix(key, prefix) {
				continue
			}

			if !yield(KeyRef{Key: key, ValLen: int(b.valLen)}) {
				return
			}
		}
	}
}
