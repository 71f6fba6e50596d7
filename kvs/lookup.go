package kvs

import (
	"bytes"
	"errors"

	"github.com/dotcypress/kvs/grasshopper"
)

// findBucketIndex walks key's full probe sequence looking for an occupied
// bucket whose hash, key length and key bytes all match.
//
// Per §4.3.3/§9: the walk never stops at an empty bucket --- removal
// breaks no chains, because the probe sequence is derived purely from
// (nonce, key) and is independent of neighboring occupancy. Only
// exhausting the probe budget proves absence.
func (s *Store) findBucketIndex(key []byte) (index int, b bucketEntry, err error) {
	hash, hopper := grasshopper.New(uint32(s.opts.Buckets), s.opts.Nonce, key, s.opts.MaxHops)

	for {
		idx, ok := hopper.Next()
		if !ok {
			return 0, bucketEntry{}, ErrKeyNotFound
		}

		cand, err := s.readBucket(idx)
		if err != nil {
			return 0, bucketEntry{}, err
		}

		if !cand.occupied() || cand.hash != hash || int(cand.keyLen) != len(key) {
			continue
		}

		onMedium, err := s.readKeyAt(cand.address, int(cand.keyLen))
		if err != nil {
			return 0, bucketEntry{}, err
		}
		if bytes.Equal(onMedium, key) {
			return idx, cand, nil
		}
	}
}

// Lookup finds key and returns its bucket. Returns [ErrKeyNotFound] if the
// probe sequence is exhausted with no match.
func (s *Store) Lookup(key []byte) (Bucket, error) {
	if err := s.checkOpen(); err != nil {
		return Bucket{}, err
	}
	if err := s.checkKey(key); err != nil {
		return Bucket{}, err
	}

	_, b, err := s.findBucketIndex(key)
	if err != nil {
		return Bucket{}, err
	}

	return entryToBucket(b), nil
}

// Exists reports whether key is present.
func (s *Store) Exists(key []byte) (bool, error) {
	_, err := s.Lookup(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}
