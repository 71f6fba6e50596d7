package kvs

import "errors"

// Remove deletes key if present. Missing keys are not an error: remove is
// idempotent (§7 propagation policy).
func (s *Store) Remove(key []byte) error {
	return s.removeKey(key, nil)
}

// Erase deletes key if present, additionally overwriting the on-medium
// record bytes with fillByte before clearing the bucket --- for secrets
// hygiene on media where reads can persist after logical deletion.
func (s *Store) Erase(key []byte, fillByte byte) error {
	return s.removeKey(key, &fillByte)
}

func (s *Store) removeKey(key []byte, fillByte *byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.checkKey(key); err != nil {
		return err
	}
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.ensureRebuilt(); err != nil {
		return err
	}

	idx, b, err := s.findBucketIndex(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}

	recordLen := uint32(b.keyLen) + uint32(b.valLen)

	if fillByte != nil {
		if err := s.fillRange(b.address, int(recordLen), *fillByte); err != nil {
			return err
		}
	}

	if err := s.writeBucket(idx, bucketEntry{}); err != nil {
		return err
	}

	s.alloc.Free(b.address, recordLen)

	return nil
}
