package kvs

// Load looks up key, then reads min(len(buf), val_len-offset) bytes from
// the value starting at offset into buf. Returns the bucket (so the
// caller can see the true val_len and detect truncation if len(buf) was
// smaller than the remaining value) and the number of bytes actually
// copied into buf.
func (s *Store) Load(key []byte, buf []byte, offset int) (Bucket, int, error) {
	if err := s.checkOpen(); err != nil {
		return Bucket{}, 0, err
	}
	if err := s.checkKey(key); err != nil {
		return Bucket{}, 0, err
	}

	_, b, err := s.findBucketIndex(key)
	if err != nil {
		return Bucket{}, 0, err
	}

	if offset < 0 || offset > int(b.valLen) {
		return entryToBucket(b), 0, ErrInvalidPatchOffset
	}

	remaining := int(b.valLen) - offset
	n := len(buf)
	if n > remaining {
		n = remaining
	}

	if n > 0 {
		addr := b.address + uint32(b.keyLen) + uint32(offset)
		if err := s.a.Read(addr, buf[:n]); err != nil {
			return entryToBucket(b), 0, wrapAdapterErr(err)
		}
	}

	return entryToBucket(b), n, nil
}
