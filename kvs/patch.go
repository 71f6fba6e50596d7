package kvs

// Patch overwrites len(data) bytes of key's value starting at offset,
// growing the value if offset+len(bytes) exceeds the current length.
//
// offset may equal the current value length (append-at-end) but must not
// exceed it; otherwise returns [ErrInvalidPatchOffset]. If growth is
// needed, the record is extended in place into adjacent free space via a
// directed allocation; if that space isn't free, returns
// [ErrValueOverflow].
//
// Per §4.3.4: the bucket's updated val_len is written before the patch
// bytes only when growth required an allocator update; otherwise the
// patch bytes are written without touching the bucket entry at all, since
// nothing about it changed. The specification does not require atomicity
// here.
func (s *Store) Patch(key []byte, offset int, data []byte) error {
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
		return err
	}

	if offset < 0 || offset > int(b.valLen) {
		return ErrInvalidPatchOffset
	}

	newLen := int(b.valLen)
	if offset+len(data) > newLen {
		newLen = offset + len(data)
	}
	if newLen > s.opts.MaxValueLen {
		return errInvalidValueLen(newLen, s.opts.MaxValueLen)
	}

	if newLen > int(b.valLen) {
		growth := uint32(newLen - int(b.valLen))
		recordEnd := b.address + uint32(b.keyLen) + uint32(b.valLen)
		if !s.alloc.AllocAt(recordEnd, growth) {
			return ErrValueOverflow
		}

		b.valLen = uint16(newLen)
		if err := s.writeBucket(idx, b); err != nil {
			return err
		}
	}

	patchAddr := b.address + uint32(b.keyLen) + uint32(offset)
	if err := s.a.Write(patchAddr, data); err != nil {
		return wrapAdapterErr(err)
	}

	return nil
}

// Append writes bytes after key's current value, equivalent to
// Patch(key, current_val_len, bytes).
func (s *Store) Append(key []byte, data []byte) error {
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

	_, b, err := s.findBucketIndex(key)
	if err != nil {
		return err
	}

	return s.Patch(key, int(b.valLen), data)
}
