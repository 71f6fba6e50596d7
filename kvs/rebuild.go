package kvs

// ensureRebuilt lazily reconstructs the allocator's free list from the
// bucket table on first mutation (§4.3.1, §9 open question: lazy rebuild
// is the performance-minded default; a strict implementation may instead
// rebuild eagerly on Open at the cost of extra startup reads).
//
// Read-only stores (Slots == 0) never need an allocator, so they skip the
// scan entirely --- this is what lets Lookup/Load/Exists/Keys stay cheap
// when SLOTS == 0 (§4.3.1).
//
// The bucket table is walked in batches of at most rebuildBatchSize
// entries (§5 "Memory": bounded by a small batch buffer). Any directed
// allocation failure during the scan means the medium's occupied ranges
// no longer fit the data region, which is an inconsistent medium:
// [ErrStoreOverflow].
func (s *Store) ensureRebuilt() error {
	if s.rebuilt || s.opts.Slots == 0 {
		return nil
	}

	s.alloc.Reset(s.dataStart, s.a.MaxAddress()-s.dataStart)

	buf := make([]byte, rebuildBatchSize*bucketSize)

	for start := 0; start < s.opts.Buckets; start += rebuildBatchSize {
		end := start + rebuildBatchSize
		if end > s.opts.Buckets {
			end = s.opts.Buckets
		}
		n := end - start

		chunk := buf[:n*bucketSize]
		if err := s.a.Read(bucketOffset(start), chunk); err != nil {
			return wrapAdapterErr(err)
		}

		for i := 0; i < n; i++ {
			b := decodeBucket(chunk[i*bucketSize : (i+1)*bucketSize])
			if !b.occupied() {
				continue
			}

			recordLen := uint32(b.keyLen) + uint32(b.valLen)
			if !s.alloc.AllocAt(b.address, recordLen) {
				return ErrStoreOverflow
			}
		}
	}

	s.rebuilt = true
	return nil
}
