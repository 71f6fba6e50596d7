package kvs

import (
	"fmt"

	"github.com/dotcypress/kvs/adapter"
)

// Create formats a and writes a fresh store header, per Options.
//
// Write order matters for crash behavior (§4.3.1): bucket zeros are
// written first, the header last. An interrupted Create therefore leaves
// the medium invalid (header not yet written / stale), never falsely
// discoverable as a valid store.
func Create(a adapter.Adapter, opts Options) (*Store, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	ds := dataStart(opts.Buckets)
	if uint64(ds) > uint64(a.MaxAddress()) {
		return nil, fmt.Errorf("%w: buckets table (%d bytes) exceeds adapter size %d",
			ErrInvalidInput, ds, a.MaxAddress())
	}

	store := newStore(a, opts)

	var zero [bucketSize]byte
	for i := 0; i < opts.Buckets; i++ {
		if err := a.Write(bucketOffset(i), zero[:]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAdapter, err)
		}
	}

	hdr := encodeHeader(storeHeader{
		magic:   opts.Magic,
		nonce:   opts.Nonce,
		buckets: uint16(opts.Buckets),
	})
	if err := a.Write(0, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapter, err)
	}

	// A fresh store's free list is the whole data region; no lazy rebuild
	// scan is needed since there can be no occupied buckets yet.
	store.rebuilt = true

	return store, nil
}
