package kvs

import (
	"fmt"

	"github.com/dotcypress/kvs/adapter"
)

// Open reads a's header and validates it against opts: magic must match
// (else [ErrStoreNotFound], or Open forwards to [Create] if
// opts.CreateIfMissing is set), nonce must match (else [ErrInvalidNonce]),
// and bucket count must match (else [ErrInvalidCapacity]).
//
// The free list is rebuilt lazily on first mutation, not here (§4.3.1).
func Open(a adapter.Adapter, opts Options) (*Store, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	ds := dataStart(opts.Buckets)
	if uint64(ds) > uint64(a.MaxAddress()) {
		return nil, fmt.Errorf("%w: buckets table (%d bytes) exceeds adapter size %d",
			ErrInvalidInput, ds, a.MaxAddress())
	}

	var buf [headerSize]byte
	if err := a.Read(0, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapter, err)
	}

	hdr := decodeHeader(buf[:])

	if hdr.magic != opts.Magic {
		if opts.CreateIfMissing {
			return Create(a, opts)
		}
		return nil, ErrStoreNotFound
	}

	if hdr.nonce != opts.Nonce {
		return nil, ErrInvalidNonce
	}

	if int(hdr.buckets) != opts.Buckets {
		return nil, ErrInvalidCapacity
	}

	return newStore(a, opts), nil
}
