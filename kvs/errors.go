package kvs

import (
	"errors"
	"fmt"
)

// Error classification.
//
// [ErrStoreNotFound], [ErrInvalidNonce] and [ErrInvalidCapacity] are
// rebuild-class: they indicate the medium does not hold a store this
// [Options] can open. [ErrStoreOverflow], [ErrIndexOverflow] and
// [ErrValueOverflow] indicate the store is full in some dimension; the
// medium itself is still consistent. [ErrAdapter] wraps whatever the byte
// collaborator returned and is never retried.
//
// Callers classify errors with errors.Is.
var (
	// ErrStoreNotFound is returned by Open when the header magic does not
	// match and creation was not requested.
	ErrStoreNotFound = errors.New("kvs: store not found")

	// ErrInvalidNonce is returned by Open when the header nonce does not
	// match Options.Nonce.
	ErrInvalidNonce = errors.New("kvs: invalid nonce")

	// ErrInvalidCapacity is returned by Open when the header bucket count
	// does not match Options.Buckets.
	ErrInvalidCapacity = errors.New("kvs: invalid capacity")

	// ErrIndexOverflow is returned by Insert/Alloc when the probe sequence
	// is exhausted (max hops reached) without finding a usable bucket.
	ErrIndexOverflow = errors.New("kvs: index overflow")

	// ErrStoreOverflow is returned when the allocator cannot satisfy an
	// anonymous allocation, and by the lazy free-list rebuild when the
	// medium's bucket table cannot be reconciled with the allocator.
	ErrStoreOverflow = errors.New("kvs: store overflow")

	// ErrValueOverflow is returned by Patch/Append when growing a value in
	// place fails because the adjacent free space cannot be reserved.
	ErrValueOverflow = errors.New("kvs: value overflow")

	// ErrInvalidPatchOffset is returned by Patch when offset > val_len.
	ErrInvalidPatchOffset = errors.New("kvs: invalid patch offset")

	// ErrKeyNotFound is returned by Lookup/Load/Patch/Append when the probe
	// sequence is exhausted with no matching key.
	ErrKeyNotFound = errors.New("kvs: key not found")

	// ErrReadOnlyStore is returned by mutating operations when
	// Options.Slots == 0.
	ErrReadOnlyStore = errors.New("kvs: read-only store")

	// ErrKeyAlreadyExists is returned by the typed object layer's Create
	// when the key is already present.
	ErrKeyAlreadyExists = errors.New("kvs: key already exists")

	// ErrStoreClosed is returned by any error-returning Store operation
	// other than Close once the Store has been closed.
	ErrStoreClosed = errors.New("kvs: store closed")

	// ErrInvalidInput marks a programming/configuration error: an empty or
	// oversized key, an oversized value, or an invalid Options field.
	ErrInvalidInput = errors.New("kvs: invalid input")

	// ErrAdapter wraps an error returned by the underlying byte adapter.
	ErrAdapter = errors.New("kvs: adapter error")
)

func errInvalidValueLen(got, max int) error {
	return fmt.Errorf("%w: value length must be in [1, %d], got %d", ErrInvalidInput, max, got)
}
