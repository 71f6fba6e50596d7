package kvs

import "fmt"

// AllocStrategy selects how the free-space allocator satisfies anonymous
// allocations (a request with no directed address hint).
//
// See [alloc.Allocator] for the mechanics of each strategy.
type AllocStrategy int

const (
	// AllocMaxFit picks the largest free slot that fits the request. This
	// is the default: it tends to leave the remaining free space in fewer,
	// larger runs, which reduces fragmentation for workloads with mixed
	// record sizes.
	AllocMaxFit AllocStrategy = iota

	// AllocMinFit picks the smallest free slot that still fits the
	// request (best-fit).
	AllocMinFit

	// AllocFirstFit picks the first free slot (in array order) that fits.
	AllocFirstFit
)

// String returns a human-readable name, used in diagnostics and the
// cmd/kvsh REPL's `info` verb.
func (s AllocStrategy) String() string {
	switch s {
	case AllocMaxFit:
		return "max-fit"
	case AllocMinFit:
		return "min-fit"
	case AllocFirstFit:
		return "first-fit"
	default:
		return fmt.Sprintf("AllocStrategy(%d)", int(s))
	}
}

// Options configure opening or creating a store.
//
// Options fully determine the on-medium layout (§6.2): Buckets and the
// header's bucket count must agree, and Magic/Nonce gate which stores a
// given configuration is willing to open (§4.3.1).
type Options struct {
	// Magic is an application-chosen identifier written to the header.
	// Open fails with [ErrStoreNotFound] if the medium's magic differs and
	// CreateIfMissing is false.
	Magic uint32

	// Nonce salts key hashing (§4.1). Two stores with the same Magic but
	// different Nonce reject each other with [ErrInvalidNonce]; this lets
	// a caller roll a new hash salt by bumping Nonce and rebuilding.
	Nonce uint16

	// Buckets is the fixed bucket table size. Must be in
	// [1, 65535]. Recommended presets: 64, 128, 256, 512, 1024, 2048, 4096.
	Buckets int

	// Slots is the free-space allocator's fixed slot-array size. Slots ==
	// 0 marks a read-only store (§3): mutating operations return
	// [ErrReadOnlyStore], but Lookup/Load/Exists/Keys still work without
	// ever rebuilding the free list.
	Slots int

	// MaxHops bounds the grasshopper probe sequence (§4.1). Zero defaults
	// to 32. Larger values tolerate more hash collisions at the cost of
	// slower worst-case insert/lookup.
	MaxHops int

	// MaxKeyLen bounds accepted key length. Zero defaults to 255 (the
	// field's 8-bit ceiling, §6.2).
	MaxKeyLen int

	// MaxValueLen bounds accepted value length. Zero defaults to 65535
	// (the field's 16-bit ceiling, §6.2).
	MaxValueLen int

	// Strategy selects the anonymous-allocation policy. Zero value is
	// [AllocMaxFit].
	Strategy AllocStrategy

	// CreateIfMissing makes Open forward to Create when the header magic
	// does not match (typically: the medium is all-zero / unformatted).
	CreateIfMissing bool
}

// withDefaults returns a copy of o with zero-value fields filled in, and
// validates the result.
func (o Options) withDefaults() (Options, error) {
	if o.MaxHops == 0 {
		o.MaxHops = defaultMaxHops
	}
	if o.MaxKeyLen == 0 {
		o.MaxKeyLen = maxKeyLen
	}
	if o.MaxValueLen == 0 {
		o.MaxValueLen = maxValueLen
	}

	if err := o.validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

func (o Options) validate() error {
	switch {
	case o.Buckets < minBucketCount || o.Buckets > maxBucketCount:
		return fmt.Errorf("%w: buckets must be in [%d, %d], got %d",
			ErrInvalidInput, minBucketCount, maxBucketCount, o.Buckets)
	case o.Slots < 0 || o.Slots > maxSlotCount:
		return fmt.Errorf("%w: slots must be in [0, %d], got %d",
			ErrInvalidInput, maxSlotCount, o.Slots)
	case o.MaxHops <= 0:
		return fmt.Errorf("%w: max_hops must be > 0, got %d", ErrInvalidInput, o.MaxHops)
	case o.MaxKeyLen <= 0 || o.MaxKeyLen > maxKeyLen:
		return fmt.Errorf("%w: max_key_len must be in [1, %d], got %d",
			ErrInvalidInput, maxKeyLen, o.MaxKeyLen)
	case o.MaxValueLen <= 0 || o.MaxValueLen > maxValueLen:
		return fmt.Errorf("%w: max_value_len must be in [1, %d], got %d",
			ErrInvalidInput, maxValueLen, o.MaxValueLen)
	case o.Strategy < AllocMaxFit || o.Strategy > AllocFirstFit:
		return fmt.Errorf("%w: unknown alloc strategy %d", ErrInvalidInput, o.Strategy)
	}

	return nil
}
