package kvs

// Hardcoded implementation limits.
//
// These limits are intentionally generous; they exist primarily to:
//   - keep bucket/allocator arithmetic safely away from the 24-bit address
//     and 16-bit length fields the on-medium layout uses (§6.2)
//   - bound resource usage for configurations nobody asked for
//   - avoid int overflow when translating between uint32 header fields and
//     Go int arithmetic
//
// All limit violations are treated as programming/configuration errors and
// return [ErrInvalidInput].
const (
	// minBucketCount is the smallest usable bucket table.
	minBucketCount = 1

	// maxBucketCount bounds Options.Buckets. The header stores buckets as a
	// uint16 (§6.2), so this can never exceed 65535; the recommended
	// presets are 64/128/256/512/1024/2048/4096 (mirroring the original
	// crate's maxCapNNN build profiles), but any value in range is valid.
	maxBucketCount = 65535

	// maxSlotCount bounds Options.Slots, the allocator's free-slot array
	// size. Slots == 0 marks a read-only store (§3).
	maxSlotCount = 4096

	// maxKeyLen is the hard ceiling for key length in bytes. Bucket
	// key_len is an 8-bit field (§6.2), so this can never exceed 255; the
	// spec's typical range is 128 or 256 (§3 I3), we pick 255 as the
	// reachable maximum under an 8-bit field.
	maxKeyLen = 255

	// maxValueLen is the hard ceiling for value length in bytes. Bucket
	// val_len is a 16-bit field (§6.2), so this can never exceed 65535;
	// the spec's stated range is 32-64 KiB (§3 I3).
	maxValueLen = 65535

	// maxDataAddress is the largest address the 24-bit bucket address field
	// can represent (§6.2).
	maxDataAddress = 1<<24 - 1

	// defaultMaxHops is used when Options.MaxHops is zero.
	defaultMaxHops = 32

	// rebuildBatchSize bounds how many buckets the lazy free-list rebuild
	// scans per batch (§4.3.1, §5 "Memory").
	rebuildBatchSize = 32
)
