package kvs

import "encoding/binary"

// bucketSize is the fixed 8-byte bucket entry (§6.2), packed MSB-first
// within the 64-bit word:
//
//	val_len : 16 bits
//	key_len :  8 bits
//	address : 24 bits
//	hash    : 16 bits
//
// A bucket with key_len == 0 is empty; this is the sole empty marker
// (§9 open question) --- all other fields of an empty bucket are ignored.
const bucketSize = 8

type bucketEntry struct {
	valLen  uint16
	keyLen  uint8
	address uint32 // only the low 24 bits are meaningful
	hash    uint16
}

func (b bucketEntry) occupied() bool {
	return b.keyLen > 0
}

func encodeBucket(b bucketEntry) [bucketSize]byte {
	packed := uint64(b.valLen)<<48 |
		uint64(b.keyLen)<<40 |
		uint64(b.address&maxDataAddress)<<16 |
		uint64(b.hash)

	var buf [bucketSize]byte
	binary.BigEndian.PutUint64(buf[:], packed)
	return buf
}

func decodeBucket(buf []byte) bucketEntry {
	packed := binary.BigEndian.Uint64(buf[:bucketSize])
	return bucketEntry{
		valLen:  uint16(packed >> 48),
		keyLen:  uint8(packed >> 40 & 0xFF),
		address: uint32(packed >> 16 & maxDataAddress),
		hash:    uint16(packed),
	}
}

// bucketOffset returns the byte offset of bucket index i within the
// store's address space.
func bucketOffset(i int) uint32 {
	return headerSize + uint32(i)*bucketSize
}
