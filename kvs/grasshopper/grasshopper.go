// Package grasshopper implements the store's probe sequence generator: a
// deterministic pseudo-random walk over bucket indices, used in place of
// linear probing so that hash collisions don't cluster.
package grasshopper

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Hopper yields up to MaxHops bucket indices in [0, Capacity) for a given
// key. The sequence is reproducible: constructing a Hopper for the same
// (capacity, nonce, key) and draining it always yields the same indices in
// the same order, which is what lets Open() rediscover existing buckets.
type Hopper struct {
	capacity uint32
	hopsLeft int
	token    uint16
}

// New builds the probe sequence for key under the given capacity and
// nonce, bounded to maxHops hops.
//
// The initial hash is Murmur3-32 over big_endian(nonce) || key, with the
// nonce bytes omitted entirely when nonce == 0 (for backward compatibility
// with stores written before nonces existed). Its low 16 bits become both
// the returned key hash (stored in the bucket for fast rejection) and the
// walk's initial token.
func New(capacity uint32, nonce uint16, key []byte, maxHops int) (hash uint16, h Hopper) {
	var seed []byte
	if nonce != 0 {
		var nonceBuf [2]byte
		binary.BigEndian.PutUint16(nonceBuf[:], nonce)
		seed = append(seed, nonceBuf[:]...)
	}
	seed = append(seed, key...)

	digest := murmur3.Sum32(seed)
	hash = uint16(digest)

	return hash, Hopper{
		capacity: capacity,
		hopsLeft: maxHops,
		token:    hash,
	}
}

// Next advances the walk and returns the next bucket index, or ok == false
// once maxHops indices have been produced.
func (h *Hopper) Next() (index int, ok bool) {
	if h.hopsLeft == 0 {
		return 0, false
	}

	var tokenBuf [2]byte
	binary.BigEndian.PutUint16(tokenBuf[:], h.token)
	h.token = uint16(murmur3.Sum32(tokenBuf[:]))

	h.hopsLeft--

	return int(uint32(h.token) % h.capacity), true
}
