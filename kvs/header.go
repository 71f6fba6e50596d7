package kvs

import "encoding/binary"

// headerSize is the fixed 8-byte store header (§6.2):
//
//	offset 0: magic    u32 BE
//	offset 4: nonce    u16 BE
//	offset 6: buckets  u16 BE
const headerSize = 8

type storeHeader struct {
	magic   uint32
	nonce   uint16
	buckets uint16
}

func encodeHeader(h storeHeader) [headerSize]byte {
	var buf [headerSize]byte
	binary.BigEndian.PutUint32(buf[0:4], h.magic)
	binary.BigEndian.PutUint16(buf[4:6], h.nonce)
	binary.BigEndian.PutUint16(buf[6:8], h.buckets)
	return buf
}

func decodeHeader(buf []byte) storeHeader {
	return storeHeader{
		magic:   binary.BigEndian.Uint32(buf[0:4]),
		nonce:   binary.BigEndian.Uint16(buf[4:6]),
		buckets: binary.BigEndian.Uint16(buf[6:8]),
	}
}
