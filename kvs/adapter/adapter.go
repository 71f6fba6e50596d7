// Package adapter provides the byte-addressable storage collaborators that
// [github.com/dotcypress/kvs.Store] is built on, and a handful of
// decorators that adapt a raw adapter to paged or address-shifted media.
//
// The core package is polymorphic over any type satisfying [Adapter]; Ram,
// Paged, Offset and File are interchangeable implementations.
package adapter

// Adapter is the capability set the store core requires from its byte
// collaborator: read, write, and report total usable size.
//
// Implementations must be safe to use from a single goroutine at a time;
// the core never calls an Adapter concurrently (see the store's
// concurrency model).
type Adapter interface {
	// Read reads len(buf) bytes starting at addr into buf.
	// Returns an error if the range [addr, addr+len(buf)) exceeds
	// MaxAddress().
	Read(addr uint32, buf []byte) error

	// Write writes bytes starting at addr.
	// Returns an error if the range [addr, addr+len(bytes)) exceeds
	// MaxAddress().
	Write(addr uint32, bytes []byte) error

	// MaxAddress returns the total usable byte count.
	MaxAddress() uint32
}
