// Package object is the store's optional typed layer (§4.4): typed
// create/read/update built on top of the byte-oriented [kvs.Store], using
// a self-describing serializer so callers don't hand-roll encode/decode
// for every struct they persist.
//
// This layer is orthogonal to the core store and changes none of its
// invariants --- it is just Marshal-then-Insert and Load-then-Unmarshal.
package object

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dotcypress/kvs"
)

// Create serializes v and inserts it under key, but fails with
// [kvs.ErrKeyAlreadyExists] if key is already present --- unlike
// [kvs.Store.Insert], which silently replaces.
func Create[T any](s *kvs.Store, key []byte, v *T) error {
	exists, err := s.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return kvs.ErrKeyAlreadyExists
	}

	data, err := marshal(v)
	if err != nil {
		return err
	}

	return s.Insert(key, data)
}

// Read looks up key and deserializes its value into a T.
func Read[T any](s *kvs.Store, key []byte) (T, error) {
	var zero T

	b, err := s.Lookup(key)
	if err != nil {
		return zero, err
	}

	buf := make([]byte, b.ValLen)
	if _, _, err := s.Load(key, buf, 0); err != nil {
		return zero, err
	}

	var v T
	if err := unmarshal(buf, &v); err != nil {
		return zero, err
	}

	return v, nil
}

// Update serializes v and patches it over key's existing value starting
// at offset 0, per §4.4. Like [kvs.Store.Patch], this only grows the
// on-medium value, so if the new encoding is shorter than the old one the
// stale trailing bytes of the previous encoding remain part of the
// record; callers that need shrink-safe updates should Remove then Create
// instead.
func Update[T any](s *kvs.Store, key []byte, v *T) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}

	return s.Patch(key, 0, data)
}

func marshal[T any](v *T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("object: encoding value: %w", err)
	}
	return buf.Bytes(), nil
}

func unmarshal[T any](data []byte, v *T) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("object: decoding value: %w", err)
	}
	return nil
}
