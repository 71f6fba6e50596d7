package kvs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcypress/kvs"
	"github.com/dotcypress/kvs/adapter"
)

func testOptions() kvs.Options {
	return kvs.Options{Magic: 0xc0ffee, Buckets: 64, Slots: 8}
}

// writeLog forwards to an adapter and records the start address of every
// Write.
type writeLog struct {
	adapter.Adapter
	addrs []uint32
}

func (w *writeLog) Write(addr uint32, data []byte) error {
	w.addrs = append(w.addrs, addr)
	return w.Adapter.Write(addr, data)
}

func Test_Create_Writes_Zeroed_Bucket_Table_Before_Header(t *testing.T) {
	a := adapter.NewRam(4096)
	w := &writeLog{Adapter: a}
	_, err := kvs.Create(w, testOptions())
	require.NoError(t, err)

	// Bucket region must be all-zero (every bucket is the empty marker).
	buf := make([]byte, 64*8)
	require.NoError(t, a.Read(8, buf))
	for _, b := range buf {
		require.Zero(t, b)
	}

	// The header (address 0) is written once, and last.
	require.NotEmpty(t, w.addrs)
	assert.Equal(t, uint32(0), w.addrs[len(w.addrs)-1])
	assert.NotContains(t, w.addrs[:len(w.addrs)-1], uint32(0))
}

func Test_Create_Fails_When_Bucket_Table_Exceeds_Adapter_Size(t *testing.T) {
	a := adapter.NewRam(16)
	_, err := kvs.Create(a, testOptions())
	assert.ErrorIs(t, err, kvs.ErrInvalidInput)
}

func Test_Create_Rejects_Invalid_Options(t *testing.T) {
	a := adapter.NewRam(4096)
	_, err := kvs.Create(a, kvs.Options{Magic: 1, Buckets: 0})
	assert.ErrorIs(t, err, kvs.ErrInvalidInput)
}

func Test_Open_Returns_Store_When_Header_Matches_Options(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()

	s1, err := kvs.Create(a, opts)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := kvs.Open(a, opts)
	require.NoError(t, err)
	defer s2.Close()
}

func Test_Open_Returns_ErrStoreNotFound_When_Magic_Differs(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()
	_, err := kvs.Create(a, opts)
	require.NoError(t, err)

	wrongOpts := opts
	wrongOpts.Magic = 0xdead
	_, err = kvs.Open(a, wrongOpts)
	assert.ErrorIs(t, err, kvs.ErrStoreNotFound)
}

func Test_Open_Forwards_To_Create_When_Magic_Differs_And_CreateIfMissing_Set(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()
	opts.CreateIfMissing = true

	s, err := kvs.Open(a, opts)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert([]byte("k"), []byte("v")))
}

func Test_Open_Returns_ErrInvalidNonce_When_Nonce_Differs(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()
	opts.Nonce = 1
	_, err := kvs.Create(a, opts)
	require.NoError(t, err)

	wrongOpts := opts
	wrongOpts.Nonce = 2
	_, err = kvs.Open(a, wrongOpts)
	assert.ErrorIs(t, err, kvs.ErrInvalidNonce)
}

func Test_Open_Returns_ErrInvalidCapacity_When_Bucket_Count_Differs(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()
	_, err := kvs.Create(a, opts)
	require.NoError(t, err)

	wrongOpts := opts
	wrongOpts.Buckets = 128
	_, err = kvs.Open(a, wrongOpts)
	assert.ErrorIs(t, err, kvs.ErrInvalidCapacity)
}

func Test_Close_Rejects_All_Operations_When_Store_Already_Closed(t *testing.T) {
	a := adapter.NewRam(4096)
	s, err := kvs.Create(a, testOptions())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, lookupErr := s.Lookup([]byte("k"))
	assert.ErrorIs(t, lookupErr, kvs.ErrStoreClosed)

	insertErr := s.Insert([]byte("k"), []byte("v"))
	assert.ErrorIs(t, insertErr, kvs.ErrStoreClosed)
}

func Test_Close_Is_Idempotent_When_Called_Twice(t *testing.T) {
	a := adapter.NewRam(4096)
	s, err := kvs.Create(a, testOptions())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func Test_Create_Succeeds_When_Slots_Is_Zero_For_ReadOnly_Store(t *testing.T) {
	a := adapter.NewRam(4096)
	opts := testOptions()
	opts.Slots = 0

	s, err := kvs.Create(a, opts)
	require.NoError(t, err)
	defer s.Close()

	err = s.Insert([]byte("k"), []byte("v"))
	assert.True(t, errors.Is(err, kvs.ErrReadOnlyStore))
}
