package kvs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcypress/kvs"
	"github.com/dotcypress/kvs/adapter"
)

func newTestStore(t *testing.T, opts kvs.Options) *kvs.Store {
	t.Helper()
	a := adapter.NewRam(1 << 16)
	s, err := kvs.Create(a, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_Insert_Then_Lookup_Returns_Matching_Bucket(t *testing.T) {
	s := newTestStore(t, testOptions())

	require.NoError(t, s.Insert([]byte("foo"), []byte("bar")))

	b, err := s.Lookup([]byte("foo"))
	require.NoError(t, err)
	assert.Equal(t, 3, b.KeyLen)
	assert.Equal(t, 3, b.ValLen)
}

func Test_Lookup_Returns_ErrKeyNotFound_When_Key_Never_Inserted(t *testing.T) {
	s := newTestStore(t, testOptions())

	_, err := s.Lookup([]byte("missing"))
	assert.ErrorIs(t, err, kvs.ErrKeyNotFound)
}

func Test_Insert_Replaces_Value_When_Key_Already_Present(t *testing.T) {
	s := newTestStore(t, testOptions())

	require.NoError(t, s.Insert([]byte("foo"), []byte("bar")))
	require.NoError(t, s.Insert([]byte("foo"), []byte("a-much-longer-value")))

	b, err := s.Lookup([]byte("foo"))
	require.NoError(t, err)
	assert.Equal(t, len("a-much-longer-value"), b.ValLen)

	buf := make([]byte, b.ValLen)
	_, n, err := s.Load([]byte("foo"), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "a-much-longer-value", string(buf[:n]))
}

func Test_Insert_Rejects_Empty_Key(t *testing.T) {
	s := newTestStore(t, testOptions())
	err := s.Insert(nil, []byte("v"))
	assert.ErrorIs(t, err, kvs.ErrInvalidInput)
}

func Test_Insert_Rejects_Empty_Value(t *testing.T) {
	s := newTestStore(t, testOptions())
	err := s.Insert([]byte("k"), nil)
	assert.ErrorIs(t, err, kvs.ErrInvalidInput)
}

func Test_Insert_Rejects_Key_Longer_Than_MaxKeyLen(t *testing.T) {
	opts := testOptions()
	opts.MaxKeyLen = 4
	s := newTestStore(t, opts)

	err := s.Insert([]byte("toolong"), []byte("v"))
	assert.ErrorIs(t, err, kvs.ErrInvalidInput)
}

func Test_Insert_Returns_ErrReadOnlyStore_When_Slots_Is_Zero(t *testing.T) {
	opts := testOptions()
	opts.Slots = 0
	s := newTestStore(t, opts)

	err := s.Insert([]byte("k"), []byte("v"))
	assert.ErrorIs(t, err, kvs.ErrReadOnlyStore)
}

func Test_Insert_Returns_ErrStoreOverflow_When_Data_Region_Is_Full(t *testing.T) {
	a := adapter.NewRam(200)
	opts := kvs.Options{Magic: 1, Buckets: 8, Slots: 4}
	s, err := kvs.Create(a, opts)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 20; i++ {
		key := []byte{byte('a' + i)}
		if err := s.Insert(key, make([]byte, 32)); err != nil {
			assert.ErrorIs(t, err, kvs.ErrStoreOverflow)
			return
		}
	}
	t.Fatal("expected overflow before 20 inserts into a 200-byte region")
}

func Test_Exists_Reports_Presence_Without_Erroring_On_Absent_Key(t *testing.T) {
	s := newTestStore(t, testOptions())
	require.NoError(t, s.Insert([]byte("foo"), []byte("bar")))

	ok, err := s.Exists([]byte("foo"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists([]byte("absent"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Lookup_Walks_Full_Probe_Sequence_When_Colliding_Bucket_Is_Occupied_By_Another_Key(t *testing.T) {
	// A two-bucket table with a two-hop budget leaves little room; both
	// keys must be placed and each must stay reachable through its own
	// probe sequence while the other bucket is occupied.
	opts := kvs.Options{Magic: 1, Buckets: 2, Slots: 2, MaxHops: 2}
	s := newTestStore(t, opts)

	require.NoError(t, s.Insert([]byte("a"), []byte("1")))
	require.NoError(t, s.Insert([]byte("b"), []byte("2")))

	ba, err := s.Lookup([]byte("a"))
	require.NoError(t, err)
	bb, err := s.Lookup([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, ba.ValLen)
	assert.Equal(t, 1, bb.ValLen)
}

func Test_Insert_Returns_ErrIndexOverflow_When_Probe_Budget_Exhausted(t *testing.T) {
	opts := kvs.Options{Magic: 1, Buckets: 1, Slots: 2, MaxHops: 1}
	s := newTestStore(t, opts)

	require.NoError(t, s.Insert([]byte("a"), []byte("1")))
	err := s.Insert([]byte("b"), []byte("2"))
	assert.ErrorIs(t, err, kvs.ErrIndexOverflow)
}

func Test_Alloc_Reserves_Space_Without_Writing_Value(t *testing.T) {
	s := newTestStore(t, testOptions())
	fill := byte('x')

	require.NoError(t, s.Alloc([]byte("k"), 5, &fill))

	b, err := s.Lookup([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, 5, b.ValLen)

	buf := make([]byte, 5)
	_, _, err = s.Load([]byte("k"), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "xxxxx", string(buf))
}
