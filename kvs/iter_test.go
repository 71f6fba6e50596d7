package kvs_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcypress/kvs"
)

func Test_Keys_Yields_Every_Occupied_Bucket(t *testing.T) {
	s := newTestStore(t, testOptions())

	want := []string{"alpha", "beta", "gamma"}
	for _, k := range want {
		require.NoError(t, s.Insert([]byte(k), []byte("v")))
	}

	var got []string
	for kr := range s.Keys() {
		got = append(got, string(kr.Key))
	}

	slices.Sort(got)
	assert.Equal(t, want, got)
}

func Test_Keys_Yields_Nothing_When_Store_Is_Empty(t *testing.T) {
	s := newTestStore(t, testOptions())

	var got []kvs.KeyRef
	for kr := range s.Keys() {
		got = append(got, kr)
	}
	assert.Empty(t, got)
}

func Test_Keys_Omits_Removed_Key(t *testing.T) {
	s := newTestStore(t, testOptions())
	require.NoError(t, s.Insert([]byte("a"), []byte("1")))
	require.NoError(t, s.Insert([]byte("b"), []byte("2")))
	require.NoError(t, s.Remove([]byte("a")))

	var got []string
	for kr := range s.Keys() {
		got = append(got, string(kr.Key))
	}
	assert.Equal(t, []string{"b"}, got)
}

func Test_KeysWithPrefix_Skips_NonMatching_Keys(t *testing.T) {
	s := newTestStore(t, testOptions())
	require.NoError(t, s.Insert([]byte("user:1"), []byte("a")))
	require.NoError(t, s.Insert([]byte("user:2"), []byte("b")))
	require.NoError(t, s.Insert([]byte("order:1"), []byte("c")))

	var got []string
	for kr := range s.KeysWithPrefix([]byte("user:")) {
		got = append(got, string(kr.Key))
	}

	slices.Sort(got)
	assert.Equal(t, []string{"user:1", "user:2"}, got)
}

func Test_Keys_Stops_Early_When_Yield_Returns_False(t *testing.T) {
	s := newTestStore(t, testOptions())
	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Insert([]byte(k), []byte("v")))
	}

	count := 0
	for range s.Keys() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func Test_Keys_Yields_Nothing_When_Store_Closed(t *testing.T) {
	s := newTestStore(t, testOptions())
	require.NoError(t, s.Insert([]byte("a"), []byte("1")))
	require.NoError(t, s.Close())

	var got []kvs.KeyRef
	for kr := range s.Keys() {
		got = append(got, kr)
	}
	assert.Empty(t, got)
}
