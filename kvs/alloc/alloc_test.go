package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Alloc_Picks_Largest_Slot_When_MaxFit_Strategy_Used(t *testing.T) {
	a := New(4, 0, 100, MaxFit)

	addr1, ok := a.Alloc(10)
	require.True(t, ok)
	assert.Equal(t, uint32(0), addr1)

	// Freeing [0,10) coalesces with the remaining [10,100), leaving one
	// range; MaxFit then allocates from its start.
	require.True(t, a.Free(0, 10))

	addr2, ok := a.Alloc(10)
	require.True(t, ok)
	assert.Equal(t, uint32(0), addr2, "coalesced single free range should be reused from the start")
}

func Test_Alloc_Picks_Smallest_Fitting_Slot_When_MinFit_Strategy_Used(t *testing.T) {
	a := New(4, 0, 100, MinFit)

	require.True(t, a.AllocAt(0, 50))
	require.True(t, a.AllocAt(50, 40))
	require.True(t, a.Free(20, 5)) // isolated 5-byte hole inside the occupied [0,50) range

	ranges := a.Ranges()
	require.Len(t, ranges, 2, "expect the tail [90,100) and the isolated [20,25)")

	addr, ok := a.Alloc(3)
	require.True(t, ok)
	assert.Equal(t, uint32(20), addr, "min-fit should pick the 5-byte hole over the 10-byte tail")
}

func Test_Alloc_Picks_Earliest_Array_Slot_When_FirstFit_Strategy_Used(t *testing.T) {
	a := New(4, 0, 100, FirstFit)

	_, ok := a.Alloc(100)
	require.True(t, ok)
	require.True(t, a.Free(50, 10)) // claims the first unused entry, slots[0]
	require.True(t, a.Free(0, 10))  // claims the next unused entry, slots[1]

	// First-fit walks the slot array in index order, not address order:
	// slots[0] (address 50) was populated before slots[1] (address 0), so
	// it wins even though its address is higher.
	addr, ok := a.Alloc(5)
	require.True(t, ok)
	assert.Equal(t, uint32(50), addr)
}

func Test_Alloc_Fails_When_No_Slot_Is_Large_Enough(t *testing.T) {
	a := New(1, 0, 10, MaxFit)

	_, ok := a.Alloc(5)
	require.True(t, ok)

	_, ok = a.Alloc(100)
	assert.False(t, ok)
}

func Test_AllocAt_Advances_Slot_Start_When_Address_Matches_Slot_Start(t *testing.T) {
	a := New(2, 0, 100, MaxFit)

	ok := a.AllocAt(0, 20)
	require.True(t, ok)

	addr, ok := a.Alloc(1)
	require.True(t, ok)
	assert.Equal(t, uint32(20), addr)
}

func Test_AllocAt_Splits_Slot_When_Address_Is_Mid_Range(t *testing.T) {
	a := New(2, 0, 100, MaxFit)

	ok := a.AllocAt(40, 10)
	require.True(t, ok)

	ranges := a.Ranges()
	require.Len(t, ranges, 2)
	assert.ElementsMatch(t, [][2]uint32{{0, 40}, {50, 100}}, ranges)
}

func Test_AllocAt_Fails_When_No_Unused_Entry_Available_For_Split(t *testing.T) {
	a := New(1, 0, 100, MaxFit)

	ok := a.AllocAt(40, 10)
	assert.False(t, ok, "splitting the sole slot needs a second unused entry")
}

func Test_AllocAt_Fails_When_Address_Outside_Any_Free_Range(t *testing.T) {
	a := New(2, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 50))

	ok := a.AllocAt(0, 10)
	assert.False(t, ok, "already-occupied range cannot be directed-allocated again")
}

func Test_Free_Extends_Preceding_Slot_When_Adjacent_On_Left(t *testing.T) {
	a := New(2, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 100)) // fully occupied
	require.True(t, a.Free(0, 20))     // claims the first unused entry: [0,20)

	ok := a.Free(20, 10) // [20,30) abuts the free [0,20) on its right
	require.True(t, ok)

	ranges := a.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, [2]uint32{0, 30}, ranges[0])
}

func Test_Free_Extends_Following_Slot_When_Adjacent_On_Right(t *testing.T) {
	a := New(2, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 50)) // exact-start alloc leaves slots[0] = [50,100)

	ok := a.Free(30, 20) // [30,50) abuts the free [50,100) on its left
	require.True(t, ok)

	ranges := a.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, [2]uint32{30, 100}, ranges[0])
}

func Test_Free_Claims_Unused_Entry_When_No_Adjacent_Slot_Exists(t *testing.T) {
	a := New(3, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 100))

	ok := a.Free(40, 10)
	require.True(t, ok)

	ranges := a.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, [2]uint32{40, 50}, ranges[0])
}

func Test_Free_Fails_When_No_Unused_Entry_Remains(t *testing.T) {
	a := New(1, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 100))

	// Freeing two disjoint, non-adjacent ranges needs two unused entries,
	// but this allocator only has one slot total.
	ok := a.Free(10, 10)
	require.True(t, ok) // first free claims the sole slot entry

	ok = a.Free(50, 10)
	assert.False(t, ok, "second disjoint free has no unused entry left")
}

func Test_Reset_Reinstates_Single_Free_Range_When_Called(t *testing.T) {
	a := New(2, 0, 100, MaxFit)
	require.True(t, a.AllocAt(0, 100))
	require.Empty(t, a.Ranges())

	a.Reset(0, 100)

	ranges := a.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, [2]uint32{0, 100}, ranges[0])
}

func Test_Allocator_Rejects_All_Operations_When_Zero_Slots_Configured(t *testing.T) {
	a := New(0, 0, 100, MaxFit)

	_, ok := a.Alloc(1)
	assert.False(t, ok)

	ok = a.AllocAt(0, 1)
	assert.False(t, ok)

	ok = a.Free(0, 1)
	assert.False(t, ok)

	assert.Equal(t, 0, a.NumSlots())
}
