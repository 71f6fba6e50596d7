package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcypress/kvs/adapter"
)

func Test_Ram_Reads_Back_Written_Bytes_When_Round_Tripped(t *testing.T) {
	r := adapter.NewRam(32)

	require.NoError(t, r.Write(4, []byte("hello")))

	buf := make([]byte, 5)
	require.NoError(t, r.Read(4, buf))
	assert.Equal(t, "hello", string(buf))
}

func Test_Ram_Rejects_Access_When_Out_Of_Range(t *testing.T) {
	r := adapter.NewRam(8)

	err := r.Write(4, make([]byte, 8))
	assert.Error(t, err)

	err = r.Read(4, make([]byte, 8))
	assert.Error(t, err)
}

func Test_NewRamFromBytes_Shares_Backing_Array_When_Written_Through(t *testing.T) {
	buf := make([]byte, 8)
	r := adapter.NewRamFromBytes(buf)

	require.NoError(t, r.Write(0, []byte{1, 2, 3}))
	assert.Equal(t, []byte{1, 2, 3}, buf[:3])
}

func Test_Paged_Passes_Through_When_Write_Stays_Within_Page(t *testing.T) {
	r := adapter.NewRam(64)
	p := adapter.NewPaged(r, 16)

	require.NoError(t, p.Write(2, []byte("abcd")))

	got := make([]byte, 4)
	require.NoError(t, r.Read(2, got))
	assert.Equal(t, "abcd", string(got))
}

func Test_Paged_Splits_Write_When_Write_Crosses_Page_Boundary(t *testing.T) {
	r := adapter.NewRam(64)
	p := adapter.NewPaged(r, 8)

	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i + 1)
	}

	require.NoError(t, p.Write(4, data))

	got := make([]byte, 20)
	require.NoError(t, r.Read(4, got))
	assert.Equal(t, data, got, "split writes must reassemble to the same bytes as an unsplit write")
}

func Test_NewPaged_Panics_When_Page_Size_Is_Zero(t *testing.T) {
	assert.Panics(t, func() {
		adapter.NewPaged(adapter.NewRam(8), 0)
	})
}

func Test_Offset_Translates_Addresses_When_Reading_Through_Window(t *testing.T) {
	r := adapter.NewRam(100)
	require.NoError(t, r.Write(50, []byte("window")))

	o, err := adapter.NewOffset(r, 50, 20)
	require.NoError(t, err)

	got := make([]byte, 6)
	require.NoError(t, o.Read(0, got))
	assert.Equal(t, "window", string(got))

	assert.Equal(t, uint32(20), o.MaxAddress())
}

func Test_NewOffset_Fails_When_Window_Exceeds_Inner_Size(t *testing.T) {
	r := adapter.NewRam(10)

	_, err := adapter.NewOffset(r, 5, 10)
	assert.Error(t, err)
}

func Test_Offset_Rejects_Access_When_Past_Window_End(t *testing.T) {
	r := adapter.NewRam(100)
	o, err := adapter.NewOffset(r, 10, 20)
	require.NoError(t, err)

	err = o.Read(15, make([]byte, 10))
	assert.Error(t, err, "access [15,25) exceeds the 20-byte window even though it fits inner")
}
