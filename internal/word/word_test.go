package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	cases := []struct {
		name                         string
		size                         uint64
		alloc, prevAlloc, prevMini   bool
	}{
		{"free regular, prev allocated", 32, false, true, false},
		{"allocated mini, prev mini", 16, true, false, true},
		{"prologue-like", 0, true, true, false},
		{"large free block", 262144, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Pack(tc.size, tc.alloc, tc.prevAlloc, tc.prevMini)
			assert.Equal(t, tc.size, Size(w))
			assert.Equal(t, tc.alloc, Alloc(w))
			assert.Equal(t, tc.prevAlloc, PrevAlloc(w))
			assert.Equal(t, tc.prevMini, PrevMini(w))
		})
	}
}

func TestPackRejectsMisalignedSize(t *testing.T) {
	assert.Panics(t, func() { Pack(17, true, true, false) })
}

func TestSetters(t *testing.T) {
	w := Pack(48, false, false, false)

	w = SetAlloc(w, true)
	require.True(t, Alloc(w))

	w = SetPrevAlloc(w, true)
	require.True(t, PrevAlloc(w))

	w = SetPrevMini(w, true)
	require.True(t, PrevMini(w))

	w = SetSize(w, 64)
	assert.Equal(t, uint64(64), Size(w))
	// flags survive a size change
	assert.True(t, Alloc(w))
	assert.True(t, PrevAlloc(w))
	assert.True(t, PrevMini(w))
}

func TestAlign16(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 16, 16: 16, 17: 32, 24: 32, 4080: 4080, 4081: 4096}
	for in, want := range cases {
		assert.Equal(t, want, Align16(in), "Align16(%d)", in)
	}
}

func TestSentinels(t *testing.T) {
	p := Prologue()
	assert.Equal(t, uint64(0), Size(p))
	assert.True(t, Alloc(p))
	assert.True(t, PrevAlloc(p))
	assert.False(t, PrevMini(p))

	e := Epilogue(false, true)
	assert.Equal(t, uint64(0), Size(e))
	assert.True(t, Alloc(e))
	assert.False(t, PrevAlloc(e))
	assert.True(t, PrevMini(e))
}
