package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitAllocFree(t *testing.T) {
	h := New()
	defer h.Close()

	p := h.Alloc(24)
	require.NotZero(t, p)
	require.Zero(t, uint64(p)%16)

	h.Free(p)
	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	u := h.Utilization()
	require.Equal(t, h.chunkSize-16, u.FreeBytes)
}

func TestMiniExercise(t *testing.T) {
	h := New()
	defer h.Close()

	a := h.Alloc(8)
	b := h.Alloc(8)
	c := h.Alloc(8)
	require.NotZero(t, a)
	require.NotZero(t, b)
	require.NotZero(t, c)

	require.Equal(t, uint64(16), h.size(headerOf(a)))
	require.Equal(t, uint64(16), h.size(headerOf(b)))
	require.Equal(t, uint64(16), h.size(headerOf(c)))

	h.Free(b)
	h.Free(a)
	h.Free(c)

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	u := h.Utilization()
	require.Equal(t, h.chunkSize-16, u.FreeBytes)
}

func TestSplitThenCoalesce(t *testing.T) {
	h := New(WithChunkSize(8192))
	defer h.Close()

	p := h.Alloc(4080)
	require.NotZero(t, p)

	h.Free(p)

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	u := h.Utilization()
	require.Equal(t, h.chunkSize-16, u.FreeBytes)
	require.Equal(t, uint64(0), u.LiveBytes)
}

func TestBestFitSelection(t *testing.T) {
	h := New()
	defer h.Close()

	// a and b land as free blocks of size 80 and 96 in the size class
	// covering 65-128, separated by mini padding blocks so freeing them
	// doesn't coalesce them back together. c (128 bytes) sits against the
	// free tail of the heap and merges with it when freed.
	a := h.Alloc(64)
	pad1 := h.Alloc(8)
	b := h.Alloc(80)
	pad2 := h.Alloc(8)
	c := h.Alloc(112)

	h.Free(a)
	h.Free(b)
	h.Free(c)

	// A request for asize=64 misses its own (<=64) class entirely and
	// falls through to the bounded best-fit search over the 65-128
	// class, which must pick the smallest block that still fits: a's
	// 80-byte block. The splitter then keeps 64 bytes allocated and turns
	// the 16-byte remainder into a mini free block.
	got := h.Alloc(48)
	require.NotZero(t, got)
	require.Equal(t, a, got)
	require.Equal(t, uint64(64), h.size(headerOf(got)))

	h.Free(pad1)
	h.Free(pad2)
	h.Free(got)
}

func TestReallocGrowPreservesPrefix(t *testing.T) {
	h := New()
	defer h.Close()

	p := h.Alloc(32)
	require.NotZero(t, p)

	buf := h.spanAt(p, 32)
	for i := range buf {
		buf[i] = 0xCD
	}

	q := h.Realloc(p, 128)
	require.NotZero(t, q)

	qbuf := h.spanAt(q, 32)
	for i, b := range qbuf {
		require.Equal(t, byte(0xCD), b, "byte %d", i)
	}

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)
}

func TestHeapExtension(t *testing.T) {
	h := New(WithChunkSize(4096))
	defer h.Close()

	before := h.Utilization().HeapBytes

	var ptrs []Ptr
	for i := 0; i < 4; i++ {
		p := h.Alloc(8192)
		require.NotZero(t, p)
		ptrs = append(ptrs, p)
	}

	after := h.Utilization().HeapBytes
	require.Greater(t, after, before)

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	for _, p := range ptrs {
		h.Free(p)
	}
}

func TestAllocZeroReturnsNull(t *testing.T) {
	h := New()
	defer h.Close()

	require.Zero(t, h.Alloc(0))
}

func TestAllocMaxUint64ReturnsNullWithoutCorruption(t *testing.T) {
	h := New()
	defer h.Close()

	require.Zero(t, h.Alloc(^uint64(0)))

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	p := h.Alloc(16)
	require.NotZero(t, p)
	h.Free(p)
}

func TestInitWithMiniFirstBlock(t *testing.T) {
	h := New(WithChunkSize(32))
	defer h.Close()

	p := h.Alloc(8)
	require.NotZero(t, p)
	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)

	h.Free(p)
	ok, issue = h.CheckHeap()
	require.True(t, ok, issue)
}

func TestFreeNullIsNoop(t *testing.T) {
	h := New()
	defer h.Close()

	h.Free(0)
	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)
}

func TestCallocZeroesAndDetectsOverflow(t *testing.T) {
	h := New()
	defer h.Close()

	p := h.Alloc(0)
	require.Zero(t, p)

	q := h.Calloc(4, 16)
	require.NotZero(t, q)
	for _, b := range h.spanAt(q, 64) {
		require.Zero(t, b)
	}

	const maxU64 = ^uint64(0)
	require.Zero(t, h.Calloc(maxU64, 2))
}

func TestReallocNullBehavesLikeAlloc(t *testing.T) {
	h := New()
	defer h.Close()

	p := h.Realloc(0, 24)
	require.NotZero(t, p)
}

func TestReallocZeroBehavesLikeFree(t *testing.T) {
	h := New()
	defer h.Close()

	p := h.Alloc(24)
	require.Zero(t, h.Realloc(p, 0))

	ok, issue := h.CheckHeap()
	require.True(t, ok, issue)
}
