// Package word implements the boundary-tag codec: packing and unpacking of
// the 64-bit header/footer word used by package heap.
//
// A word encodes a block's size and three flag bits:
//
//	bit 0: alloc, this block is allocated
//	bit 1: prevAlloc, the preceding block (in address order) is allocated
//	bit 2: prevMini, the preceding block is a 16-byte mini block
//	bit 3: reserved, always zero
//	bits 4..63: size, a non-negative multiple of 16
//
// The codec functions (Pack, the getters and setters, Align16 and the
// sentinels) are pure. ReadWord/WriteWord and ReadPtr/WritePtr read and write
// a word in a byte slice at a given offset; package heap is responsible for
// choosing the right offset.
package word

import (
	"encoding/binary"
	"fmt"
)

const (
	allocMask     = uint64(1) << 0
	prevAllocMask = uint64(1) << 1
	prevMiniMask  = uint64(1) << 2
	sizeMask      = ^uint64(0xf)

	// AlignQuantum is the allocation alignment required by the data model
	// (every block size is a multiple of this).
	AlignQuantum = 16
)

// Pack encodes size and the three flag bits into a single header/footer word.
// size must already be a multiple of AlignQuantum; Pack panics otherwise,
// since a misaligned size is always a caller bug, never a runtime condition.
func Pack(size uint64, alloc, prevAlloc, prevMini bool) uint64 {
	if size&0xf != 0 {
		panic(fmt.Sprintf("word: size %d is not a multiple of %d", size, AlignQuantum))
	}
	w := size
	if alloc {
		w |= allocMask
	}
	if prevAlloc {
		w |= prevAllocMask
	}
	if prevMini {
		w |= prevMiniMask
	}
	return w
}

// Size extracts the block size from a header/footer word.
func Size(w uint64) uint64 { return w & sizeMask }

// Alloc extracts the alloc bit.
func Alloc(w uint64) bool { return w&allocMask != 0 }

// PrevAlloc extracts the prevAlloc bit.
func PrevAlloc(w uint64) bool { return w&prevAllocMask != 0 }

// PrevMini extracts the prevMini bit.
func PrevMini(w uint64) bool { return w&prevMiniMask != 0 }

// SetAlloc returns w with the alloc bit set to v, size and other flags
// unchanged.
func SetAlloc(w uint64, v bool) uint64 {
	if v {
		return w | allocMask
	}
	return w &^ allocMask
}

// SetPrevAlloc returns w with the prevAlloc bit set to v.
func SetPrevAlloc(w uint64, v bool) uint64 {
	if v {
		return w | prevAllocMask
	}
	return w &^ prevAllocMask
}

// SetPrevMini returns w with the prevMini bit set to v.
func SetPrevMini(w uint64, v bool) uint64 {
	if v {
		return w | prevMiniMask
	}
	return w &^ prevMiniMask
}

// SetSize returns w with the size field replaced, flags unchanged. size must
// be a multiple of AlignQuantum.
func SetSize(w, size uint64) uint64 {
	if size&0xf != 0 {
		panic(fmt.Sprintf("word: size %d is not a multiple of %d", size, AlignQuantum))
	}
	return (w &^ sizeMask) | size
}

// Align16 rounds n up to the next multiple of 16.
func Align16(n uint64) uint64 {
	return (n + AlignQuantum - 1) &^ uint64(AlignQuantum-1)
}

// Prologue is the sentinel word placed immediately before the first real
// block: zero size, allocated, with prevAlloc set so the first block's
// predecessor always looks allocated.
func Prologue() uint64 { return Pack(0, true, true, false) }

// Epilogue packs the sentinel word placed immediately after the last real
// block, carrying forward the tail block's alloc/mini state so find_next
// never needs special-case logic at the end of the heap.
func Epilogue(prevAlloc, prevMini bool) uint64 { return Pack(0, true, prevAlloc, prevMini) }

// ReadWord reads the header/footer word at byte offset off in b.
func ReadWord(b []byte, off uint64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// WriteWord writes w as the header/footer word at byte offset off in b.
func WriteWord(b []byte, off uint64, w uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], w)
}

// ReadPtr reads an in-band free-list pointer (a byte offset, or 0 for null)
// stored at byte offset off in b.
func ReadPtr(b []byte, off uint64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// WritePtr writes an in-band free-list pointer at byte offset off in b.
func WritePtr(b []byte, off uint64, p uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], p)
}
