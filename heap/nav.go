package heap

import "github.com/mkendrick/segalloc/internal/word"

// findNext returns the block whose header immediately follows b's payload,
// valid for any real block; for the tail block it yields the epilogue.
func (h *Heap) findNext(b block) block {
	return block(uint64(b) + h.size(b))
}

// findPrev returns b's predecessor in address order. Callers must only call
// this when prevAlloc(b) is false — an allocated predecessor carries no
// footer, so its address cannot be recovered from b alone.
func (h *Heap) findPrev(b block) block {
	if h.prevMini(b) {
		return block(uint64(b) - word.AlignQuantum)
	}
	footerWord := word.ReadWord(h.bytes(), uint64(b)-8)
	return block(uint64(b) - word.Size(footerWord))
}
