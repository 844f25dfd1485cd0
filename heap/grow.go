package heap

import "github.com/mkendrick/segalloc/internal/word"

// extend grows the heap by need rounded up to a multiple of 16, or by
// chunkSize bytes if that is larger, and inserts the resulting free block
// into the appropriate free list, the same way a real sbrk-backed allocator absorbs the tail of the
// heap into the block that was sitting against the old break.
//
// Only case AA or case FA of the coalescer can apply here: the block
// immediately following the new space is always the freshly written
// epilogue, which is allocated by definition, so the new free block can
// never merge forward.
func (h *Heap) extend(need uint64) (block, error) {
	reqBytes := word.Align16(need)
	if reqBytes < h.chunkSize {
		reqBytes = h.chunkSize
	}

	oldEpilogue := block(h.epilogueOff)
	oldWord := h.word(oldEpilogue)
	inheritedPrevAlloc := word.PrevAlloc(oldWord)
	inheritedPrevMini := word.PrevMini(oldWord)

	if _, err := h.arena.Grow(reqBytes); err != nil {
		return 0, err
	}

	newBlock := oldEpilogue
	h.writeBlock(newBlock, reqBytes, false, inheritedPrevAlloc, inheritedPrevMini)

	h.epilogueOff = uint64(newBlock) + reqBytes
	h.setWord(block(h.epilogueOff), word.Epilogue(false, false))

	merged := h.coalesce(newBlock)
	h.insertIntoList(merged)

	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(reqBytes)
	return merged, nil
}
