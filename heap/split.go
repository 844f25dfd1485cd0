package heap

// split carves an allocation of asize bytes out of the free block b, which
// the caller must already have removed from its free list. Any remainder is
// reinserted as a new free block (mini if exactly 16 bytes, regular
// otherwise); the flags of the block following the original b are updated
// to reflect whichever block now sits there. Returns the now-allocated
// block, which always starts at the same address as b.
func (h *Heap) split(b block, asize uint64) block {
	total := h.size(b)
	rem := total - asize

	switch {
	case rem == 0:
		h.writeBlock(b, total, true, h.prevAlloc(b), h.prevMini(b))
		h.writeNextFlags(b)
		return b

	case rem == 16:
		h.writeBlock(b, asize, true, h.prevAlloc(b), h.prevMini(b))
		remainder := h.findNext(b)
		h.writeBlock(remainder, rem, false, true, asize == 16)
		h.insertMini(remainder)
		h.writeNextFlags(remainder)
		h.stats.SplitCount++
		return b

	default: // rem >= 32, the only remaining representable size per §4.5
		h.writeBlock(b, asize, true, h.prevAlloc(b), h.prevMini(b))
		remainder := h.findNext(b)
		h.writeBlock(remainder, rem, false, true, asize == 16)
		h.insertRegular(remainder)
		h.writeNextFlags(remainder)
		h.stats.SplitCount++
		return b
	}
}
