package heap

// coalesce merges a newly-freed block b with whichever free neighbors it
// has. b's alloc bit must already be cleared (and its footer, if any,
// already written) before calling this; b must not yet be in any free
// list. The caller is responsible for inserting the returned block into
// the appropriate free list.
func (h *Heap) coalesce(b block) block {
	prevAllocated := h.prevAlloc(b)
	next := h.findNext(b)
	nextAllocated := h.alloc(next)

	switch {
	case prevAllocated && nextAllocated:
		// Case AA: no neighbor is free. Only the successor's cached flags
		// need updating since b's own state already reflects that it's free.
		h.writeNextFlags(b)
		return b

	case !prevAllocated && nextAllocated:
		// Case FA: absorb the free predecessor.
		p := h.findPrev(b)
		h.removeFromList(p)
		merged := h.size(p) + h.size(b)
		h.writeBlock(p, merged, false, h.prevAlloc(p), h.prevMini(p))
		h.writeNextFlags(p)
		h.stats.CoalesceBackward++
		return p

	case prevAllocated && !nextAllocated:
		// Case AF: absorb the free successor.
		h.removeFromList(next)
		merged := h.size(b) + h.size(next)
		h.writeBlock(b, merged, false, h.prevAlloc(b), h.prevMini(b))
		h.writeNextFlags(b)
		h.stats.CoalesceForward++
		return b

	default:
		// Case FF: absorb both neighbors into the predecessor.
		p := h.findPrev(b)
		h.removeFromList(p)
		h.removeFromList(next)
		merged := h.size(p) + h.size(b) + h.size(next)
		h.writeBlock(p, merged, false, h.prevAlloc(p), h.prevMini(p))
		h.writeNextFlags(p)
		h.stats.CoalesceBackward++
		h.stats.CoalesceForward++
		return p
	}
}

// removeFromList unlinks a free block from whichever list it belongs to,
// mini or regular.
func (h *Heap) removeFromList(b block) {
	if h.isMini(b) {
		h.removeMini(b)
	} else {
		h.removeRegular(b)
	}
}

// insertIntoList inserts a free block into whichever list it belongs to.
func (h *Heap) insertIntoList(b block) {
	if h.isMini(b) {
		h.insertMini(b)
	} else {
		h.insertRegular(b)
	}
}
