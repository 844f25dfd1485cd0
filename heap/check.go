package heap

import (
	"fmt"

	"github.com/mkendrick/segalloc/internal/word"
)

// CheckHeap is a read-only invariant validator. It walks the heap in
// address order and separately walks every free list, cross-checking both
// views against each other. It never mutates state and never aborts the
// process; callers decide what to do with a failed check. Intended for
// use in development and via WithDebugChecks.
func (h *Heap) CheckHeap() (bool, string) {
	if !h.initialized {
		return true, ""
	}

	seenFree := 0
	prevAllocSeen := true

	cur := block(8)
	for {
		sz := h.size(cur)
		if sz == 0 {
			break
		}

		if sz%word.AlignQuantum != 0 {
			return false, fmt.Sprintf("block at %d has misaligned size %d", cur, sz)
		}
		if sz != word.AlignQuantum && sz < 32 {
			return false, fmt.Sprintf("block at %d has unrepresentable size %d", cur, sz)
		}
		if sz > h.epilogueOff-uint64(cur) {
			return false, fmt.Sprintf("block at %d with size %d extends past the epilogue at %d", cur, sz, h.epilogueOff)
		}

		if h.prevAlloc(cur) != prevAllocSeen {
			return false, fmt.Sprintf("block at %d: prev_alloc=%v does not match predecessor's actual state", cur, h.prevAlloc(cur))
		}

		if !h.alloc(cur) {
			seenFree++
			if !prevAllocSeen {
				return false, fmt.Sprintf("block at %d is free with a free predecessor", cur)
			}
			if sz > word.AlignQuantum {
				footer := word.ReadWord(h.bytes(), h.footerOff(cur))
				if footer != h.word(cur) {
					return false, fmt.Sprintf("block at %d: header/footer mismatch", cur)
				}
			}
		}

		next := h.findNext(cur)
		if word.PrevAlloc(h.word(next)) != h.alloc(cur) {
			return false, fmt.Sprintf("block at %d: successor's prev_alloc does not reflect this block's state", cur)
		}
		if word.PrevMini(h.word(next)) != h.isMini(cur) {
			return false, fmt.Sprintf("block at %d: successor's prev_mini does not reflect this block's state", cur)
		}

		prevAllocSeen = h.alloc(cur)
		cur = next
	}
	if uint64(cur) != h.epilogueOff || h.epilogueOff+8 != h.arena.Len() {
		return false, fmt.Sprintf("heap walk ended at %d but the epilogue is at %d in a %d-byte arena", cur, h.epilogueOff, h.arena.Len())
	}

	listFree := 0
	for c := 0; c < h.numClasses(); c++ {
		var prev block
		for b := block(h.classHeads[c]); b != 0; b = h.nextOf(b) {
			if h.alloc(b) {
				return false, fmt.Sprintf("class %d contains allocated block at %d", c, b)
			}
			if h.classOf(h.size(b)) != c {
				return false, fmt.Sprintf("block at %d has size %d but sits in class %d", b, h.size(b), c)
			}
			if h.prevOf(b) != prev {
				return false, fmt.Sprintf("block at %d: prev pointer does not point back to predecessor", b)
			}
			prev = b
			listFree++
		}
	}
	for b := block(h.miniHead); b != 0; b = h.miniNextOf(b) {
		if h.alloc(b) {
			return false, fmt.Sprintf("mini list contains allocated block at %d", b)
		}
		if !h.isMini(b) {
			return false, fmt.Sprintf("mini list contains non-mini block at %d", b)
		}
		listFree++
	}

	if seenFree != listFree {
		return false, fmt.Sprintf("heap walk saw %d free blocks but free lists contain %d", seenFree, listFree)
	}

	return true, ""
}
