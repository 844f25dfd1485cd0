package heap

import "github.com/mkendrick/segalloc/internal/word"

// Ptr is an opaque payload pointer returned by Alloc/Calloc and consumed by
// Free/Realloc. The zero value denotes null: no real payload can start at
// offset 0 since the prologue occupies the first 8 bytes of the arena.
type Ptr uint64

// block identifies a real block by the byte offset of its header word.
type block uint64

// bytes returns the current backing slice of the heap's arena. Cached calls
// like h.bytes() keep every boundary-tag access going through one seam.
func (h *Heap) bytes() []byte {
	return h.arena.Bytes()
}

func (h *Heap) word(b block) uint64 {
	return word.ReadWord(h.bytes(), uint64(b))
}

func (h *Heap) setWord(b block, w uint64) {
	word.WriteWord(h.bytes(), uint64(b), w)
}

func (h *Heap) size(b block) uint64       { return word.Size(h.word(b)) }
func (h *Heap) alloc(b block) bool        { return word.Alloc(h.word(b)) }
func (h *Heap) prevAlloc(b block) bool    { return word.PrevAlloc(h.word(b)) }
func (h *Heap) prevMini(b block) bool     { return word.PrevMini(h.word(b)) }
func (h *Heap) isMini(b block) bool       { return h.size(b) == word.AlignQuantum }
func (h *Heap) footerOff(b block) uint64  { return uint64(b) + h.size(b) - 8 }

// writeBlock packs size/alloc/prevAlloc/prevMini into the header at b and,
// when b is a free regular block, mirrors the word into the footer so the
// two stay bit-for-bit identical per the data model's footer-coherence
// invariant.
func (h *Heap) writeBlock(b block, size uint64, alloc, prevAlloc, prevMini bool) {
	w := word.Pack(size, alloc, prevAlloc, prevMini)
	h.setWord(b, w)
	if !alloc && size > word.AlignQuantum {
		word.WriteWord(h.bytes(), h.footerOff(b), w)
	}
}

// setPrevAlloc updates b's prevAlloc bit in place, keeping the footer
// mirrored if b is itself a free regular block.
func (h *Heap) setPrevAlloc(b block, v bool) {
	w := word.SetPrevAlloc(h.word(b), v)
	h.setWord(b, w)
	if !word.Alloc(w) && word.Size(w) > word.AlignQuantum {
		word.WriteWord(h.bytes(), h.footerOff(b), w)
	}
}

// setPrevMini updates b's prevMini bit in place, keeping the footer
// mirrored if b is itself a free regular block.
func (h *Heap) setPrevMini(b block, v bool) {
	w := word.SetPrevMini(h.word(b), v)
	h.setWord(b, w)
	if !word.Alloc(w) && word.Size(w) > word.AlignQuantum {
		word.WriteWord(h.bytes(), h.footerOff(b), w)
	}
}

// writeNextFlags propagates b's own alloc state and mini-ness onto the
// prevAlloc/prevMini bits of the block immediately following it. Every
// state transition that changes b's alloc bit or size must call this on b
// (or on whichever block absorbed b during a coalesce) exactly once.
func (h *Heap) writeNextFlags(b block) {
	n := h.findNext(b)
	h.setPrevAlloc(n, h.alloc(b))
	h.setPrevMini(n, h.isMini(b))
}

// headerOf converts a payload pointer to the block whose payload it is.
func headerOf(p Ptr) block { return block(uint64(p) - 8) }

// payloadOf returns the payload pointer for block b.
func payloadOf(b block) Ptr { return Ptr(uint64(b) + 8) }
