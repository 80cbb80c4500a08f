// Package scratchpad allocates and frees the 4096-byte-aligned per-way
// working memory the hash function mixes into.
package scratchpad

// Set owns up to MAX_WAYS scratchpad allocations. The engine is the sole
// owner of a Set for its entire lifetime: no reference is ever handed to
// the host.
type Set struct {
	memBytes int
	pads     [][]byte
	handles  []handle
}

// Alloc builds a Set of n pads of size memBytes each, 4096-byte aligned.
// Allocation failure here is unrecoverable and panics: the engine's main
// loop has no recover of its own, so this panic terminates the engine
// goroutine, which the bridge surfaces as an engine-fatal error.
func Alloc(n, memBytes int) *Set {
	s := &Set{memBytes: memBytes}
	for i := 0; i < n; i++ {
		h, buf := allocAligned(memBytes)
		s.handles = append(s.handles, h)
		s.pads = append(s.pads, buf)
	}
	return s
}

// Pads returns the underlying scratchpad buffers, one per way, in order.
func (s *Set) Pads() [][]byte { return s.pads }

// MemBytes reports the per-pad size this Set was allocated with.
func (s *Set) MemBytes() int { return s.memBytes }

// Ways reports how many pads this Set holds.
func (s *Set) Ways() int { return len(s.pads) }

// Reusable reports whether an existing Set can be kept as-is for a new
// job: only reuse when both ways and mem_bytes are unchanged.
func (s *Set) Reusable(ways, memBytes int) bool {
	return s != nil && s.Ways() == ways && s.MemBytes() == memBytes
}

// Free releases every pad in the set. After Free, the Set must not be used.
func (s *Set) Free() {
	for i, h := range s.handles {
		freeAligned(h, s.pads[i])
	}
	s.pads = nil
	s.handles = nil
}
