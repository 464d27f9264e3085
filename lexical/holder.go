package lexical

import "sync/atomic"

// Holder publishes the active index to concurrent readers. Swapping in
// a rebuilt index is atomic: readers see either the old index or the
// new one, never a partial state. A Holder with no index means the
// lexical path is disabled.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder creates a holder. idx may be nil to start disabled.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.current.Store(idx)
	}
	return h
}

// Current returns the active index, or nil when disabled.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Swap publishes idx as the active index and returns the previous one.
func (h *Holder) Swap(idx *Index) *Index {
	return h.current.Swap(idx)
}

// Enabled reports whether an index is available for queries.
func (h *Holder) Enabled() bool {
	return h.current.Load() != nil
}
