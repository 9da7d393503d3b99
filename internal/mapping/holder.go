package mapping

import "sync/atomic"

// Holder publishes the current Store to concurrent readers. A reload builds a
// complete Store first and installs it with Swap, so readers always see either
// the old or the new index set and never a mix.
type Holder struct {
	current atomic.Pointer[Store]
}

// NewHolder returns a Holder serving s.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

// Load returns the current Store.
func (h *Holder) Load() *Store {
	return h.current.Load()
}

// Swap installs s and returns the Store it replaced.
func (h *Holder) Swap(s *Store) *Store {
	return h.current.Swap(s)
}
