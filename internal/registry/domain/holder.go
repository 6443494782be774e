package registry

import "sync/atomic"

// Holder publishes the current registry to concurrent readers. A reload
// builds a new registry off to the side and swaps it in only on success.
type Holder struct {
	current atomic.Pointer[Registry]
}

// NewHolder returns a holder containing r, which may be nil.
func NewHolder(r *Registry) *Holder {
	h := &Holder{}
	if r != nil {
		h.current.Store(r)
	}
	return h
}

// Load returns the current registry or nil.
func (h *Holder) Load() *Registry { return h.current.Load() }

// Swap installs r and returns the previous registry.
func (h *Holder) Swap(r *Registry) *Registry { return h.current.Swap(r) }
