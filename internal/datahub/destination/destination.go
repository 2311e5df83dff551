// Package destination implements the fixed-capacity destination
// registry (C7): a small symbolic table mapping destination names to
// push callbacks, used by Observations whose "destination" admin
// setting is a plain name rather than a resource path (spec.md §4.7).
package destination

import (
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// MaxDestinations bounds the registry the way the original C fixed the
// destinationRecord array's size at compile time.
const MaxDestinations = 6

// Callback receives an observation's accepted sample for delivery to
// whatever external sink the destination name represents.
type Callback func(destination string, observationPath string, s sample.Sample)

type slot struct {
	name     string
	callback Callback
	inUse    bool
}

// Ref identifies a registered destination handler for later removal.
type Ref struct{ index int }

// Registry is the fixed-capacity destination table.
type Registry struct {
	slots [MaxDestinations]slot
}

// New creates an empty registry.
func New() *Registry { return &Registry{} }

// Add registers a callback under name, returning dherrors.ErrNoMemory
// if the table is full (spec.md §4.7's "fixed capacity"). A nil cb is
// rejected with dherrors.ErrBadParameter rather than stored, since
// Trigger calls it unconditionally.
func (r *Registry) Add(name string, cb Callback) (Ref, error) {
	if cb == nil {
		return Ref{}, dherrors.ErrBadParameter
	}
	for i := range r.slots {
		if !r.slots[i].inUse {
			r.slots[i] = slot{name: name, callback: cb, inUse: true}
			return Ref{index: i}, nil
		}
	}
	return Ref{}, dherrors.ErrNoMemory
}

// Remove unregisters a previously added destination handler.
func (r *Registry) Remove(ref Ref) error {
	if ref.index < 0 || ref.index >= MaxDestinations || !r.slots[ref.index].inUse {
		return dherrors.ErrBadParameter
	}
	r.slots[ref.index] = slot{}
	return nil
}

// Trigger delivers s to the callback registered under name. It reports
// dherrors.ErrNotFound if no handler is registered for that name.
func (r *Registry) Trigger(name string, observationPath string, s sample.Sample) error {
	for i := range r.slots {
		if r.slots[i].inUse && r.slots[i].name == name {
			r.slots[i].callback(name, observationPath, s)
			return nil
		}
	}
	return dherrors.ErrNotFound
}

// Has reports whether any handler is currently registered under name.
func (r *Registry) Has(name string) bool {
	for i := range r.slots {
		if r.slots[i].inUse && r.slots[i].name == name {
			return true
		}
	}
	return false
}
