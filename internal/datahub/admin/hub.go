// Package admin implements the Admin/IO/Query surface (C8): a thin
// façade tying the resource tree, destination registry, and config
// loader together behind the namespace convention of spec.md §4.8.
package admin

import (
	"strings"

	"github.com/threatflux/datahub/internal/datahub/configsvc"
	"github.com/threatflux/datahub/internal/datahub/destination"
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/observation"
	"github.com/threatflux/datahub/internal/datahub/resource"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/datahub/tree"
)

// Hub is the single process-wide façade: one resource tree, one
// destination registry, one config loader, wired together.
type Hub struct {
	tree         *tree.Tree
	destinations *destination.Registry
	loader       *configsvc.Loader
}

// New creates a Hub. backupStore may be nil to disable observation
// backups.
func New(backupStore observation.BackupStore) *Hub {
	t := tree.New(backupStore)
	h := &Hub{
		tree:         t,
		destinations: destination.New(),
	}
	t.SetDestinationSink(h)
	h.loader = configsvc.New(t)
	return h
}

// Deliver implements observation.DestinationSink by routing through the
// destination registry. A destination with no registered handler is
// silently dropped — the producer side of a destination may not have
// connected yet, and that isn't the observation's problem.
func (h *Hub) Deliver(destinationName, observationPath string, s sample.Sample) {
	_ = h.destinations.Trigger(destinationName, observationPath, s)
}

// appPrefix returns the namespace an app is confined to.
func appPrefix(appID string) string { return "/app/" + appID }

func underApp(appID, path string) bool {
	prefix := appPrefix(appID)
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// RegisterInput lets app appID create or re-register an Input resource
// at path, which must fall under /app/<appID>/... (spec.md §4.8).
func (h *Hub) RegisterInput(appID, path string, dataType sample.Type, units string) (*resource.Resource, error) {
	if !underApp(appID, path) {
		return nil, dherrors.ErrBadParameter
	}
	return h.tree.GetInput(path, dataType, units)
}

// RegisterOutput is RegisterInput's Output counterpart.
func (h *Hub) RegisterOutput(appID, path string, dataType sample.Type, units string) (*resource.Resource, error) {
	if !underApp(appID, path) {
		return nil, dherrors.ErrBadParameter
	}
	return h.tree.GetOutput(path, dataType, units)
}

// PushFromApp pushes a sample as app appID, which may only push to
// paths under its own namespace.
func (h *Hub) PushFromApp(appID, path string, t sample.Type, s sample.Sample) error {
	if !underApp(appID, path) {
		return dherrors.ErrBadParameter
	}
	e, err := h.tree.Find(path)
	if err != nil {
		return err
	}
	return e.Resource().Push(t, s)
}

// PushAdmin pushes a sample to any absolute path, creating a
// Placeholder if necessary — the administrator is not confined to any
// app namespace (spec.md §4.8: "push_X family is available to the
// administrator for any absolute path").
func (h *Hub) PushAdmin(path string, t sample.Type, s sample.Sample) error {
	res, err := h.tree.Resolve(path)
	if err != nil {
		return err
	}
	return res.Push(t, s)
}

// Query returns path's current value.
func (h *Hub) Query(path string) (sample.Sample, bool, error) {
	e, err := h.tree.Find(path)
	if err != nil {
		return sample.Sample{}, false, err
	}
	if e.Resource() == nil {
		return sample.Sample{}, false, dherrors.ErrNotFound
	}
	v, ok := e.Resource().CurrentValue()
	return v, ok, nil
}

// GetObservation returns (creating if absent) the Observation at an
// /obs-relative or absolute path.
func (h *Hub) GetObservation(name string) (*observation.Observation, error) {
	return h.tree.GetObservation(tree.NormalizeObsPath(name))
}

// DeleteObservation removes the Observation at an /obs-relative or
// absolute path.
func (h *Hub) DeleteObservation(name string) error {
	return h.tree.DeleteObservation(tree.NormalizeObsPath(name))
}

// DeleteIO removes the Input or Output resource at path.
func (h *Hub) DeleteIO(path string) error { return h.tree.DeleteIO(path) }

// SetDefault, SetOverride, SetSource, and their removers are
// administrator operations over any absolute path, implicitly creating
// a Placeholder where needed.
func (h *Hub) SetDefault(path string, t sample.Type, s sample.Sample) error {
	res, err := h.tree.Resolve(path)
	if err != nil {
		return err
	}
	return res.SetDefault(t, s)
}

func (h *Hub) SetOverride(path string, t sample.Type, s sample.Sample) error {
	res, err := h.tree.Resolve(path)
	if err != nil {
		return err
	}
	res.SetOverride(t, s)
	return nil
}

func (h *Hub) SetSource(dstPath, srcPath string) error {
	return h.tree.SetSource(dstPath, srcPath)
}

func (h *Hub) RemoveDefault(path string) error  { return h.tree.RemoveDefault(path) }
func (h *Hub) RemoveOverride(path string) error { return h.tree.RemoveOverride(path) }
func (h *Hub) RemoveSource(path string) error   { return h.tree.RemoveSource(path) }

// AddDestination registers a delivery callback for a symbolic
// destination name (spec.md §4.7).
func (h *Hub) AddDestination(name string, cb destination.Callback) (destination.Ref, error) {
	return h.destinations.Add(name, cb)
}

// RemoveDestination unregisters a destination callback.
func (h *Hub) RemoveDestination(ref destination.Ref) error {
	return h.destinations.Remove(ref)
}

// LoadConfig runs a two-phase config load against the hub's tree.
func (h *Hub) LoadConfig(encoding string, src configsvc.Source) (configsvc.LoadResult, error) {
	return h.loader.Load(encoding, src)
}

// Tree exposes the underlying ResourceTree for read-only walks
// (snapshot dumps, query-by-prefix) that don't belong on this façade.
func (h *Hub) Tree() *tree.Tree { return h.tree }
