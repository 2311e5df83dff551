// Package tree implements ResourceTree (C4): the path-addressed
// hierarchy of Entry nodes that anchors every Resource in the system
// (spec.md §3, §4.4). Namespaces are created implicitly as paths are
// registered and destroyed implicitly once they go empty; Input,
// Output, and Observation entries carry a Resource and participate in
// the replacement policy of spec.md §3.
package tree

import (
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/handler"
	"github.com/threatflux/datahub/internal/datahub/observation"
	"github.com/threatflux/datahub/internal/datahub/resource"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// Tree owns the Entry hierarchy and the handler table every Resource
// registers its push handlers against.
type Tree struct {
	root            *Entry
	table           *handler.Table
	backupStore     observation.BackupStore
	destinationSink observation.DestinationSink
}

// New creates an empty tree rooted at "/".
func New(backupStore observation.BackupStore) *Tree {
	return &Tree{
		root:        newEntry("", nil),
		table:       handler.NewTable(),
		backupStore: backupStore,
	}
}

// SetDestinationSink wires symbolic destination-name delivery (spec.md
// §4.7) into every Observation the tree creates from this point on, and
// retroactively into every Observation that already exists.
func (t *Tree) SetDestinationSink(sink observation.DestinationSink) {
	t.destinationSink = sink
	PostOrder(t.root, func(e *Entry) {
		if e.Kind() == ObservationEntry {
			e.obs.SetDestinationSink(sink)
		}
	})
}

// Root returns the tree's root entry.
func (t *Tree) Root() *Entry { return t.root }

// Find looks up path without creating anything, failing with
// dherrors.ErrNotFound if any segment along the way is missing.
func (t *Tree) Find(path string) (*Entry, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	cur := t.root
	for _, s := range segs {
		child, ok := cur.childByName(s)
		if !ok {
			return nil, dherrors.ErrNotFound
		}
		cur = child
	}
	return cur, nil
}

// get resolves path, creating intermediate (and, if absent, the final)
// entries as plain Namespaces. This is the tree's only mutation of
// structure that never fails with NotFound — it is how Entry creation
// happens for every Get*/Set* admin operation (spec.md §3 "Namespaces
// ... created implicitly").
func (t *Tree) get(path string) (*Entry, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	cur := t.root
	for _, s := range segs {
		child, ok := cur.childByName(s)
		if !ok {
			child = newEntry(s, cur)
			cur.addChild(child)
		}
		cur = child
	}
	return cur, nil
}

// PostOrder visits every entry in the subtree rooted at e, children
// before parents. Each level's children are snapshotted before any of
// them are visited, so a callback is free to delete the entry it was
// just called with (or any of its siblings) without corrupting the
// walk — the tree's equivalent of spec.md §4.4's "next sibling must
// still be reachable" guarantee.
func PostOrder(e *Entry, visit func(*Entry)) {
	for _, c := range e.Children() {
		PostOrder(c, visit)
	}
	visit(e)
}

// replace installs newRes/newKind at entry, migrating admin settings
// from any previously attached Resource (spec.md §3's replacement
// policy). obs is non-nil iff newKind is ObservationEntry.
func (t *Tree) replace(e *Entry, newKind EntryKind, newRes *resource.Resource, obs *observation.Observation) {
	if e.res != nil {
		resource.MigrateOnReplace(e.res, newRes)
	}
	e.kind = newKind
	e.res = newRes
	e.obs = obs
}

// GetInput returns the Input resource at path, creating it (and any
// missing namespace ancestors) if absent. Re-registering the same path
// with the same dataType/units is idempotent; a conflicting dataType or
// units, or a path already holding an Output or Observation, fails
// with dherrors.ErrDuplicate.
func (t *Tree) GetInput(path string, dataType sample.Type, units string) (*resource.Resource, error) {
	return t.getIO(path, Input, dataType, units)
}

// GetOutput is GetInput's Output counterpart.
func (t *Tree) GetOutput(path string, dataType sample.Type, units string) (*resource.Resource, error) {
	return t.getIO(path, Output, dataType, units)
}

func (t *Tree) getIO(path string, kind EntryKind, dataType sample.Type, units string) (*resource.Resource, error) {
	e, err := t.get(path)
	if err != nil {
		return nil, err
	}
	switch e.kind {
	case Namespace, Placeholder:
		rk := resource.Input
		if kind == Output {
			rk = resource.Output
		}
		newRes := resource.New(rk, path, dataType, units, t.table)
		t.replace(e, kind, newRes, nil)
		return e.res, nil
	case kind:
		if e.res.DataType() != dataType || e.res.Units() != units {
			return nil, dherrors.ErrDuplicate
		}
		return e.res, nil
	default:
		return nil, dherrors.ErrDuplicate
	}
}

// GetObservation returns the Observation at path, creating it (and any
// missing namespace ancestors) if absent. A path already holding an
// Input or Output resource fails with dherrors.ErrDuplicate.
func (t *Tree) GetObservation(path string) (*observation.Observation, error) {
	e, err := t.get(path)
	if err != nil {
		return nil, err
	}
	switch e.kind {
	case Namespace, Placeholder:
		obs := observation.New(path, t.table, t.backupStore)
		obs.SetDestinationSink(t.destinationSink)
		t.replace(e, ObservationEntry, obs.Resource, obs)
		return e.obs, nil
	case ObservationEntry:
		return e.obs, nil
	default:
		return nil, dherrors.ErrDuplicate
	}
}

// placeholder returns the Placeholder at path, creating it (and any
// missing namespace ancestors) if absent. Used internally whenever an
// admin operation (default, override, source target) addresses a path
// that isn't already a Resource.
func (t *Tree) placeholder(path string) (*Entry, error) {
	e, err := t.get(path)
	if err != nil {
		return nil, err
	}
	if e.kind == Namespace {
		newRes := resource.New(resource.Placeholder, path, sample.Trigger, "", t.table)
		t.replace(e, Placeholder, newRes, nil)
	}
	return e, nil
}

// Resolve returns the Resource at path, creating a Placeholder if the
// path currently resolves to a bare namespace (spec.md §3: "Admin
// operations ... implicitly create a Placeholder").
func (t *Tree) Resolve(path string) (*resource.Resource, error) {
	e, err := t.placeholder(path)
	if err != nil {
		return nil, err
	}
	return e.res, nil
}

// DeleteIO removes the Input or Output resource at path. If it still
// carries admin settings (default, override, or source), it downgrades
// to a Placeholder instead of disappearing; otherwise the entry reverts
// to a plain namespace and is pruned if that leaves it (and any empty
// namespace ancestors) childless.
func (t *Tree) DeleteIO(path string) error {
	e, err := t.Find(path)
	if err != nil {
		return err
	}
	if e.kind != Input && e.kind != Output {
		return dherrors.ErrBadParameter
	}
	return t.deleteResourceEntry(e)
}

// DeleteObservation removes the Observation at path unconditionally
// (spec.md §4.4: "Observation deletion is explicit"), including its
// persisted backup.
func (t *Tree) DeleteObservation(path string) error {
	e, err := t.Find(path)
	if err != nil {
		return err
	}
	if e.kind != ObservationEntry {
		return dherrors.ErrBadParameter
	}
	_ = e.obs.DeleteBackup()
	e.obs.DetachAsSource()
	e.kind = Namespace
	e.res = nil
	e.obs = nil
	t.pruneUpward(e)
	return nil
}

func (t *Tree) deleteResourceEntry(e *Entry) error {
	res := e.res
	if res.AdminSettingsPresent() {
		newRes := resource.New(resource.Placeholder, e.Path(), res.DataType(), "", t.table)
		t.replace(e, Placeholder, newRes, nil)
		return nil
	}
	res.DetachAsSource()
	e.kind = Namespace
	e.res = nil
	e.obs = nil
	t.pruneUpward(e)
	return nil
}

// prunePlaceholder removes e if it is a Placeholder with no admin
// settings and no incoming source edges (spec.md §3: "Placeholders
// vanish when admin_settings_present = false and no incoming source
// edges remain"). Called after any operation that might have cleared
// an override/default/source on a Placeholder.
func (t *Tree) prunePlaceholder(e *Entry) {
	if e.kind != Placeholder {
		return
	}
	if e.res.AdminSettingsPresent() || e.res.ConsumerCount() > 0 {
		return
	}
	e.kind = Namespace
	e.res = nil
	t.pruneUpward(e)
}

// pruneUpward removes e (if it is now an empty namespace) and walks up
// removing empty namespace ancestors, stopping at the root or at the
// first ancestor still holding a resource or another child.
func (t *Tree) pruneUpward(e *Entry) {
	cur := e
	for cur.parent != nil && cur.isEmptyNamespace() {
		parent := cur.parent
		parent.removeChild(cur.name)
		cur = parent
	}
}

// RemoveDefault clears path's default value and prunes it if it was a
// now-bare Placeholder.
func (t *Tree) RemoveDefault(path string) error {
	e, err := t.Find(path)
	if err != nil {
		return err
	}
	e.res.RemoveDefault()
	t.prunePlaceholder(e)
	return nil
}

// RemoveOverride clears path's override value and prunes it if it was
// a now-bare Placeholder.
func (t *Tree) RemoveOverride(path string) error {
	e, err := t.Find(path)
	if err != nil {
		return err
	}
	e.res.RemoveOverride()
	t.prunePlaceholder(e)
	return nil
}

// RemoveSource clears path's source edge and prunes it if it was a
// now-bare Placeholder.
func (t *Tree) RemoveSource(path string) error {
	e, err := t.Find(path)
	if err != nil {
		return err
	}
	e.res.RemoveSource()
	t.prunePlaceholder(e)
	return nil
}

// SetSource wires srcPath's resource onto dstPath's resource, creating
// Placeholders at either end as needed.
func (t *Tree) SetSource(dstPath, srcPath string) error {
	dst, err := t.placeholder(dstPath)
	if err != nil {
		return err
	}
	src, err := t.placeholder(srcPath)
	if err != nil {
		return err
	}
	return dst.res.SetSource(src.res)
}
