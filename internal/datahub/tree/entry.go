package tree

import (
	"github.com/threatflux/datahub/internal/datahub/observation"
	"github.com/threatflux/datahub/internal/datahub/resource"
)

// EntryKind is the tree-level kind of an Entry. It extends
// resource.Kind with Namespace, since plain namespaces carry no
// Resource at all.
type EntryKind int

const (
	Namespace EntryKind = iota
	Input
	Output
	ObservationEntry
	Placeholder
)

func (k EntryKind) String() string {
	switch k {
	case Namespace:
		return "namespace"
	case Input:
		return "input"
	case Output:
		return "output"
	case ObservationEntry:
		return "observation"
	case Placeholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

func fromResourceKind(k resource.Kind) EntryKind {
	switch k {
	case resource.Input:
		return Input
	case resource.Output:
		return Output
	case resource.Observation:
		return ObservationEntry
	default:
		return Placeholder
	}
}

// Entry is one node of the resource tree: a namespace, or a namespace
// that additionally carries a Resource (spec.md §3 "Entry"). Children
// are kept in registration order, mirroring the teacher source's
// doubly-linked child list.
type Entry struct {
	name   string
	parent *Entry
	kind   EntryKind
	res    *resource.Resource
	obs    *observation.Observation // non-nil iff kind == ObservationEntry

	childNames []string
	childMap   map[string]*Entry
}

func newEntry(name string, parent *Entry) *Entry {
	return &Entry{
		name:     name,
		parent:   parent,
		kind:     Namespace,
		childMap: make(map[string]*Entry),
	}
}

// Name returns the entry's own path segment ("" for the root).
func (e *Entry) Name() string { return e.name }

// Kind reports whether this entry is a namespace or carries a
// Resource, and if so which concrete kind.
func (e *Entry) Kind() EntryKind { return e.kind }

// Resource returns the attached Resource, or nil for a pure namespace.
func (e *Entry) Resource() *resource.Resource { return e.res }

// Observation returns the attached Observation, or nil unless
// Kind() == ObservationEntry.
func (e *Entry) Observation() *observation.Observation { return e.obs }

// Parent returns the entry's parent, or nil for the root.
func (e *Entry) Parent() *Entry { return e.parent }

// Path reconstructs this entry's absolute path by walking up to the root.
func (e *Entry) Path() string {
	if e.parent == nil {
		return "/"
	}
	var segs []string
	for cur := e; cur.parent != nil; cur = cur.parent {
		segs = append([]string{cur.name}, segs...)
	}
	path := ""
	for _, s := range segs {
		path += "/" + s
	}
	return path
}

// Children returns a snapshot of the entry's children in registration
// order. Callers may freely mutate the tree while iterating the
// returned slice.
func (e *Entry) Children() []*Entry {
	out := make([]*Entry, len(e.childNames))
	for i, n := range e.childNames {
		out[i] = e.childMap[n]
	}
	return out
}

func (e *Entry) childByName(name string) (*Entry, bool) {
	c, ok := e.childMap[name]
	return c, ok
}

func (e *Entry) addChild(c *Entry) {
	e.childNames = append(e.childNames, c.name)
	e.childMap[c.name] = c
}

func (e *Entry) removeChild(name string) {
	delete(e.childMap, name)
	for i, n := range e.childNames {
		if n == name {
			e.childNames = append(e.childNames[:i], e.childNames[i+1:]...)
			break
		}
	}
}

func (e *Entry) isEmptyNamespace() bool {
	return e.kind == Namespace && len(e.childNames) == 0
}
