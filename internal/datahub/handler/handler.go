// Package handler implements HandlerRegistry (C5): per-resource push-handler
// lists addressed by an opaque, generational handle so that a handler can be
// removed — including from inside its own callback, or a neighbour's — while
// a dispatch over the list is in progress.
package handler

import (
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// Callback is invoked when a sample passes through a resource this handler
// is registered on. The resourcePath is the absolute path of the resource
// that pushed, so a single callback can be shared across registrations.
type Callback func(resourcePath string, s sample.Sample)

// Ref is an opaque, forgeable-resistant reference to a registered handler.
// The zero Ref never refers to a live handler.
type Ref struct {
	index      uint32
	generation uint32
}

// Valid reports whether r was ever issued by a Table (does not imply it is
// still live — use Table.Remove's error to find out, or check IsRegistered).
func (r Ref) Valid() bool { return r.generation != 0 }

type record struct {
	generation uint32
	live       bool
	dataType   sample.Type
	callback   Callback
	listIdx    int // position of this ref within its List.entries, maintained by List
}

// Table is the process-wide (or, in tests, per-test) generational handler
// table. One Table is normally shared by every List it hands out via
// NewList, the way a single handler-reference table is process-global in
// the original design: a stale Ref from a removed or never-issued slot is
// rejected, never undefined behavior.
type Table struct {
	records []record
	free    []uint32
}

// NewTable creates an empty handler table.
func NewTable() *Table {
	return &Table{}
}

func (t *Table) alloc(dataType sample.Type, cb Callback) Ref {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
		t.records[idx].live = true
		t.records[idx].dataType = dataType
		t.records[idx].callback = cb
	} else {
		idx = uint32(len(t.records))
		t.records = append(t.records, record{generation: 1, live: true, dataType: dataType, callback: cb})
	}
	return Ref{index: idx, generation: t.records[idx].generation}
}

func (t *Table) free_(r Ref) error {
	if !t.isLive(r) {
		return dherrors.ErrBadParameter
	}
	rec := &t.records[r.index]
	rec.live = false
	rec.callback = nil
	rec.generation++
	if rec.generation == 0 {
		rec.generation = 1
	}
	t.free = append(t.free, r.index)
	return nil
}

func (t *Table) isLive(r Ref) bool {
	if !r.Valid() || int(r.index) >= len(t.records) {
		return false
	}
	rec := &t.records[r.index]
	return rec.live && rec.generation == r.generation
}

func (t *Table) get(r Ref) (record, bool) {
	if !t.isLive(r) {
		return record{}, false
	}
	return t.records[r.index], true
}

// List is the ordered, per-resource push-handler list (spec.md §4.5): a
// Resource owns one List. Handlers dispatch in registration order.
type List struct {
	table   *Table
	entries []Ref
}

// NewList creates an empty handler list backed by table.
func NewList(table *Table) *List {
	return &List{table: table}
}

// Add registers a new handler of dataType with callback cb, appended to the
// end of the list, and returns its opaque Ref.
func (l *List) Add(dataType sample.Type, cb Callback) Ref {
	ref := l.table.alloc(dataType, cb)
	l.table.records[ref.index].listIdx = len(l.entries)
	l.entries = append(l.entries, ref)
	return ref
}

// Remove removes the handler referenced by ref from this list and retires
// its slot in the table. Returns dherrors.ErrBadParameter (InvalidRef) if
// ref is stale or not a member of this list.
func (l *List) Remove(ref Ref) error {
	if _, ok := l.table.get(ref); !ok {
		return dherrors.ErrBadParameter
	}
	pos := -1
	for i, e := range l.entries {
		if e == ref {
			pos = i
			break
		}
	}
	if pos < 0 {
		return dherrors.ErrBadParameter
	}
	l.entries = append(l.entries[:pos], l.entries[pos+1:]...)
	for i := pos; i < len(l.entries); i++ {
		l.table.records[l.entries[i].index].listIdx = i
	}
	return l.table.free_(ref)
}

// Len reports the number of live handlers currently registered.
func (l *List) Len() int { return len(l.entries) }

// Dispatch delivers s to every live handler in registration order. Handlers
// whose declared type does not match s.Type() are coerced via
// ConvertToString/ConvertToJSON when the handler is a String/JSON handler;
// a coercion overflow silently skips that handler (best-effort delivery per
// subscriber, per spec.md §7). The entries slice is snapshotted before
// iterating so a handler may safely remove itself or a neighbour during its
// own callback.
func (l *List) Dispatch(resourcePath string, s sample.Sample) {
	snapshot := make([]Ref, len(l.entries))
	copy(snapshot, l.entries)

	for _, ref := range snapshot {
		rec, ok := l.table.get(ref)
		if !ok {
			continue // removed mid-dispatch by an earlier handler
		}
		l.dispatchOne(rec, resourcePath, s)
	}
}

func (l *List) dispatchOne(rec record, resourcePath string, s sample.Sample) {
	switch {
	case rec.dataType == s.Type():
		rec.callback(resourcePath, s)
	case rec.dataType == sample.String:
		str, err := sample.ConvertToString(s, 0)
		if err != nil {
			return
		}
		rec.callback(resourcePath, sample.New(sample.String, s.Timestamp(), str))
	case rec.dataType == sample.JSON:
		js, err := sample.ConvertToJSON(s, 0)
		if err != nil {
			return
		}
		rec.callback(resourcePath, sample.New(sample.JSON, s.Timestamp(), js))
	default:
		// type mismatch with no coercion path defined: skip this handler.
	}
}
