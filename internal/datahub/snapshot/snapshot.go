// Package snapshot produces a synchronous, in-memory summary of a
// resource tree — the debugging/introspection counterpart of
// spec.md §1's excluded "on-disk snapshot/serialization format for
// streaming the tree to a cloud uplink". That uplink protocol (a
// stateful CBOR encoder over a non-blocking FD, see
// original_source/components/octaveFormatter) is explicitly out of
// scope; this package only answers "what does the tree look like right
// now", grounded on the same source's idea of walking the tree
// node-by-node and reporting kind/value/default per node.
package snapshot

import (
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/datahub/tree"
)

// Node is one entry's worth of summary, with its children nested below
// it in registration order.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     string  `json:"kind"`
	DataType string  `json:"dataType,omitempty"`
	Units    string  `json:"units,omitempty"`
	Current  *Value  `json:"current,omitempty"`
	Default  *Value  `json:"default,omitempty"`
	Source   string  `json:"source,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Value is a sample rendered for human/JSON consumption.
type Value struct {
	Timestamp float64     `json:"ts"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
}

// Dump walks the whole tree starting at root and returns its summary.
func Dump(t *tree.Tree) *Node {
	return dumpEntry(t.Root())
}

func dumpEntry(e *tree.Entry) *Node {
	n := &Node{
		Name: e.Name(),
		Path: e.Path(),
		Kind: e.Kind().String(),
	}

	if res := e.Resource(); res != nil {
		n.DataType = res.DataType().String()
		n.Units = res.Units()
		if cur, ok := res.CurrentValue(); ok {
			n.Current = valueOf(cur)
		}
		if def, _, ok := res.Default(); ok {
			n.Default = valueOf(def)
		}
		if src := res.Source(); src != nil {
			n.Source = src.Path()
		}
	}

	for _, c := range e.Children() {
		n.Children = append(n.Children, dumpEntry(c))
	}
	return n
}

func valueOf(s sample.Sample) *Value {
	v := &Value{Timestamp: s.Timestamp(), Type: s.Type().String()}
	switch s.Type() {
	case sample.Boolean:
		v.Data = s.AsBoolean()
	case sample.Numeric:
		v.Data = s.AsNumeric()
	case sample.String:
		v.Data = s.AsString()
	case sample.JSON:
		v.Data = s.AsJSON()
	default:
		v.Data = nil
	}
	return v
}
