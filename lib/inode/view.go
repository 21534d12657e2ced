// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"sort"

	"github.com/2lambda123/irmin/lib/step"
)

// view is the shape held by an *Inode: either a Values leaf or a Tree
// node. Every mutation replaces the view wholesale (copy-on-write);
// nothing here is mutated in place except through childPtr's own
// interior mutability.
type view interface {
	length() int
	toBin() Bin
}

// valuesView is a Values leaf: bindings sorted by step, cardinality at
// most Config.Entries (0 permitted only for the empty root).
type valuesView struct {
	bindings []BinBinding
}

func (v *valuesView) length() int {
	return len(v.bindings)
}

func (v *valuesView) toBin() Bin {
	return Bin{IsTree: false, Bindings: v.bindings}
}

func (v *valuesView) find(s step.Step) (Value, bool) {
	i := sort.Search(len(v.bindings), func(i int) bool { return v.bindings[i].Step >= s })
	if i < len(v.bindings) && v.bindings[i].Step == s {
		return v.bindings[i].Value, true
	}
	return Value{}, false
}

// inserted returns a new, sorted bindings slice with s bound to v, and
// whether this added a new step (false if it replaced an existing
// binding).
func (v *valuesView) inserted(s step.Step, val Value) ([]BinBinding, bool) {
	i := sort.Search(len(v.bindings), func(i int) bool { return v.bindings[i].Step >= s })
	if i < len(v.bindings) && v.bindings[i].Step == s {
		out := make([]BinBinding, len(v.bindings))
		copy(out, v.bindings)
		out[i] = BinBinding{Step: s, Value: val}
		return out, false
	}
	out := make([]BinBinding, 0, len(v.bindings)+1)
	out = append(out, v.bindings[:i]...)
	out = append(out, BinBinding{Step: s, Value: val})
	out = append(out, v.bindings[i:]...)
	return out, true
}

// removed returns a new bindings slice with s dropped, and whether it
// was present.
func (v *valuesView) removed(s step.Step) ([]BinBinding, bool) {
	i := sort.Search(len(v.bindings), func(i int) bool { return v.bindings[i].Step >= s })
	if i >= len(v.bindings) || v.bindings[i].Step != s {
		return v.bindings, false
	}
	out := make([]BinBinding, 0, len(v.bindings)-1)
	out = append(out, v.bindings[:i]...)
	out = append(out, v.bindings[i+1:]...)
	return out, true
}

// treeView is a Tree node: a fixed-width array of child slots plus the
// running total length across every reachable leaf.
type treeView struct {
	depth   int
	count   int
	entries []*childPtr // len == Config.Entries; nil entries are empty slots
}

func (t *treeView) length() int {
	return t.count
}

func (t *treeView) toBin() Bin {
	var ptrs []BinPtr
	for i, p := range t.entries {
		if p == nil {
			continue
		}
		if k, ok := p.knownKey(); ok {
			ptrs = append(ptrs, BinPtr{Index: i, Hash: k.ToHash(), Key: k, HasKey: true})
		} else {
			ptrs = append(ptrs, BinPtr{Index: i, Hash: p.hash()})
		}
	}
	return Bin{IsTree: true, Depth: t.depth, Length: t.count, Ptrs: ptrs}
}

func (t *treeView) cloneEntries() []*childPtr {
	out := make([]*childPtr, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *treeView) nbChildren() int {
	n := 0
	for _, p := range t.entries {
		if p != nil {
			n++
		}
	}
	return n
}
