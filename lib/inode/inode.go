// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"
	"sort"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/step"
)

// Inode is one node of the tree: a Values leaf or a Tree node, plus
// its own hash-or-key reference and root flag. Values are logically
// immutable; Add and Remove return a new Inode sharing every untouched
// subtree with the receiver.
type Inode struct {
	ctx  *context
	root bool
	vref *vref
	view view
}

func newInode(ctx *context, root bool, v view) *Inode {
	n := &Inode{ctx: ctx, root: root, view: v}
	n.vref = newVRefLazy(n.computeHash)
	return n
}

// NewEmpty returns a fresh, empty root inode: a Values leaf with no
// bindings. Empty inodes always hash as stable.
func NewEmpty(cfg Config, layout Layout, resolver Resolver, dict Dict, addr AddressResolver) (*Inode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := &context{cfg: cfg, layout: layout, resolver: resolver, dict: dict, addr: addr}
	return newInode(ctx, true, &valuesView{}), nil
}

// Root reports whether n is a root inode.
func (n *Inode) Root() bool {
	return n.root
}

// Layout reports the ownership mode fixed for n's whole tree.
func (n *Inode) Layout() Layout {
	return n.ctx.layout
}

// Depth returns a Tree node's own depth field. A Values leaf does not
// record its depth, so Depth returns 0 for every Values leaf.
func (n *Inode) Depth() int {
	if tv, ok := n.view.(*treeView); ok {
		return tv.depth
	}
	return 0
}

// Length returns the number of leaf bindings transitively reachable
// from n, in constant time.
func (n *Inode) Length() int {
	return n.view.length()
}

// NbChildren returns the number of non-empty slots (Tree) or the map
// size (Values).
func (n *Inode) NbChildren() int {
	switch v := n.view.(type) {
	case *valuesView:
		return len(v.bindings)
	case *treeView:
		return v.nbChildren()
	default:
		return 0
	}
}

// shouldBeStable reports whether n should hash as a flat map rather
// than by its internal chunking: true when it is empty, or when it is
// the root and small enough to fit under the stable-hash threshold.
func (n *Inode) shouldBeStable() bool {
	length := n.Length()
	return length == 0 || (n.root && length <= n.ctx.cfg.StableHash)
}

func (n *Inode) computeHash() irminhash.Hash {
	if n.shouldBeStable() {
		flat, err := n.collectAll()
		if err != nil {
			// Only a Partial tree's resolver can fail here, and a
			// stable root's bindings must already be reachable for
			// hashing to make sense; a failure indicates a broken
			// backing store, which we cannot recover from inside a
			// pure hash computation.
			panic("inode: computing stable hash: " + err.Error())
		}
		sort.Slice(flat, func(i, j int) bool { return flat[i].Step < flat[j].Step })
		return StableHash(flat)
	}
	return n.view.toBin().StructuralHash()
}

// Hash returns n's hash, computing and memoizing it on first call.
func (n *Inode) Hash() irminhash.Hash {
	return n.vref.Hash()
}

// Key returns n's known key and true, or the zero key and false if n
// has not yet been saved.
func (n *Inode) Key() (irminhash.Key, bool) {
	return n.vref.Key()
}

// Find descends from n looking for step s, returning the bound value
// and true, or the zero value and false if absent.
func (n *Inode) Find(s step.Step) (Value, bool, error) {
	switch v := n.view.(type) {
	case *valuesView:
		val, ok := v.find(s)
		return val, ok, nil
	case *treeView:
		bucket, err := n.ctx.cfg.Ordering.Bucket(s, v.depth)
		if err != nil {
			return Value{}, false, err
		}
		p := v.entries[bucket]
		if p == nil {
			return Value{}, false, nil
		}
		child, err := p.resolve()
		if err != nil {
			return Value{}, false, err
		}
		return child.Find(s)
	default:
		return Value{}, false, fmt.Errorf("inode: unknown view type %T", n.view)
	}
}

// Add returns a new root inode with s bound to v. If s is already
// bound to an equal value, Add returns n unchanged. n must be a root
// inode.
func (n *Inode) Add(s step.Step, v Value) (*Inode, error) {
	if !n.root {
		return nil, &WriteOnNonRootError{}
	}
	if existing, ok, err := n.Find(s); err != nil {
		return nil, err
	} else if ok && existing.Equal(v) {
		return n, nil
	}
	result, _, err := n.insert(0, s, v)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// insert performs one Add step at n, which sits at the given depth
// within the tree, returning the replacement inode and whether a new
// binding (rather than a replacement) was added.
func (n *Inode) insert(depth int, s step.Step, v Value) (*Inode, bool, error) {
	switch view := n.view.(type) {
	case *valuesView:
		bindings, isNew := view.inserted(s, v)
		if len(bindings) > n.ctx.cfg.Entries {
			split, err := n.split(depth, bindings)
			if err != nil {
				return nil, false, err
			}
			return split, isNew, nil
		}
		return newInode(n.ctx, n.root, &valuesView{bindings: bindings}), isNew, nil

	case *treeView:
		if depth+1 > n.ctx.cfg.maxDepth() {
			return nil, false, &step.MaxDepthError{Depth: depth + 1}
		}
		bucket, err := n.ctx.cfg.Ordering.Bucket(s, depth)
		if err != nil {
			return nil, false, err
		}
		entries := view.cloneEntries()
		var child *Inode
		if entries[bucket] == nil {
			child = newInode(n.ctx, false, &valuesView{})
		} else {
			child, err = entries[bucket].resolve()
			if err != nil {
				return nil, false, err
			}
		}
		newChild, isNew, err := child.insert(depth+1, s, v)
		if err != nil {
			return nil, false, err
		}
		entries[bucket] = wrapChild(n.ctx, newChild)
		newLength := view.count
		if isNew {
			newLength++
		}
		return newInode(n.ctx, n.root, &treeView{depth: depth, count: newLength, entries: entries}), isNew, nil

	default:
		return nil, false, fmt.Errorf("inode: unknown view type %T", n.view)
	}
}

// split replaces an overflowing Values leaf with an empty Tree node at
// the same depth, then re-inserts every binding through the normal
// insert path so each one naturally lands in its bucket.
func (n *Inode) split(depth int, bindings []BinBinding) (*Inode, error) {
	tree := newInode(n.ctx, n.root, &treeView{depth: depth, entries: make([]*childPtr, n.ctx.cfg.Entries)})
	for _, b := range bindings {
		var err error
		tree, _, err = tree.insert(depth, b.Step, b.Value)
		if err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// wrapChild wraps a freshly built or mutated child inode into the
// childPtr ownership mode this tree's layout uses.
func wrapChild(ctx *context, child *Inode) *childPtr {
	switch ctx.layout {
	case LayoutPartial:
		return newPartialDirtyChild(ctx, child)
	case LayoutTruncated:
		return newTruncatedIntactChild(ctx, child)
	default:
		return newTotalChild(ctx, child)
	}
}

// Remove returns a new root inode with s unbound. If s is absent,
// Remove returns n unchanged. n must be a root inode.
func (n *Inode) Remove(s step.Step) (*Inode, error) {
	if !n.root {
		return nil, &WriteOnNonRootError{}
	}
	if _, ok, err := n.Find(s); err != nil {
		return nil, err
	} else if !ok {
		return n, nil
	}
	return n.remove(0, s)
}

func (n *Inode) remove(depth int, s step.Step) (*Inode, error) {
	switch view := n.view.(type) {
	case *valuesView:
		bindings, found := view.removed(s)
		if !found {
			return n, nil
		}
		return newInode(n.ctx, n.root, &valuesView{bindings: bindings}), nil

	case *treeView:
		bucket, err := n.ctx.cfg.Ordering.Bucket(s, depth)
		if err != nil {
			return nil, err
		}
		p := view.entries[bucket]
		if p == nil {
			return n, nil
		}
		child, err := p.resolve()
		if err != nil {
			return nil, err
		}
		newChild, err := child.remove(depth+1, s)
		if err != nil {
			return nil, err
		}
		entries := view.cloneEntries()
		newLength := view.count - 1
		if newChild.Length() == 0 {
			entries[bucket] = nil
		} else {
			entries[bucket] = wrapChild(n.ctx, newChild)
		}
		if newLength <= n.ctx.cfg.Entries {
			flat, err := collectEntries(entries)
			if err != nil {
				return nil, err
			}
			sort.Slice(flat, func(i, j int) bool { return flat[i].Step < flat[j].Step })
			return newInode(n.ctx, n.root, &valuesView{bindings: flat}), nil
		}
		return newInode(n.ctx, n.root, &treeView{depth: depth, count: newLength, entries: entries}), nil

	default:
		return nil, fmt.Errorf("inode: unknown view type %T", n.view)
	}
}

// collectAll gathers every binding reachable from n, in no particular
// order (callers that need a canonical order must sort the result).
func (n *Inode) collectAll() ([]BinBinding, error) {
	switch v := n.view.(type) {
	case *valuesView:
		out := make([]BinBinding, len(v.bindings))
		copy(out, v.bindings)
		return out, nil
	case *treeView:
		return collectEntries(v.entries)
	default:
		return nil, fmt.Errorf("inode: unknown view type %T", n.view)
	}
}

func collectEntries(entries []*childPtr) ([]BinBinding, error) {
	var out []BinBinding
	for _, p := range entries {
		if p == nil {
			continue
		}
		child, err := p.resolve()
		if err != nil {
			return nil, err
		}
		bindings, err := child.collectAll()
		if err != nil {
			return nil, err
		}
		out = append(out, bindings...)
	}
	return out, nil
}

// Clear recursively downgrades every Lazy_loaded child to Lazy,
// dropping its cached inode. Dirty and Total children are left
// intact; Truncated pointers are unaffected.
func (n *Inode) Clear() {
	tv, ok := n.view.(*treeView)
	if !ok {
		return
	}
	for _, p := range tv.entries {
		if p == nil {
			continue
		}
		cached := p.cachedChild()
		p.clearCache()
		if cached != nil {
			cached.Clear()
		}
	}
}

// Seq returns an ordered slice of at most length bindings, skipping
// the first offset bindings in slot order, without loading whole
// subtrees the offset lets it skip entirely. When cache is false,
// pointers resolved along the way are not promoted to Lazy_loaded.
func (n *Inode) Seq(offset, length int, cache bool) ([]BinBinding, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("inode: seq requires non-negative offset and length, got offset=%d length=%d", offset, length)
	}
	if length == 0 {
		return []BinBinding{}, nil
	}
	out, _, err := n.seq(offset, length, cache)
	return out, err
}

func (n *Inode) seq(offset, length int, cache bool) ([]BinBinding, int, error) {
	if length <= 0 {
		return nil, length, nil
	}
	switch view := n.view.(type) {
	case *valuesView:
		var out []BinBinding
		for i := offset; i < len(view.bindings) && length > 0; i++ {
			out = append(out, view.bindings[i])
			length--
		}
		return out, length, nil

	case *treeView:
		var out []BinBinding
		remainingOffset := offset
		for _, p := range view.entries {
			if length <= 0 {
				break
			}
			if p == nil {
				continue
			}
			var child *Inode
			var err error
			if cache {
				child, err = p.resolve()
			} else {
				child, err = p.resolveNoCache()
			}
			if err != nil {
				return nil, length, err
			}
			childLen := child.Length()
			if remainingOffset >= childLen {
				remainingOffset -= childLen
				continue
			}
			bindings, leftover, err := child.seq(remainingOffset, length, cache)
			if err != nil {
				return nil, length, err
			}
			out = append(out, bindings...)
			length = leftover
			remainingOffset = 0
		}
		return out, length, nil

	default:
		return nil, length, fmt.Errorf("inode: unknown view type %T", n.view)
	}
}
