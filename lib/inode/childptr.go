// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"
	"sync"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// childMode is the runtime tag childPtr dispatches on. It erases the
// three ownership layouts (Total/Partial/Truncated) to one type, with
// dispatch tables rather than distinct Go types — the whole tree's
// layout is fixed at the root (context.layout), so within one tree
// every non-nil childPtr uses exactly the modes that layout allows.
type childMode uint8

const (
	modeTotal childMode = iota
	modePartialLazy
	modePartialLazyLoaded
	modePartialDirty
	modeTruncatedBroken
	modeTruncatedIntact
)

// childPtr is one slot of a Tree node's pointer array. mu guards the
// single interior-mutable field this design allows: the promotion of
// a Partial pointer from Lazy to Lazy_loaded, and the key learned once
// a live child has been saved.
type childPtr struct {
	ctx *context

	mu     sync.Mutex
	mode   childMode
	child  *Inode
	key    irminhash.Key
	hasKey bool
}

func newTotalChild(ctx *context, child *Inode) *childPtr {
	return &childPtr{ctx: ctx, mode: modeTotal, child: child}
}

func newPartialLazyChild(ctx *context, k irminhash.Key) *childPtr {
	return &childPtr{ctx: ctx, mode: modePartialLazy, key: k, hasKey: true}
}

func newPartialDirtyChild(ctx *context, child *Inode) *childPtr {
	return &childPtr{ctx: ctx, mode: modePartialDirty, child: child}
}

func newTruncatedBrokenChild(ctx *context, h irminhash.Hash) *childPtr {
	return &childPtr{ctx: ctx, mode: modeTruncatedBroken, key: irminhash.NewKey(h), hasKey: true}
}

func newTruncatedIntactChild(ctx *context, child *Inode) *childPtr {
	return &childPtr{ctx: ctx, mode: modeTruncatedIntact, child: child}
}

// clone returns a shallow copy suitable for a copy-on-write parent:
// the pointer's identity is duplicated, but any cached child inode is
// shared (child inodes are themselves immutable once built, except
// through their own vref/cache promotion, which is safe to share).
func (p *childPtr) clone() *childPtr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &childPtr{
		ctx:    p.ctx,
		mode:   p.mode,
		child:  p.child,
		key:    p.key,
		hasKey: p.hasKey,
	}
}

// resolve returns the child inode this pointer denotes, triggering a
// Resolver lookup (and caching the result) the first time a Lazy
// pointer is followed. Concurrent callers resolving the same pointer
// block on the mutex; whichever finishes first's result is cached and
// observed by the rest, so concurrent promoters never produce two
// different observable children.
func (p *childPtr) resolve() (*Inode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.mode {
	case modeTotal, modePartialLazyLoaded, modePartialDirty, modeTruncatedIntact:
		return p.child, nil
	case modePartialLazy:
		if p.child != nil {
			return p.child, nil
		}
		if p.ctx.resolver == nil {
			return nil, fmt.Errorf("inode: partial child at key %s has no resolver", p.key)
		}
		child, err := p.ctx.resolver.Find(p.key)
		if err != nil {
			return nil, fmt.Errorf("inode: resolving partial child %s: %w", p.key, err)
		}
		p.child = child
		p.mode = modePartialLazyLoaded
		return child, nil
	case modeTruncatedBroken:
		return nil, fmt.Errorf("inode: truncated child at hash %s is broken, no resolver was ever available", p.key.ToHash())
	default:
		return nil, fmt.Errorf("inode: child pointer has unknown mode %d", p.mode)
	}
}

// resolveNoCache behaves like resolve but never promotes a Lazy
// pointer to Lazy_loaded, for seq(..., cache=false).
func (p *childPtr) resolveNoCache() (*Inode, error) {
	p.mu.Lock()
	mode, key, cached := p.mode, p.key, p.child
	p.mu.Unlock()

	switch mode {
	case modeTotal, modePartialLazyLoaded, modePartialDirty, modeTruncatedIntact:
		return cached, nil
	case modePartialLazy:
		if cached != nil {
			return cached, nil
		}
		if p.ctx.resolver == nil {
			return nil, fmt.Errorf("inode: partial child at key %s has no resolver", key)
		}
		child, err := p.ctx.resolver.Find(key)
		if err != nil {
			return nil, fmt.Errorf("inode: resolving partial child %s: %w", key, err)
		}
		return child, nil
	case modeTruncatedBroken:
		return nil, fmt.Errorf("inode: truncated child at hash %s is broken, no resolver was ever available", key.ToHash())
	default:
		return nil, fmt.Errorf("inode: child pointer has unknown mode %d", mode)
	}
}

// cachedChild returns the child inode currently cached in this
// pointer, without triggering a resolve.
func (p *childPtr) cachedChild() *Inode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.child
}

// clearCache downgrades a Lazy_loaded pointer back to Lazy, dropping
// the cached child. Dirty, Total, and Truncated pointers are left
// untouched.
func (p *childPtr) clearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == modePartialLazyLoaded {
		p.child = nil
		p.mode = modePartialLazy
	}
}

// knownKey returns the key this pointer already carries, if any,
// without triggering a resolve or a save.
func (p *childPtr) knownKey() (irminhash.Key, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasKey {
		return p.key, true
	}
	if p.child != nil {
		if k, ok := p.child.vref.Key(); ok {
			return k, true
		}
	}
	return irminhash.Key{}, false
}

// hash returns the hash this pointer denotes, used to build the
// structural Bin form for hashing before every child necessarily has
// a key.
func (p *childPtr) hash() irminhash.Hash {
	p.mu.Lock()
	mode, key, hasKey, child := p.mode, p.key, p.hasKey, p.child
	p.mu.Unlock()

	if hasKey {
		return key.ToHash()
	}
	if mode == modeTruncatedBroken {
		return key.ToHash()
	}
	return child.Hash()
}

// ensureSaved makes sure this pointer's target has been persisted to
// store and returns the key it was saved under, dispatching on mode
// to decide whether there is anything left to save.
func (p *childPtr) ensureSaved(store Store) (irminhash.Key, error) {
	p.mu.Lock()
	mode := p.mode
	p.mu.Unlock()

	switch mode {
	case modePartialLazy:
		// Already keyed: nothing to do.
		k, _ := p.knownKey()
		return k, nil

	case modeTruncatedBroken:
		p.mu.Lock()
		hash := p.key.ToHash()
		p.mu.Unlock()
		k, ok := store.Index(hash)
		if !ok {
			return irminhash.Key{}, &UnknownHashAtTruncatedBoundaryError{Hash: hash}
		}
		p.mu.Lock()
		p.key = k
		p.hasKey = true
		p.mu.Unlock()
		return k, nil

	case modePartialLazyLoaded:
		p.mu.Lock()
		child := p.child
		p.mu.Unlock()

		if k, ok := child.vref.Key(); ok {
			p.mu.Lock()
			p.key = k
			p.hasKey = true
			p.mu.Unlock()
			return k, nil
		}

		hash := child.vref.Hash()
		if k, ok := store.Index(hash); ok {
			if store.Mem(k) {
				if err := child.vref.Promote(k); err != nil {
					return irminhash.Key{}, err
				}
				p.mu.Lock()
				p.key = k
				p.hasKey = true
				p.mu.Unlock()
				return k, nil
			}
			p.ctx.cfg.logger().Warn("inode: index resolved a hash to a key not present in the store, re-appending",
				"hash", hash.String())
		}

		k, err := child.save(store)
		if err != nil {
			return irminhash.Key{}, err
		}
		p.mu.Lock()
		p.key = k
		p.hasKey = true
		p.mu.Unlock()
		return k, nil

	case modeTotal, modePartialDirty, modeTruncatedIntact:
		p.mu.Lock()
		child := p.child
		p.mu.Unlock()

		if k, ok := child.vref.Key(); ok {
			p.mu.Lock()
			p.key = k
			p.hasKey = true
			p.mu.Unlock()
			return k, nil
		}
		k, err := child.save(store)
		if err != nil {
			return irminhash.Key{}, err
		}
		p.mu.Lock()
		p.key = k
		p.hasKey = true
		p.mu.Unlock()
		return k, nil

	default:
		return irminhash.Key{}, fmt.Errorf("inode: child pointer has unknown mode %d", mode)
	}
}
