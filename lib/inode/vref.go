// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"
	"sync"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// vref is an inode's own reference to itself: either a known key (the
// inode has been saved, or was decoded from a key), or a hash computed
// lazily on first use and memoized thereafter. Promotion from hash to
// key is monotone: once a key is set it never changes, and a later
// promotion attempt with an inconsistent hash is rejected.
type vref struct {
	mu      sync.Mutex
	key     *irminhash.Key
	hash    *irminhash.Hash
	compute func() irminhash.Hash
}

// newVRefFromKey returns a vref already carrying a known key, as when
// an inode is decoded from a persisted entry.
func newVRefFromKey(k irminhash.Key) *vref {
	return &vref{key: &k}
}

// newVRefLazy returns a vref whose hash is computed on first access by
// calling compute, then memoized.
func newVRefLazy(compute func() irminhash.Hash) *vref {
	return &vref{compute: compute}
}

// Hash returns the hash this vref denotes, computing and memoizing it
// on first call if necessary.
func (v *vref) Hash() irminhash.Hash {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.key != nil {
		return v.key.ToHash()
	}
	if v.hash == nil {
		h := v.compute()
		v.hash = &h
	}
	return *v.hash
}

// Key returns the known key and true, or the zero key and false if
// this vref has not yet been promoted.
func (v *vref) Key() (irminhash.Key, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.key != nil {
		return *v.key, true
	}
	return irminhash.Key{}, false
}

// Promote sets the known key, first computing the hash (if not
// already memoized) to check consistency. Promoting twice with equal
// hashes is a no-op; promoting with an inconsistent hash is an error.
func (v *vref) Promote(k irminhash.Key) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.key != nil {
		if !v.key.Equal(k) {
			return fmt.Errorf("inode: vref promotion to key %s conflicts with existing key %s", k, *v.key)
		}
		return nil
	}
	if v.hash != nil && *v.hash != k.ToHash() {
		return fmt.Errorf("inode: vref promotion to key %s conflicts with computed hash %s", k, *v.hash)
	}
	v.key = &k
	return nil
}
