// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package irminfs

import (
	"fmt"

	"github.com/2lambda123/irmin/lib/inode"
	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/packstore"
)

// storeResolver decodes Partial child pointers on demand from a pack
// store, implementing inode.Resolver. It also decodes the mount's
// root inode, since resolving a root is the same operation with
// root=true.
type storeResolver struct {
	store packstore.Adapter
	cfg   inode.Config
}

func newStoreResolver(store packstore.Adapter, cfg inode.Config) *storeResolver {
	return &storeResolver{store: store, cfg: cfg}
}

// Find implements inode.Resolver.
func (r *storeResolver) Find(k irminhash.Key) (*inode.Inode, error) {
	return r.decode(k, false)
}

// findRoot decodes the inode stored at k as the root of its own tree.
// A Node value's target is always the root of the subtree it names,
// so every lookup that follows a Node binding calls this rather than
// Find.
func (r *storeResolver) findRoot(k irminhash.Key) (*inode.Inode, error) {
	return r.decode(k, true)
}

func (r *storeResolver) decode(k irminhash.Key, root bool) (*inode.Inode, error) {
	raw, ok, err := r.store.Find(k)
	if err != nil {
		return nil, fmt.Errorf("irminfs: reading %s: %w", k, err)
	}
	if !ok {
		return nil, fmt.Errorf("irminfs: no entry for key %s", k)
	}
	n, err := inode.Decode(raw, k, r.cfg, root, inode.LayoutPartial, r, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("irminfs: decoding %s: %w", k, err)
	}
	return n, nil
}
