// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// Save persists n and every unsaved descendant to store bottom-up,
// and returns the key n was saved under (or its already-known key, if
// n was already saved). A Truncated tree with a Broken pointer whose
// hash the store's index cannot resolve fails with
// *UnknownHashAtTruncatedBoundaryError.
func (n *Inode) Save(store Store) (irminhash.Key, error) {
	return n.save(store)
}

func (n *Inode) save(store Store) (irminhash.Key, error) {
	if k, ok := n.vref.Key(); ok {
		return k, nil
	}

	if tv, ok := n.view.(*treeView); ok {
		for _, p := range tv.entries {
			if p == nil {
				continue
			}
			if _, err := p.ensureSaved(store); err != nil {
				return irminhash.Key{}, err
			}
		}
	}

	hash := n.vref.Hash()
	if key, ok := store.Index(hash); ok && store.Mem(key) {
		if err := n.vref.Promote(key); err != nil {
			return irminhash.Key{}, err
		}
		return key, nil
	}

	payload := n.view.toBin().ToCompress(n.ctx.dict, n.ctx.addr)
	raw, err := payload.Encode()
	if err != nil {
		return irminhash.Key{}, fmt.Errorf("inode: encoding payload for save: %w", err)
	}
	var key irminhash.Key
	if n.root {
		if rs, ok := store.(RootAwareStore); ok {
			key, err = rs.AppendRoot(hash, raw)
		} else {
			key, err = store.Append(hash, raw)
		}
	} else {
		key, err = store.Append(hash, raw)
	}
	if err != nil {
		return irminhash.Key{}, fmt.Errorf("inode: appending saved entry: %w", err)
	}
	if err := n.vref.Promote(key); err != nil {
		return irminhash.Key{}, err
	}
	return key, nil
}
