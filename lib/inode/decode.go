// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// Decode materialises the inode persisted as raw, which was retrieved
// under key. layout fixes the ownership mode of the whole tree rooted
// here: Partial pointers stay unresolved until Find or Seq touches
// them; Truncated pointers can never resolve; Total eagerly resolves
// every child through resolver (which must be non-nil in that case).
func Decode(raw []byte, key irminhash.Key, cfg Config, root bool, layout Layout, resolver Resolver, dict Dict, addr AddressResolver) (*Inode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	payload, err := DecodeCompressPayload(raw)
	if err != nil {
		return nil, err
	}
	bin, err := FromCompress(payload, dict, addr)
	if err != nil {
		return nil, err
	}
	ctx := &context{cfg: cfg, layout: layout, resolver: resolver, dict: dict, addr: addr}
	return fromBin(ctx, root, key, bin)
}

func fromBin(ctx *context, root bool, key irminhash.Key, bin Bin) (*Inode, error) {
	var v view
	if bin.IsTree {
		entries := make([]*childPtr, ctx.cfg.Entries)
		for _, p := range bin.Ptrs {
			if p.Index < 0 || p.Index >= ctx.cfg.Entries {
				return nil, fmt.Errorf("inode: pointer index %d out of range [0,%d)", p.Index, ctx.cfg.Entries)
			}
			if entries[p.Index] != nil {
				return nil, fmt.Errorf("inode: duplicated pointer at slot %d", p.Index)
			}
			switch ctx.layout {
			case LayoutPartial:
				entries[p.Index] = newPartialLazyChild(ctx, p.Key)
			case LayoutTruncated:
				entries[p.Index] = newTruncatedBrokenChild(ctx, p.Hash)
			case LayoutTotal:
				if ctx.resolver == nil {
					return nil, fmt.Errorf("inode: decoding a Total-layout tree requires a resolver to eagerly materialise children")
				}
				child, err := ctx.resolver.Find(p.Key)
				if err != nil {
					return nil, fmt.Errorf("inode: eagerly resolving total child %s: %w", p.Key, err)
				}
				entries[p.Index] = newTotalChild(ctx, child)
			default:
				return nil, fmt.Errorf("inode: unknown layout %d", ctx.layout)
			}
		}
		v = &treeView{depth: bin.Depth, count: bin.Length, entries: entries}
	} else {
		v = &valuesView{bindings: bin.Bindings}
	}
	n := &Inode{ctx: ctx, root: root, view: v}
	n.vref = newVRefFromKey(key)
	return n, nil
}
