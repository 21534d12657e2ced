// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
)

// Adapter is the pack store adapter: mem, find, index, append, batch,
// close. It is a superset of lib/inode's own
// Store and RootAwareStore interfaces (Mem/Index/Append/AppendRoot),
// so any Adapter can be passed directly to an *inode.Inode's Save.
type Adapter interface {
	// Mem reports whether k's entry is already present.
	Mem(k irminhash.Key) bool

	// Find returns the raw, decompressed bytes stored under k, and
	// whether an entry was found at all.
	Find(k irminhash.Key) ([]byte, bool, error)

	// Index resolves a hash to a key, if an entry for that hash has
	// previously been appended.
	Index(h irminhash.Hash) (irminhash.Key, bool)

	// Append persists raw under hash as a non-root inode entry and
	// returns the key it was stored at. Satisfies inode.Store.
	Append(h irminhash.Hash, raw []byte) (irminhash.Key, error)

	// AppendRoot persists raw under hash as a root inode entry.
	// Satisfies inode.RootAwareStore.
	AppendRoot(h irminhash.Hash, raw []byte) (irminhash.Key, error)

	// AppendKind persists raw under hash, tagged explicitly with
	// kind. Append and AppendRoot are convenience wrappers around this
	// for the two inode kinds lib/inode ever produces; callers outside
	// lib/inode (tooling, contents/commit producers) use this directly.
	AppendKind(kind pack.Kind, h irminhash.Hash, raw []byte) (irminhash.Key, error)

	// Batch runs fn as one write-batching unit. For the file-backed
	// adapter this defers the control-file's durability update until
	// fn returns, trading per-append crash safety inside the batch for
	// fewer control-file rewrites; Mem treats it as a plain call.
	Batch(fn func() error) error

	// Close releases any held file handles. Further calls other than
	// Close are undefined afterward.
	Close() error
}
