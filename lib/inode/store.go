// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import "github.com/2lambda123/irmin/lib/irminhash"

// Store is the narrow slice of the pack store adapter that the save
// protocol needs: membership, lookup by hash, and append.
// lib/packstore's concrete adapter implements this alongside the
// wider Batch/Close surface that callers outside this package use.
type Store interface {
	// Mem reports whether k's entry is already present.
	Mem(k irminhash.Key) bool
	// Index resolves a hash to a key, if an entry for that hash has
	// previously been appended.
	Index(h irminhash.Hash) (irminhash.Key, bool)
	// Append persists raw under hash and returns the key it was
	// stored at.
	Append(h irminhash.Hash, raw []byte) (irminhash.Key, error)
}

// RootAwareStore is an optional capability a Store may implement when
// it needs to frame a tree's root entry differently from every other
// entry (lib/packstore's adapter tags the root with a distinct pack
// kind byte). Save calls AppendRoot instead of Append at most once per
// save: for the node n.root is true for, and only when that node has
// no known key and no entry already present in the store. Every other node —
// including every Partial/Truncated descendant — is never the literal
// root of the tree being saved and always goes through Append, so
// implementing this interface never changes the framing of any entry
// but the root's.
type RootAwareStore interface {
	AppendRoot(h irminhash.Hash, raw []byte) (irminhash.Key, error)
}

// Resolver materialises a Partial child pointer's target from its
// key. It is supplied by whatever decoded the root of a Partial tree
// (typically a wrapper over the pack store adapter's Find plus this
// package's Decode; Store itself has no Find).
type Resolver interface {
	// Find returns the decoded child inode for k, or an error if the
	// key cannot be resolved.
	Find(k irminhash.Key) (*Inode, error)
}

// Dict is the external string<->id bidirectional map the Compress
// codec uses for the Name Indirect form. IDs are non-negative; the
// codec degrades to Direct names whenever Dict is nil or a lookup
// misses.
type Dict interface {
	// FindIndex returns the dictionary id for s, if present.
	FindIndex(s string) (int, bool)
	// FindString returns the string stored at id, if present.
	FindString(id int) (string, bool)
}

// AddressResolver is the external collaborator the Compress codec
// uses for the Address Indirect form. OffsetOf lets the encoder
// replace a hash with a smaller in-pack offset; HashAtOffset lets the
// decoder recover the hash on the way back. The codec degrades to
// Direct addresses whenever AddressResolver is nil or a lookup
// misses.
type AddressResolver interface {
	// OffsetOf returns k's absolute offset in the pack file, if k
	// carries one.
	OffsetOf(k irminhash.Key) (int64, bool)
	// HashAtOffset returns the hash of the entry stored at offset, if
	// known.
	HashAtOffset(offset int64) (irminhash.Hash, bool)
}
