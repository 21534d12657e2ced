// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"
	"log/slog"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/step"
)

// Metadata carries out-of-band attributes for a Contents value (for
// example file permission bits). The zero value is the designated
// default, and the Compress codec omits it whenever a binding carries
// exactly the default.
type Metadata struct {
	Mode uint32
}

// DefaultMetadata returns the designated default metadata value.
func DefaultMetadata() Metadata {
	return Metadata{}
}

// IsDefault reports whether m is the default metadata value.
func (m Metadata) IsDefault() bool {
	return m == DefaultMetadata()
}

// ValueKind distinguishes the two arms of the Value tagged union.
type ValueKind uint8

const (
	// ValueKindContents marks a leaf binding to a blob's key.
	ValueKindContents ValueKind = iota
	// ValueKindNode marks a binding to a child node's key.
	ValueKindNode
)

// Value is the tagged union Contents(K, Metadata) | Node(K) bound to a
// step in a Values leaf.
type Value struct {
	kind     ValueKind
	key      irminhash.Key
	metadata Metadata
}

// NewContentsValue returns a Contents value referencing k with the
// given metadata.
func NewContentsValue(k irminhash.Key, m Metadata) Value {
	return Value{kind: ValueKindContents, key: k, metadata: m}
}

// NewNodeValue returns a Node value referencing k.
func NewNodeValue(k irminhash.Key) Value {
	return Value{kind: ValueKindNode, key: k}
}

// Kind reports which arm of the union v is.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Key returns the key v points at, regardless of kind.
func (v Value) Key() irminhash.Key {
	return v.key
}

// Metadata returns v's metadata and true, or the zero Metadata and
// false if v is not a Contents value.
func (v Value) Metadata() (Metadata, bool) {
	if v.kind != ValueKindContents {
		return Metadata{}, false
	}
	return v.metadata, true
}

// Equal reports whether two values are the same binding: same kind,
// same key, and (for Contents) same metadata.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind || !v.key.Equal(other.key) {
		return false
	}
	if v.kind == ValueKindContents {
		return v.metadata == other.metadata
	}
	return true
}

func (v Value) String() string {
	if v.kind == ValueKindContents {
		return fmt.Sprintf("contents(%s, mode=%d)", v.key, v.metadata.Mode)
	}
	return fmt.Sprintf("node(%s)", v.key)
}

// Config holds the per-store tunables that determine an inode tree's
// on-disk shape and hashing behaviour. It must be identical across
// every process reading and writing the same store: changing Entries,
// StableHash, or the Ordering policy changes structural hashes and
// bucket placement.
type Config struct {
	// Entries is the branching factor ENTRIES: a power of two, the
	// maximum cardinality of a Values leaf and the width of a Tree
	// node's pointer array.
	Entries int
	// StableHash is the size threshold at or below which a root
	// inode hashes as its flat map rather than its internal
	// chunking. Must be >= Entries.
	StableHash int
	// Ordering assigns a bucket in [0, Entries) to a (step, depth)
	// pair.
	Ordering step.Ordering
	// Logger receives the save path's Warn diagnostic (an index hit
	// whose key the store does not hold). A nil Logger falls back to
	// slog.Default().
	Logger *slog.Logger
}

// logger returns c.Logger, or slog.Default() if none was set.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Validate checks that c is internally consistent.
func (c Config) Validate() error {
	if step.Log2(c.Entries) <= 0 {
		return fmt.Errorf("inode: Entries %d must be a power of two greater than 1", c.Entries)
	}
	if c.StableHash < c.Entries {
		return fmt.Errorf("inode: StableHash %d must be >= Entries %d", c.StableHash, c.Entries)
	}
	if c.Ordering == nil {
		return fmt.Errorf("inode: Ordering must not be nil")
	}
	return nil
}

// maxDepth returns the recursion bound for this config.
func (c Config) maxDepth() int {
	return step.MaxDepth(c.Entries)
}

// Layout is the ownership mode fixed once per tree at construction,
// determining how child pointers behave.
type Layout uint8

const (
	// LayoutTotal trees own every child inode outright, fully in
	// memory. There is never a Lazy pointer in a Total tree.
	LayoutTotal Layout = iota
	// LayoutPartial trees resolve child pointers on demand through a
	// Resolver, caching the result.
	LayoutPartial
	// LayoutTruncated trees were decoded without a Resolver: some
	// children may be permanently unreachable (Broken).
	LayoutTruncated
)

func (l Layout) String() string {
	switch l {
	case LayoutTotal:
		return "total"
	case LayoutPartial:
		return "partial"
	case LayoutTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// context is the shared, immutable state every inode and child pointer
// in one tree carries a pointer to: the store configuration, the
// resolver used to materialise Partial child pointers, the fixed
// ownership layout of the whole tree, and the Compress codec's
// dictionary and address resolver. Sharing one pointer avoids
// threading these values through every recursive call.
type context struct {
	cfg      Config
	resolver Resolver
	layout   Layout
	dict     Dict
	addr     AddressResolver
}

// WriteOnNonRootError is raised when Add or Remove is called on an
// inode whose root flag is false. It signals a programming error in
// the caller: only a root inode may be mutated directly.
type WriteOnNonRootError struct{}

func (e *WriteOnNonRootError) Error() string {
	return "inode: add/remove called on a non-root inode"
}

// UnknownHashAtTruncatedBoundaryError is raised when Save encounters a
// Broken child pointer whose hash the store's index cannot resolve to
// a key. This is fatal: the subtree behind that pointer is
// permanently lost.
type UnknownHashAtTruncatedBoundaryError struct {
	Hash irminhash.Hash
}

func (e *UnknownHashAtTruncatedBoundaryError) Error() string {
	return fmt.Sprintf("inode: unknown hash %s at truncated boundary", e.Hash)
}
