// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package irminhash

import "fmt"

// Key is either a plain [Hash] or a hash plus an (offset, length)
// hint pointing into the pack file. The hint lets a reader skip an
// index lookup — it is purely an optimization and is never required
// for correctness. Keys never demote to hashes: once a Key carries an
// offset/length hint, [Key.ToHash] only ever discards the hint, it
// never invents one.
type Key struct {
	hash    Hash
	hasHint bool
	offset  int64
	length  int64
}

// NewKey returns a plain hash-only key.
func NewKey(h Hash) Key {
	return Key{hash: h}
}

// NewKeyWithHint returns a key carrying an (offset, length) hint into
// the pack file, in addition to its hash.
func NewKeyWithHint(h Hash, offset, length int64) Key {
	return Key{hash: h, hasHint: true, offset: offset, length: length}
}

// ToHash projects a Key down to its Hash. This projection is total:
// every Key has exactly one underlying hash.
func (k Key) ToHash() Hash {
	return k.hash
}

// Hint returns the (offset, length) pair and true if this key carries
// an in-pack offset hint, or (0, 0, false) otherwise.
func (k Key) Hint() (offset, length int64, ok bool) {
	if !k.hasHint {
		return 0, 0, false
	}
	return k.offset, k.length, true
}

// Equal reports whether two keys refer to the same hash. Hints are
// not compared — two keys with the same hash but different (or
// absent) hints are still considered equal, since the hint is only a
// locality optimization over the same logical content.
func (k Key) Equal(other Key) bool {
	return k.hash == other.hash
}

// String renders the key for logging: the hash, plus the hint in
// parentheses when present.
func (k Key) String() string {
	if k.hasHint {
		return fmt.Sprintf("%s(@%d+%d)", k.hash, k.offset, k.length)
	}
	return k.hash.String()
}
