// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package irminhash

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. All content hashes (contents,
// node, commit) are this size, regardless of which domain produced
// them.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// hashes in different contexts, preventing cross-domain collisions
// between, say, a Contents value and a Node's flat-map encoding that
// happen to share a byte representation.
type domainKey [32]byte

// Domain separation keys. These are fixed constants — changing any of
// them invalidates every existing hash computed in that domain. The
// byte values are the ASCII encoding of the domain name, zero-padded
// to 32 bytes, so they remain inspectable in hex dumps.
var (
	contentsDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 'c', 'o', 'n', 't', 'e', 'n', 't', 's',
	}

	// nodeStructuralDomainKey hashes the Bin form of an unstable inode:
	// a Values list or a Tree-of-pointers list, where child pointers
	// contribute their own already-computed hashes. This is the
	// "structural hash".
	nodeStructuralDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 'n', 'o', 'd', 'e', '.', 's', 't', 'r', 'u', 'c', 't',
	}

	// nodeStableDomainKey hashes the flat node formed by seq() for a
	// stable inode: the hash a naive, non-inode implementation would
	// compute over the same bindings.
	nodeStableDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 'n', 'o', 'd', 'e', '.', 's', 't', 'a', 'b', 'l', 'e',
	}

	commitDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 'c', 'o', 'm', 'm', 'i', 't',
	}

	// stepOrderDomainKey is the domain for the Hash-bits step-ordering
	// policy (lib/step). It is deliberately distinct from every
	// content-addressing domain: step ordering only ever affects
	// on-disk layout, never a stable inode's root hash, so its digest
	// must never collide with one that does.
	stepOrderDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 's', 't', 'e', 'p', '.', 'o', 'r', 'd', 'e', 'r',
	}

	// packEntryDomainKey hashes a pack entry's kind byte plus payload
	// for the trailing checksum appended to every framed entry.
	// Distinct from every content-addressing domain: this
	// checksum only ever guards against local corruption of one
	// on-disk entry, it is never used to address content.
	packEntryDomainKey = domainKey{
		'i', 'r', 'm', 'i', 'n', '.', 'p', 'a', 'c', 'k', '.', 'e', 'n', 't', 'r', 'y',
	}
)

// HashContents computes the contents-domain hash of a blob's raw
// bytes.
func HashContents(data []byte) Hash {
	return keyedHash(contentsDomainKey, data)
}

// HashNodeStructural computes the structural-domain hash of an
// unstable inode's Bin-encoded bytes.
func HashNodeStructural(binEncoded []byte) Hash {
	return keyedHash(nodeStructuralDomainKey, binEncoded)
}

// HashNodeStable computes the stable-domain hash of a flat node's
// encoded bytes (the bindings produced by seq(), encoded the same way
// a non-chunked implementation would).
func HashNodeStable(flatEncoded []byte) Hash {
	return keyedHash(nodeStableDomainKey, flatEncoded)
}

// HashCommit computes the commit-domain hash of a commit's encoded
// bytes.
func HashCommit(data []byte) Hash {
	return keyedHash(commitDomainKey, data)
}

// HashForStepOrder computes the step-order-domain hash of a step's
// binary encoding, for use by the Hash-bits ordering policy in
// lib/step. Full 32-byte width, so windows up to 256 bits (any
// practical Entries/depth combination the recursion-depth bound
// allows) can be extracted from a single digest.
func HashForStepOrder(stepEncoded []byte) Hash {
	return keyedHash(stepOrderDomainKey, stepEncoded)
}

// HashPackEntry computes the pack-entry-checksum-domain hash of a
// framed entry's kind byte and payload, used as the trailing
// integrity checksum appended to every entry.
func HashPackEntry(kindAndPayload []byte) Hash {
	return keyedHash(packEntryDomainKey, kindAndPayload)
}

// Compare returns -1, 0, or 1 according to the lexicographic order of
// two hashes, giving Hash a total order.
func Compare(a, b Hash) int {
	return bytes.Compare(a[:], b[:])
}

// IsZero reports whether h is the zero hash (never a valid content
// hash, used as a sentinel for "absent").
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hex-encoded representation, so a Hash prints
// legibly in logs and error messages.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Format returns the hex-encoded string representation of a hash.
// This is the canonical format used in the control file JSON dump,
// index text dump, and log output.
func Format(h Hash) string {
	return hex.EncodeToString(h[:])
}

// Parse parses a 64-character hex string into a Hash.
func Parse(hexString string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return h, fmt.Errorf("parsing hash: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("hash is %d bytes, want %d", len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}

// keyedHash computes a BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees;
	// the only error case is a wrong key length, unreachable here.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("irminhash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}
