// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// Ordering computes the child-slot bucket for a step at a given tree
// depth. Implementations must be pure and depend only on (step,
// depth) — never on mutable state — so that the same logical map
// always produces the same on-disk shape for a fixed entries count and
// ordering policy.
type Ordering interface {
	// Bucket returns a slot in [0, entries) for step at the given
	// depth, or a *MaxDepthError if depth exceeds what this policy
	// can support.
	Bucket(s Step, depth int) (int, error)
}

// maxHashBitsEntries is the upper bound on ENTRIES for the Hash-bits
// policy: above this, a bit window at a realistic depth could run
// past a single 32-byte digest before MaxDepth would otherwise stop
// the recursion.
const maxHashBitsEntries = 1024

// HashBits implements the Hash-bits ordering policy: hash the step
// with the configured cryptographic hash function, then extract
// log2(entries) consecutive bits starting at bit depth*log2(entries)
// of the digest.
type HashBits struct {
	entries      int
	bitsPerLevel int
}

// NewHashBits constructs a Hash-bits ordering for the given branching
// factor. entries must be a power of two no greater than 1024.
func NewHashBits(entries int) (*HashBits, error) {
	bitsPerLevel := Log2(entries)
	if bitsPerLevel <= 0 {
		return nil, fmt.Errorf("step: entries %d is not a power of two greater than 1", entries)
	}
	if entries > maxHashBitsEntries {
		return nil, fmt.Errorf("step: Hash-bits ordering requires entries <= %d, got %d", maxHashBitsEntries, entries)
	}
	return &HashBits{entries: entries, bitsPerLevel: bitsPerLevel}, nil
}

// Bucket extracts the bit window for depth from the step's digest.
func (h *HashBits) Bucket(s Step, depth int) (int, error) {
	digest := irminhash.HashForStepOrder(s.Encode())

	startBit := depth * h.bitsPerLevel
	endBit := startBit + h.bitsPerLevel
	digestBits := len(digest) * 8

	if endBit > digestBits {
		return 0, &MaxDepthError{Depth: depth}
	}

	return extractBits(digest[:], startBit, h.bitsPerLevel), nil
}

// extractBits reads width consecutive bits from data, starting at bit
// offset start (bit 0 is the most-significant bit of data[0]),
// treating the window as a big-endian unsigned integer. The window
// may straddle a byte boundary.
func extractBits(data []byte, start, width int) int {
	var result int
	for i := 0; i < width; i++ {
		bitIndex := start + i
		byteIndex := bitIndex / 8
		bitInByte := 7 - (bitIndex % 8)
		bit := (data[byteIndex] >> uint(bitInByte)) & 1
		result = (result << 1) | int(bit)
	}
	return result
}

// SeededHash implements the Seeded-hash ordering policy: a
// non-cryptographic short hash of the step's binary encoding, seeded
// with the depth, reduced modulo entries. Unlike Hash-bits, this
// policy has no upper bound on entries and never fails with
// MaxDepth — a 64-bit hash always has bits to spare.
type SeededHash struct {
	entries int
}

// NewSeededHash constructs a Seeded-hash ordering for the given
// branching factor. entries must be a power of two.
func NewSeededHash(entries int) (*SeededHash, error) {
	if Log2(entries) <= 0 {
		return nil, fmt.Errorf("step: entries %d is not a power of two greater than 1", entries)
	}
	return &SeededHash{entries: entries}, nil
}

// Bucket hashes seed(depth) || step.Encode() with xxhash64 and
// reduces the result modulo entries.
func (s *SeededHash) Bucket(step Step, depth int) (int, error) {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], uint64(depth))

	digest := xxhash.New()
	digest.Write(seed[:])
	digest.Write(step.Encode())

	return int(digest.Sum64() % uint64(s.entries)), nil
}

// CustomFunc adapts a plain function to the Ordering interface, for
// the Custom policy (caller-supplied pure function).
type CustomFunc func(s Step, depth int) (int, error)

// Bucket calls the wrapped function.
func (f CustomFunc) Bucket(s Step, depth int) (int, error) {
	return f(s, depth)
}
