// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/step"
)

// Bin is the in-memory, on-the-wire shape of one inode entry: either a
// Values leaf's bindings or a Tree node's child-pointer array, before
// any dictionary or offset compaction. It is the input to structural
// hashing and to the Compress codec.
type Bin struct {
	IsTree bool
	Depth  int
	Length int

	// Bindings holds a Values leaf's (step, value) pairs, sorted by
	// step. Empty when IsTree is true.
	Bindings []BinBinding

	// Ptrs holds a Tree node's non-empty child slots, sorted by
	// Index. Empty when IsTree is false.
	Ptrs []BinPtr
}

// BinBinding is one Values leaf entry.
type BinBinding struct {
	Step  step.Step
	Value Value
}

// BinPtr is one Tree node child slot. Hash is always populated (it is
// what structural hashing consumes); Key and HasKey are populated once
// the child has been saved.
type BinPtr struct {
	Index  int
	Hash   irminhash.Hash
	Key    irminhash.Key
	HasKey bool
}

// binForHash is the minimal shape structural and stable hashing
// consume: only hashes, never keys or hints, so a hash never depends
// on whether a pointer happened to carry an in-pack offset.
type binForHash struct {
	IsTree   bool          `cbor:"t"`
	Depth    int           `cbor:"d,omitempty"`
	Bindings []hashBinding `cbor:"b,omitempty"`
	Ptrs     []hashPtr     `cbor:"p,omitempty"`
}

type hashBinding struct {
	Step    string `cbor:"s"`
	IsNode  bool   `cbor:"n,omitempty"`
	Hash    []byte `cbor:"h"`
	HasMeta bool   `cbor:"hm,omitempty"`
	Mode    uint32 `cbor:"m,omitempty"`
}

type hashPtr struct {
	Index int    `cbor:"i"`
	Hash  []byte `cbor:"h"`
}

// StructuralHash computes the unstable-inode hash of b: the hash of
// its own shape only, with each child pointer contributing its
// already-computed hash.
func (b Bin) StructuralHash() irminhash.Hash {
	preimage := b.hashPreimage()
	encoded, err := marshalCBOR(preimage)
	if err != nil {
		panic("inode: encoding Bin for structural hash: " + err.Error())
	}
	return irminhash.HashNodeStructural(encoded)
}

func (b Bin) hashPreimage() binForHash {
	out := binForHash{IsTree: b.IsTree, Depth: b.Depth}
	if b.IsTree {
		out.Ptrs = make([]hashPtr, len(b.Ptrs))
		for i, p := range b.Ptrs {
			h := p.Hash
			out.Ptrs[i] = hashPtr{Index: p.Index, Hash: h[:]}
		}
		return out
	}
	out.Bindings = make([]hashBinding, len(b.Bindings))
	for i, binding := range b.Bindings {
		hb := hashBinding{Step: string(binding.Step)}
		h := binding.Value.Key().ToHash()
		hb.Hash = h[:]
		if binding.Value.Kind() == ValueKindNode {
			hb.IsNode = true
		} else if md, ok := binding.Value.Metadata(); ok && !md.IsDefault() {
			hb.HasMeta = true
			hb.Mode = md.Mode
		}
		out.Bindings[i] = hb
	}
	return out
}

// StableHash computes the stable-inode hash of a fully flattened list
// of bindings for the whole logical map. Its preimage is the same
// encoding StructuralHash uses for a single Values leaf holding every
// binding, but it is hashed under the separate stable-node domain, so
// the two hashes differ. A stable root's hash is therefore independent
// of how deeply it happens to be chunked.
func StableHash(bindings []BinBinding) irminhash.Hash {
	flat := Bin{IsTree: false, Bindings: bindings}
	preimage := flat.hashPreimage()
	encoded, err := marshalCBOR(preimage)
	if err != nil {
		panic("inode: encoding flat bindings for stable hash: " + err.Error())
	}
	return irminhash.HashNodeStable(encoded)
}
