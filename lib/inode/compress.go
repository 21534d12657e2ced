// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/step"
)

// Name is a step reference in Compress form: Indirect when the step's
// binary form is at least 4 bytes and present in the dictionary,
// Direct otherwise.
type Name struct {
	Indirect  bool   `cbor:"ind"`
	DictIndex int    `cbor:"idx,omitempty"`
	Direct    string `cbor:"dir,omitempty"`
}

const minIndirectNameLen = 4

func encodeName(s step.Step, dict Dict) Name {
	if dict != nil && len(s.Encode()) >= minIndirectNameLen {
		if idx, ok := dict.FindIndex(string(s)); ok {
			return Name{Indirect: true, DictIndex: idx}
		}
	}
	return Name{Indirect: false, Direct: string(s)}
}

func decodeName(n Name, dict Dict) (step.Step, error) {
	if !n.Indirect {
		return step.Step(n.Direct), nil
	}
	if dict == nil {
		return "", fmt.Errorf("inode: name is dictionary-indirect but no dictionary was supplied")
	}
	s, ok := dict.FindString(n.DictIndex)
	if !ok {
		return "", fmt.Errorf("inode: dictionary has no entry for index %d", n.DictIndex)
	}
	return step.Step(s), nil
}

// Address is a key reference in Compress form: Indirect when the key
// carries an in-pack offset hint that a resolver can turn back into a
// hash, Direct (a plain hash) otherwise.
type Address struct {
	Indirect bool   `cbor:"ind"`
	Offset   int64  `cbor:"off,omitempty"`
	Direct   []byte `cbor:"dir,omitempty"`
}

func encodeAddress(k irminhash.Key, addr AddressResolver) Address {
	if addr != nil {
		if off, ok := addr.OffsetOf(k); ok {
			return Address{Indirect: true, Offset: off}
		}
	}
	h := k.ToHash()
	return Address{Indirect: false, Direct: append([]byte(nil), h[:]...)}
}

func decodeAddress(a Address, addr AddressResolver) (irminhash.Key, error) {
	if !a.Indirect {
		h, err := hashFromBytes(a.Direct)
		if err != nil {
			return irminhash.Key{}, err
		}
		return irminhash.NewKey(h), nil
	}
	if addr == nil {
		return irminhash.Key{}, fmt.Errorf("inode: address is offset-indirect but no address resolver was supplied")
	}
	h, ok := addr.HashAtOffset(a.Offset)
	if !ok {
		return irminhash.Key{}, fmt.Errorf("inode: address resolver has no hash for offset %d", a.Offset)
	}
	return irminhash.NewKeyWithHint(h, a.Offset, 0), nil
}

func hashFromBytes(b []byte) (irminhash.Hash, error) {
	var h irminhash.Hash
	if len(b) != len(h) {
		return h, fmt.Errorf("inode: address hash is %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// CompressValue is a Value in Compress form. Its independent
// Name/Address indirection and HasMetadata flag realise the twelve
// on-wire variants (contents-ii/id/di/dd, their -x- explicit-metadata
// counterparts, and node-ii/id/di/dd) as one tagged struct rather than
// twelve Go types: the same byte savings, generalised.
type CompressValue struct {
	IsNode      bool    `cbor:"n,omitempty"`
	Address     Address `cbor:"a"`
	HasMetadata bool    `cbor:"hm,omitempty"`
	Mode        uint32  `cbor:"m,omitempty"`
}

func encodeValue(v Value, addr AddressResolver) CompressValue {
	cv := CompressValue{Address: encodeAddress(v.Key(), addr)}
	if v.Kind() == ValueKindNode {
		cv.IsNode = true
		return cv
	}
	if md, _ := v.Metadata(); !md.IsDefault() {
		cv.HasMetadata = true
		cv.Mode = md.Mode
	}
	return cv
}

func decodeValue(cv CompressValue, addr AddressResolver) (Value, error) {
	key, err := decodeAddress(cv.Address, addr)
	if err != nil {
		return Value{}, err
	}
	if cv.IsNode {
		return NewNodeValue(key), nil
	}
	md := DefaultMetadata()
	if cv.HasMetadata {
		md = Metadata{Mode: cv.Mode}
	}
	return NewContentsValue(key, md), nil
}

type compressBinding struct {
	Name  Name          `cbor:"n"`
	Value CompressValue `cbor:"v"`
}

type compressPtr struct {
	Index   int     `cbor:"i"`
	Address Address `cbor:"a"`
}

// CompressPayload is the on-disk, dictionary- and offset-compacted
// encoding of one inode entry.
type CompressPayload struct {
	IsTree bool `cbor:"t"`
	Depth  int  `cbor:"d,omitempty"`
	Length int  `cbor:"l,omitempty"`

	Bindings []compressBinding `cbor:"b,omitempty"`
	Ptrs     []compressPtr     `cbor:"p,omitempty"`
}

// ToCompress lowers a Bin into its compacted on-disk form, given
// optional dictionary and address-resolver collaborators. Both may be
// nil, in which case every Name and Address falls back to its Direct
// form.
func (b Bin) ToCompress(dict Dict, addr AddressResolver) CompressPayload {
	out := CompressPayload{IsTree: b.IsTree, Depth: b.Depth, Length: b.Length}
	if b.IsTree {
		out.Ptrs = make([]compressPtr, len(b.Ptrs))
		for i, p := range b.Ptrs {
			key := p.Key
			if !p.HasKey {
				key = irminhash.NewKey(p.Hash)
			}
			out.Ptrs[i] = compressPtr{Index: p.Index, Address: encodeAddress(key, addr)}
		}
		return out
	}
	out.Bindings = make([]compressBinding, len(b.Bindings))
	for i, binding := range b.Bindings {
		out.Bindings[i] = compressBinding{
			Name:  encodeName(binding.Step, dict),
			Value: encodeValue(binding.Value, addr),
		}
	}
	return out
}

// FromCompress raises a CompressPayload back into a Bin, resolving
// dictionary and offset indirections through dict and addr. Both must
// be non-nil if the payload actually used indirection; a nil
// collaborator for an indirection the payload doesn't use is fine.
func FromCompress(c CompressPayload, dict Dict, addr AddressResolver) (Bin, error) {
	out := Bin{IsTree: c.IsTree, Depth: c.Depth, Length: c.Length}
	if c.IsTree {
		out.Ptrs = make([]BinPtr, len(c.Ptrs))
		for i, p := range c.Ptrs {
			key, err := decodeAddress(p.Address, addr)
			if err != nil {
				return Bin{}, fmt.Errorf("inode: decoding pointer %d: %w", p.Index, err)
			}
			out.Ptrs[i] = BinPtr{Index: p.Index, Hash: key.ToHash(), Key: key, HasKey: true}
		}
		return out, nil
	}
	out.Bindings = make([]BinBinding, len(c.Bindings))
	for i, binding := range c.Bindings {
		s, err := decodeName(binding.Name, dict)
		if err != nil {
			return Bin{}, fmt.Errorf("inode: decoding binding %d name: %w", i, err)
		}
		v, err := decodeValue(binding.Value, addr)
		if err != nil {
			return Bin{}, fmt.Errorf("inode: decoding binding %d value: %w", i, err)
		}
		out.Bindings[i] = BinBinding{Step: s, Value: v}
	}
	return out, nil
}

// Encode serialises c to bytes with CBOR Core Deterministic Encoding.
func (c CompressPayload) Encode() ([]byte, error) {
	return marshalCBOR(c)
}

// DecodeCompressPayload parses bytes previously produced by
// CompressPayload.Encode.
func DecodeCompressPayload(data []byte) (CompressPayload, error) {
	var c CompressPayload
	if err := unmarshalCBOR(data, &c); err != nil {
		return CompressPayload{}, fmt.Errorf("inode: decoding compress payload: %w", err)
	}
	return c, nil
}
