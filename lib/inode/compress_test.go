// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"testing"

	"github.com/2lambda123/irmin/lib/irminhash"
)

type fakeDict struct {
	byIndex map[int]string
	byName  map[string]int
}

func newFakeDict(entries ...string) *fakeDict {
	d := &fakeDict{byIndex: map[int]string{}, byName: map[string]int{}}
	for i, s := range entries {
		d.byIndex[i] = s
		d.byName[s] = i
	}
	return d
}

func (d *fakeDict) FindIndex(s string) (int, bool) {
	i, ok := d.byName[s]
	return i, ok
}

func (d *fakeDict) FindString(id int) (string, bool) {
	s, ok := d.byIndex[id]
	return s, ok
}

type fakeAddrResolver struct {
	offsets  map[irminhash.Hash]int64
	byOffset map[int64]irminhash.Hash
}

func newFakeAddrResolver() *fakeAddrResolver {
	return &fakeAddrResolver{offsets: map[irminhash.Hash]int64{}, byOffset: map[int64]irminhash.Hash{}}
}

func (r *fakeAddrResolver) put(h irminhash.Hash, offset int64) {
	r.offsets[h] = offset
	r.byOffset[offset] = h
}

func (r *fakeAddrResolver) OffsetOf(k irminhash.Key) (int64, bool) {
	off, ok := r.offsets[k.ToHash()]
	return off, ok
}

func (r *fakeAddrResolver) HashAtOffset(offset int64) (irminhash.Hash, bool) {
	h, ok := r.byOffset[offset]
	return h, ok
}

func TestCompressRoundTripDirectForms(t *testing.T) {
	bin := Bin{
		IsTree: false,
		Bindings: []BinBinding{
			{Step: "short", Value: contentsValue("a")},
			{Step: "much-longer-step-name", Value: NewNodeValue(irminhash.NewKey(irminhash.HashContents([]byte("child"))))},
		},
	}
	payload := bin.ToCompress(nil, nil)
	raw, err := payload.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeCompressPayload(raw)
	if err != nil {
		t.Fatalf("DecodeCompressPayload: %v", err)
	}
	back, err := FromCompress(decoded, nil, nil)
	if err != nil {
		t.Fatalf("FromCompress: %v", err)
	}
	if len(back.Bindings) != len(bin.Bindings) {
		t.Fatalf("round trip binding count = %d, want %d", len(back.Bindings), len(bin.Bindings))
	}
	for i := range bin.Bindings {
		if back.Bindings[i].Step != bin.Bindings[i].Step {
			t.Errorf("binding %d step = %q, want %q", i, back.Bindings[i].Step, bin.Bindings[i].Step)
		}
		if !back.Bindings[i].Value.Equal(bin.Bindings[i].Value) {
			t.Errorf("binding %d value = %v, want %v", i, back.Bindings[i].Value, bin.Bindings[i].Value)
		}
	}
}

func TestCompressUsesIndirectNameWhenDictHits(t *testing.T) {
	dict := newFakeDict("directory-name")
	name := encodeName("directory-name", dict)
	if !name.Indirect {
		t.Error("expected an indirect name when the dictionary has the step")
	}
	back, err := decodeName(name, dict)
	if err != nil {
		t.Fatalf("decodeName: %v", err)
	}
	if string(back) != "directory-name" {
		t.Errorf("decoded name = %q, want %q", back, "directory-name")
	}
}

func TestCompressFallsBackToDirectNameOnShortStepOrDictMiss(t *testing.T) {
	dict := newFakeDict("something-else")
	if n := encodeName("ab", dict); n.Indirect {
		t.Error("a step shorter than the minimum indirect length must stay Direct")
	}
	if n := encodeName("unregistered-name", dict); n.Indirect {
		t.Error("a step absent from the dictionary must stay Direct")
	}
	if n := encodeName("anything", nil); n.Indirect {
		t.Error("a nil dictionary must always produce a Direct name")
	}
}

func TestCompressUsesIndirectAddressWhenResolverHits(t *testing.T) {
	addr := newFakeAddrResolver()
	h := irminhash.HashContents([]byte("x"))
	key := irminhash.NewKey(h)
	addr.put(h, 4096)

	a := encodeAddress(key, addr)
	if !a.Indirect {
		t.Error("expected an indirect address when the resolver knows the offset")
	}
	back, err := decodeAddress(a, addr)
	if err != nil {
		t.Fatalf("decodeAddress: %v", err)
	}
	if back.ToHash() != h {
		t.Errorf("decoded address hash = %s, want %s", back.ToHash(), h)
	}
}

func TestCompressFallsBackToDirectAddressOnResolverMiss(t *testing.T) {
	h := irminhash.HashContents([]byte("y"))
	key := irminhash.NewKey(h)
	if a := encodeAddress(key, newFakeAddrResolver()); a.Indirect {
		t.Error("a key absent from the resolver must stay Direct")
	}
	if a := encodeAddress(key, nil); a.Indirect {
		t.Error("a nil resolver must always produce a Direct address")
	}
}

func TestCompressPreservesMetadataOnlyWhenNonDefault(t *testing.T) {
	key := irminhash.NewKey(irminhash.HashContents([]byte("x")))
	def := encodeValue(NewContentsValue(key, DefaultMetadata()), nil)
	if def.HasMetadata {
		t.Error("default metadata should not be marked HasMetadata")
	}
	custom := encodeValue(NewContentsValue(key, Metadata{Mode: 0o644}), nil)
	if !custom.HasMetadata || custom.Mode != 0o644 {
		t.Errorf("custom metadata not preserved: %+v", custom)
	}

	decodedDef, err := decodeValue(def, nil)
	if err != nil {
		t.Fatal(err)
	}
	if md, _ := decodedDef.Metadata(); !md.IsDefault() {
		t.Error("decoded default metadata should still be default")
	}
	decodedCustom, err := decodeValue(custom, nil)
	if err != nil {
		t.Fatal(err)
	}
	if md, _ := decodedCustom.Metadata(); md.Mode != 0o644 {
		t.Errorf("decoded metadata mode = %d, want %o", md.Mode, 0o644)
	}
}

func TestFromCompressFailsWithoutRequiredDict(t *testing.T) {
	name := Name{Indirect: true, DictIndex: 0}
	if _, err := decodeName(name, nil); err == nil {
		t.Error("decoding an indirect name without a dictionary should fail")
	}
}

func TestFromCompressFailsWithoutRequiredAddressResolver(t *testing.T) {
	addr := Address{Indirect: true, Offset: 10}
	if _, err := decodeAddress(addr, nil); err == nil {
		t.Error("decoding an indirect address without a resolver should fail")
	}
}
