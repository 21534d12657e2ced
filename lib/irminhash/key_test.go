// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package irminhash

import "testing"

func TestKeyToHashIsTotal(t *testing.T) {
	h := HashContents([]byte("x"))

	plain := NewKey(h)
	if plain.ToHash() != h {
		t.Error("plain key did not project to its hash")
	}

	hinted := NewKeyWithHint(h, 128, 64)
	if hinted.ToHash() != h {
		t.Error("hinted key did not project to its hash")
	}
}

func TestKeyHint(t *testing.T) {
	h := HashContents([]byte("x"))

	plain := NewKey(h)
	if _, _, ok := plain.Hint(); ok {
		t.Error("plain key reported a hint")
	}

	hinted := NewKeyWithHint(h, 128, 64)
	offset, length, ok := hinted.Hint()
	if !ok || offset != 128 || length != 64 {
		t.Errorf("hinted key = (%d, %d, %v), want (128, 64, true)", offset, length, ok)
	}
}

func TestKeyEqualIgnoresHint(t *testing.T) {
	h := HashContents([]byte("x"))

	plain := NewKey(h)
	hinted := NewKeyWithHint(h, 128, 64)

	if !plain.Equal(hinted) {
		t.Error("keys with the same hash but different hints should be equal")
	}

	other := NewKey(HashContents([]byte("y")))
	if plain.Equal(other) {
		t.Error("keys with different hashes should not be equal")
	}
}
