// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"testing"

	"github.com/2lambda123/irmin/lib/irminhash"
)

func TestVRefLazyComputesOnce(t *testing.T) {
	calls := 0
	h := irminhash.HashContents([]byte("x"))
	v := newVRefLazy(func() irminhash.Hash {
		calls++
		return h
	})

	if got := v.Hash(); got != h {
		t.Errorf("Hash = %s, want %s", got, h)
	}
	if got := v.Hash(); got != h {
		t.Errorf("Hash (second call) = %s, want %s", got, h)
	}
	if calls != 1 {
		t.Errorf("compute was called %d times, want 1", calls)
	}
	if _, ok := v.Key(); ok {
		t.Error("Key() should be absent for a hash-only vref")
	}
}

func TestVRefFromKey(t *testing.T) {
	h := irminhash.HashContents([]byte("y"))
	k := irminhash.NewKey(h)
	v := newVRefFromKey(k)

	if got, ok := v.Key(); !ok || !got.Equal(k) {
		t.Errorf("Key() = (%s, %v), want (%s, true)", got, ok, k)
	}
	if got := v.Hash(); got != h {
		t.Errorf("Hash() = %s, want %s", got, h)
	}
}

func TestVRefPromoteConsistent(t *testing.T) {
	h := irminhash.HashContents([]byte("z"))
	v := newVRefLazy(func() irminhash.Hash { return h })
	v.Hash() // memoize

	k := irminhash.NewKeyWithHint(h, 42, 7)
	if err := v.Promote(k); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	got, ok := v.Key()
	if !ok || !got.Equal(k) {
		t.Errorf("Key() after promote = (%s, %v), want (%s, true)", got, ok, k)
	}

	// Promoting again with the same hash is a no-op.
	if err := v.Promote(irminhash.NewKey(h)); err != nil {
		t.Errorf("re-promoting with an equal hash should succeed: %v", err)
	}
}

func TestVRefPromoteRejectsInconsistentHash(t *testing.T) {
	h := irminhash.HashContents([]byte("a"))
	other := irminhash.HashContents([]byte("b"))
	v := newVRefLazy(func() irminhash.Hash { return h })
	v.Hash()

	if err := v.Promote(irminhash.NewKey(other)); err == nil {
		t.Error("promoting with a mismatched hash should fail")
	}
}
