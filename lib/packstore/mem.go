// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"fmt"
	"sync"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
)

// Mem is an in-memory Adapter with no framing or compression: it
// keeps raw payload bytes exactly as given, keyed by hash. It exists
// for tests that need an Adapter without a filesystem, mirroring
// lib/inode's own test-local memStore but exported so packages
// outside lib/inode can exercise the same Save/Find round trip.
type Mem struct {
	mu      sync.Mutex
	entries map[irminhash.Hash]memEntry
}

type memEntry struct {
	raw  []byte
	kind pack.Kind
}

// NewMem returns an empty in-memory adapter.
func NewMem() *Mem {
	return &Mem{entries: make(map[irminhash.Hash]memEntry)}
}

func (m *Mem) Mem(k irminhash.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[k.ToHash()]
	return ok
}

func (m *Mem) Find(k irminhash.Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[k.ToHash()]
	if !ok {
		return nil, false, nil
	}
	return e.raw, true, nil
}

func (m *Mem) Index(h irminhash.Hash) (irminhash.Key, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[h]; ok {
		return irminhash.NewKey(h), true
	}
	return irminhash.Key{}, false
}

func (m *Mem) Append(h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	return m.AppendKind(pack.KindInodeV2NonRoot, h, raw)
}

func (m *Mem) AppendRoot(h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	return m.AppendKind(pack.KindInodeV2Root, h, raw)
}

func (m *Mem) AppendKind(kind pack.Kind, h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[h]; ok {
		if existing.kind != kind {
			return irminhash.Key{}, fmt.Errorf("packstore: hash %s already appended as %s, cannot re-append as %s", h, existing.kind, kind)
		}
		return irminhash.NewKey(h), nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	m.entries[h] = memEntry{raw: cp, kind: kind}
	return irminhash.NewKey(h), nil
}

// Batch runs fn directly: an in-memory map needs no write batching.
func (m *Mem) Batch(fn func() error) error {
	return fn()
}

func (m *Mem) Close() error {
	return nil
}

// Len reports how many entries are stored, for tests.
func (m *Mem) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
