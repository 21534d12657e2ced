// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import "testing"

func TestScanEntriesWalksConcatenatedEntries(t *testing.T) {
	e1, err := Encode(KindContents, []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	e2, err := EncodeInode(true, mustEncodeV1Payload(t, "root payload"))
	if err != nil {
		t.Fatal(err)
	}
	e3, err := Encode(KindCommitV2, []byte("commit"))
	if err != nil {
		t.Fatal(err)
	}

	raw := append(append(append([]byte{}, e1...), e2...), e3...)
	entries, err := ScanEntries(raw)
	if err != nil {
		t.Fatalf("ScanEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Offset != 0 || entries[0].Length != len(e1) {
		t.Errorf("entry 0 = %+v, want offset 0 length %d", entries[0], len(e1))
	}
	if entries[1].Offset != int64(len(e1)) {
		t.Errorf("entry 1 offset = %d, want %d", entries[1].Offset, len(e1))
	}
	if entries[1].Entry.Kind != KindInodeV2Root {
		t.Errorf("entry 1 kind = %s, want Inode_v2_root", entries[1].Entry.Kind)
	}
	if entries[2].Entry.Kind != KindCommitV2 || string(entries[2].Entry.Payload) != "commit" {
		t.Errorf("entry 2 = %+v, want Commit_v2 payload %q", entries[2].Entry, "commit")
	}
}

func TestScanEntriesStopsAtFirstCorruptEntry(t *testing.T) {
	good, err := Encode(KindContents, []byte("ok"))
	if err != nil {
		t.Fatal(err)
	}
	raw := append(append([]byte{}, good...), 0xff) // trailing unknown kind byte
	entries, err := ScanEntries(raw)
	if err == nil {
		t.Fatal("expected an error from the trailing garbage byte")
	}
	if _, ok := err.(*UnknownKind); !ok {
		t.Errorf("error = %T, want *UnknownKind", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries before the failure, want 1", len(entries))
	}
}

func TestParseKindRoundTripsWithString(t *testing.T) {
	kinds := []Kind{
		KindContents, KindCommitV1, KindCommitV2,
		KindInodeV1Stable, KindInodeV1Unstable,
		KindInodeV2Root, KindInodeV2NonRoot,
	}
	for _, k := range kinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Errorf("ParseKind(%s): %v", k.String(), err)
			continue
		}
		if parsed != k {
			t.Errorf("ParseKind(%s) = %s, want %s", k.String(), parsed, k)
		}
	}
}

func TestParseKindRejectsUnknownName(t *testing.T) {
	if _, err := ParseKind("Bogus"); err == nil {
		t.Error("expected an error for an unrecognised kind name")
	}
}
