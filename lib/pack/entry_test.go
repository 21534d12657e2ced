// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func mustEncodeV1Payload(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	if err != nil {
		t.Fatalf("cbor.Marshal: %v", err)
	}
	return b
}

func TestEncodeDecodeRoundTripV2(t *testing.T) {
	payload := []byte("a compress payload's bytes, opaque to this package")
	raw, err := Encode(KindInodeV2NonRoot, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	entry, n, err := Decode(raw, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(raw) {
		t.Errorf("consumed %d bytes, want %d", n, len(raw))
	}
	if entry.Kind != KindInodeV2NonRoot {
		t.Errorf("kind = %s, want %s", entry.Kind, KindInodeV2NonRoot)
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("payload = %q, want %q", entry.Payload, payload)
	}
}

func TestEncodeInodeChoosesRootKind(t *testing.T) {
	raw, err := EncodeInode(true, []byte("root"))
	if err != nil {
		t.Fatal(err)
	}
	entry, _, err := Decode(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Kind != KindInodeV2Root {
		t.Errorf("kind = %s, want %s", entry.Kind, KindInodeV2Root)
	}

	raw, err = EncodeInode(false, []byte("nonroot"))
	if err != nil {
		t.Fatal(err)
	}
	entry, _, err = Decode(raw, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Kind != KindInodeV2NonRoot {
		t.Errorf("kind = %s, want %s", entry.Kind, KindInodeV2NonRoot)
	}
}

func TestEncodeRejectsV1Kind(t *testing.T) {
	if _, err := Encode(KindInodeV1Stable, []byte("x")); err == nil {
		t.Error("Encode should refuse to emit a V1 kind")
	}
}

func TestEncodeRejectsUnknownKind(t *testing.T) {
	if _, err := Encode(Kind(0xff), []byte("x")); err == nil {
		t.Error("Encode should refuse an unknown kind byte")
	}
}

func TestDecodeV1IsSizeProbedNotLengthPrefixed(t *testing.T) {
	payload := mustEncodeV1Payload(t, map[string]interface{}{"depth": 2, "length": 9})
	checksum := entryChecksum(KindInodeV1Unstable, payload)

	raw := append([]byte{byte(KindInodeV1Unstable)}, payload...)
	raw = append(raw, checksum[:]...)

	entry, n, err := Decode(raw, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(raw) {
		t.Errorf("consumed %d bytes, want %d", n, len(raw))
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("payload = %x, want %x", entry.Payload, payload)
	}
}

func TestDecodeDetectsCorruptedChecksum(t *testing.T) {
	raw, err := Encode(KindContents, []byte("some blob bytes"))
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0xff // flip a bit in the checksum trailer

	if _, _, err := Decode(raw, 0); err == nil {
		t.Fatal("expected a checksum mismatch to be detected")
	} else if ce, ok := err.(*CorruptedEntry); !ok || ce.Field != "checksum" {
		t.Errorf("error = %#v, want *CorruptedEntry{Field: \"checksum\"}", err)
	}
}

func TestDecodeDetectsCorruptedPayloadViaChecksum(t *testing.T) {
	raw, err := Encode(KindContents, []byte("some blob bytes"))
	if err != nil {
		t.Fatal(err)
	}
	raw[6] ^= 0xff // flip a bit inside the payload region

	if _, _, err := Decode(raw, 0); err == nil {
		t.Fatal("expected payload corruption to fail the checksum check")
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	raw := []byte{0xee, 0, 0, 0, 0}
	if _, _, err := Decode(raw, 42); err == nil {
		t.Fatal("expected an unknown kind byte to error")
	} else if _, ok := err.(*UnknownKind); !ok {
		t.Errorf("error = %T, want *UnknownKind", err)
	}
}

func TestDecodeRejectsTruncatedLength(t *testing.T) {
	raw := []byte{byte(KindContents), 0, 0}
	if _, _, err := Decode(raw, 7); err == nil {
		t.Fatal("expected a truncated length field to error")
	} else if ce, ok := err.(*CorruptedEntry); !ok || ce.Field != "length" {
		t.Errorf("error = %#v, want *CorruptedEntry{Field: \"length\"}", err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	raw, err := Encode(KindContents, []byte("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	truncated := raw[:10] // kind + length header + only half the payload

	if _, _, err := Decode(truncated, 3); err == nil {
		t.Fatal("expected a truncated payload to error")
	} else if ce, ok := err.(*CorruptedEntry); !ok || ce.Field != "payload" {
		t.Errorf("error = %#v, want *CorruptedEntry{Field: \"payload\"}", err)
	}
}

func TestDecodeRejectsTruncatedChecksum(t *testing.T) {
	raw, err := Encode(KindContents, []byte("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	truncated := raw[:len(raw)-5] // full payload present, checksum cut short

	if _, _, err := Decode(truncated, 3); err == nil {
		t.Fatal("expected a truncated checksum to error")
	} else if ce, ok := err.(*CorruptedEntry); !ok || ce.Field != "checksum" {
		t.Errorf("error = %#v, want *CorruptedEntry{Field: \"checksum\"}", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		kind       Kind
		wantV1     bool
		wantInode  bool
		wantRoot   bool
		wantStable bool
	}{
		{KindContents, false, false, false, false},
		{KindCommitV1, true, false, false, false},
		{KindCommitV2, false, false, false, false},
		{KindInodeV1Stable, true, true, false, true},
		{KindInodeV1Unstable, true, true, false, false},
		{KindInodeV2Root, false, true, true, false},
		{KindInodeV2NonRoot, false, true, false, false},
	}
	for _, tc := range cases {
		if got := tc.kind.isV1(); got != tc.wantV1 {
			t.Errorf("%s.isV1() = %v, want %v", tc.kind, got, tc.wantV1)
		}
		if got := tc.kind.IsInode(); got != tc.wantInode {
			t.Errorf("%s.IsInode() = %v, want %v", tc.kind, got, tc.wantInode)
		}
		if got := tc.kind.IsRoot(); got != tc.wantRoot {
			t.Errorf("%s.IsRoot() = %v, want %v", tc.kind, got, tc.wantRoot)
		}
		if got := tc.kind.IsStable(); got != tc.wantStable {
			t.Errorf("%s.IsStable() = %v, want %v", tc.kind, got, tc.wantStable)
		}
	}
}

func TestKindStringUnknown(t *testing.T) {
	if s := Kind(0x99).String(); s == "" {
		t.Error("String() should never return empty for an unknown kind")
	}
}
