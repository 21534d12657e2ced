// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/2lambda123/irmin/lib/irminhash"
)

const checksumSize = len(irminhash.Hash{})

// Entry is one decoded pack entry: its kind and the raw payload bytes
// still in whatever codec that kind uses (Compress-encoded CBOR for
// the four inode kinds, opaque for Contents and the two commit
// kinds — this package frames bytes, it never interprets them).
type Entry struct {
	Kind    Kind
	Payload []byte
}

// Encode frames payload under kind as a V2 entry: kind byte, explicit
// length, payload, checksum. The encoder never emits a V1 kind;
// callers that need a V1-shaped entry only get there by decoding one
// written by an older writer.
func Encode(kind Kind, payload []byte) ([]byte, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("pack: encoding unknown kind byte 0x%02x", byte(kind))
	}
	if kind.isV1() {
		return nil, fmt.Errorf("pack: encoder never emits V1 kind %s", kind)
	}

	buf := make([]byte, 0, 1+4+len(payload)+checksumSize)
	buf = append(buf, byte(kind))

	var lengthField [4]byte
	binary.LittleEndian.PutUint32(lengthField[:], uint32(len(payload)))
	buf = append(buf, lengthField[:]...)
	buf = append(buf, payload...)

	checksum := entryChecksum(kind, payload)
	buf = append(buf, checksum[:]...)
	return buf, nil
}

// EncodeInode frames a Compress-encoded inode payload as V2, choosing
// Inode_v2_root or Inode_v2_nonroot depending on whether this entry is
// the tree's root.
func EncodeInode(root bool, compressPayload []byte) ([]byte, error) {
	kind := KindInodeV2NonRoot
	if root {
		kind = KindInodeV2Root
	}
	return Encode(kind, compressPayload)
}

// Decode parses one pack entry from the start of raw. It returns the
// decoded entry and the number of bytes consumed, so callers scanning
// a pack file can advance to the next entry without re-parsing.
// offset is the entry's absolute position in the pack, used only to
// annotate CorruptedEntry.
func Decode(raw []byte, offset int64) (Entry, int, error) {
	if len(raw) < 1 {
		return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "kind"}
	}
	kind := Kind(raw[0])
	if !kind.valid() {
		return Entry{}, 0, &UnknownKind{Kind: raw[0]}
	}
	pos := 1

	var payload []byte
	if kind.isV1() {
		consumed, err := cborItemLength(raw[pos:])
		if err != nil {
			return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "payload"}
		}
		payload = raw[pos : pos+consumed]
		pos += consumed
	} else {
		if len(raw) < pos+4 {
			return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "length"}
		}
		length := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
		pos += 4
		if length < 0 || len(raw) < pos+length {
			return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "payload"}
		}
		payload = raw[pos : pos+length]
		pos += length
	}

	if len(raw) < pos+checksumSize {
		return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "checksum"}
	}
	var want irminhash.Hash
	copy(want[:], raw[pos:pos+checksumSize])
	pos += checksumSize

	if got := entryChecksum(kind, payload); got != want {
		return Entry{}, 0, &CorruptedEntry{Offset: offset, Field: "checksum"}
	}
	return Entry{Kind: kind, Payload: payload}, pos, nil
}

func entryChecksum(kind Kind, payload []byte) irminhash.Hash {
	content := make([]byte, 0, 1+len(payload))
	content = append(content, byte(kind))
	content = append(content, payload...)
	return irminhash.HashPackEntry(content)
}

// cborItemLength reports how many bytes of data the first well-formed
// CBOR item occupies, without requiring an explicit length prefix.
// This is what lets a V1 entry omit its length header: the Compress
// payload is itself a single CBOR item, so probing it with
// DiagnoseFirst (which returns the unconsumed remainder) tells you
// exactly where it ends.
func cborItemLength(data []byte) (int, error) {
	_, rest, err := cbor.DiagnoseFirst(data)
	if err != nil {
		return 0, fmt.Errorf("pack: probing V1 payload length: %w", err)
	}
	return len(data) - len(rest), nil
}
