// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package pack implements the pack entry kind byte and framing that
// sits directly below the inode value layer (lib/inode): a persisted
// entry is a kind byte followed by kind-specific framing and a
// trailing checksum over the kind and payload bytes.
//
// Two entry generations coexist on read. V1 entries (Inode_v1_stable,
// Inode_v1_unstable, Commit_v1) carry no explicit length: the payload
// is a single well-formed CBOR item, so its extent is recovered by
// probing how many bytes the CBOR decoder actually consumed rather
// than by reading a length field. V2 entries (Inode_v2_root,
// Inode_v2_nonroot, Commit_v2, Contents) carry an explicit length
// immediately after the kind byte, letting a scan skip an entry in
// O(1) without decoding its payload. The encoder in this package only
// ever emits V2; V1 support exists purely to read packs written by an
// older generation of the format.
package pack
