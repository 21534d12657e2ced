// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package packstore implements the pack store adapter: the glue
// between inode values (which only ever see hashes, keys, and raw
// payload bytes) and an append-only pack file on disk.
//
// [Adapter] is the interface a caller programs against; it is a
// superset of lib/inode's own narrow Store/RootAwareStore interfaces
// (mem/index/append/append-root) plus find, batch, and close. [Mem]
// is a hash-map-backed implementation for tests. [File] is a
// file-backed implementation that frames every entry through
// lib/pack, optionally compresses payloads at the boundary with zstd
// or LZ4 before framing, and rebuilds its in-memory index by scanning
// the pack file on open.
package packstore
