// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package irminhash provides the fixed-width content hash and key
// types shared by every layer of the store: inode values, pack
// entries, and the control file's structural metadata all address
// content by [Hash].
//
// Hashes are BLAKE3 digests computed in one of several domain-separated
// keyed modes (contents, node-structural, node-stable, commit), so the
// same bytes never collide across domains even though they share a
// single 32-byte digest space. A [Key] extends a bare hash with an
// optional (offset, length) hint into the pack file — an optimization
// that lets a reader skip the index lookup when the hint is present,
// never a requirement for correctness.
package irminhash
