// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package control implements the store's control file: a single file
// of at most one filesystem page, rewritten atomically, that records
// the pack's chunk layout and garbage-collection status.
//
// The on-disk layout is an 8-byte ASCII version tag followed by a
// version-specific payload: V3 and V4 are historical formats this
// package can still read, V5 is the only format it ever writes. A
// checksum field inside the payload (Adler-32, computed with the
// checksum field itself zeroed) lets a reader detect a torn or
// corrupted write; V3 and V4 files opened for read are transparently
// upgraded to the in-memory V5 shape.
package control
