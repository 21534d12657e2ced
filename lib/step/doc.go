// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package step implements deterministic child-slot assignment for
// inode trees: mapping a path segment (a [Step]) and a tree depth to
// a bucket index in [0, ENTRIES).
//
// Three policies are available. Hash-bits extracts consecutive bits
// from a cryptographic digest of the step, windowed by depth — it
// requires ENTRIES <= 1024 so the window always fits within a single
// digest. Seeded-hash reduces a non-cryptographic short hash of the
// step, seeded by depth, modulo ENTRIES — cheaper, and unbounded in
// ENTRIES. Custom lets the caller supply any pure function.
//
// The choice of policy is fixed per store: it determines on-disk
// layout only, never the root hash of a stable inode.
package step
