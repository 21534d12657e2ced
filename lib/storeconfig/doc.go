// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package storeconfig loads the per-store tunables that determine an
// inode tree's on-disk shape: ENTRIES, STABLE_HASH, the child-ordering
// policy, and the pack store's compression setting.
//
// Configuration is loaded from a single file specified by either the
// IRMIN_STORE_CONFIG environment variable (via [Load]) or an explicit
// path (via [LoadFile]). There are no fallbacks and no automatic
// discovery: a store's shape is load-bearing for every reader and
// writer that touches it, so a hidden default would silently corrupt
// the invariant that ENTRIES/STABLE_HASH/ordering are fixed for the
// lifetime of a store.
package storeconfig
