// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package irminfs implements a read-only FUSE filesystem over a saved
// inode tree.
//
// The mount root corresponds to the tree's root key. Each directory
// entry is one binding of the root's flat map: a Contents value
// becomes a regular file, a Node value becomes a subdirectory whose
// own root is resolved from the pack store on first Lookup or
// Readdir. Resolution is lazy and cached in the go-fuse inode graph,
// matching the tree's own Partial layout: nothing beyond the entries
// actually visited is ever decoded.
//
// # Write Path
//
// Not implemented. Opening a file for writing returns EROFS; the nodes
// implement no create, write, rename or remove handler, so other
// mutating calls fail with go-fuse's default error for an unimplemented
// operation — a mounted tree is a saved, immutable snapshot.
package irminfs
