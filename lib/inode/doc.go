// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

// Package inode implements Irmin's hash-consed, balanced, deterministic
// inode tree: a directory-like map from [step.Step] to [Value] (either
// a Contents reference with metadata, or a child Node reference),
// chunked so that very large directories split into small,
// independently shareable and updatable pieces.
//
// An [Inode] is either a Values leaf (an ordered map of at most
// Config.Entries bindings) or a Tree node (an array of up to
// Config.Entries child pointers plus a running length). Every mutating
// operation ([Inode.Add], [Inode.Remove]) is copy-on-write: it returns
// a new root sharing every untouched subtree with the original.
//
// Child pointers come in three ownership modes fixed once per tree at
// construction — [Layout]Total (owns children outright), Partial
// (lazily resolves through a [Resolver], caching the result), and
// Truncated (children may be permanently unreachable because the
// deserialiser that produced this tree was not given a resolver).
// [Inode.Save] walks a tree bottom-up, persisting every unsaved child
// through a [Store] and promoting each child pointer's hash to a key.
package inode
