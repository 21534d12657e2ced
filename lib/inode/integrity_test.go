// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"testing"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/step"
)

func TestCheckIntegrityCleanTreeIsOK(t *testing.T) {
	cfg := testConfig(t, 2, 2)
	n := mustEmpty(t, cfg)
	var err error
	for _, s := range []step.Step{"a", "b", "c", "d", "e"} {
		n, err = n.Add(s, contentsValue(string(s)))
		if err != nil {
			t.Fatalf("Add %s: %v", s, err)
		}
	}
	if r := CheckIntegrity(n); !r.OK() {
		t.Errorf("expected a clean tree to report no issues, got %v", r.Issues)
	}
}

func TestCheckAgainstHashReportsWrongHash(t *testing.T) {
	cfg := testConfig(t, 32, 1024)
	n := mustEmpty(t, cfg)
	n, err := n.Add("a", contentsValue("a"))
	if err != nil {
		t.Fatal(err)
	}
	bogus := irminhash.HashContents([]byte("not the real hash"))
	r := CheckAgainstHash(n, bogus)
	if !hasIssue(r, WrongHash) {
		t.Errorf("expected WrongHash issue, got %v", r.Issues)
	}
}

func TestCheckIntegrityReportsAbsentValue(t *testing.T) {
	cfg := testConfig(t, 2, 1024)
	ctx := &context{cfg: cfg, layout: LayoutTruncated}
	missing := irminhash.HashContents([]byte("gone"))
	entries := make([]*childPtr, cfg.Entries)
	entries[0] = newTruncatedBrokenChild(ctx, missing)
	tree := newInode(ctx, true, &treeView{depth: 0, count: 5, entries: entries})

	r := CheckIntegrity(tree)
	if !hasIssue(r, AbsentValue) {
		t.Errorf("expected AbsentValue issue for an unresolvable broken pointer, got %v", r.Issues)
	}
}

func TestCheckIntegrityReportsInvalidDepth(t *testing.T) {
	cfg := testConfig(t, 2, 2)
	ctx := &context{cfg: cfg, layout: LayoutTotal}
	leaf := newInode(ctx, false, &valuesView{bindings: []BinBinding{
		{Step: "a", Value: contentsValue("a")},
		{Step: "b", Value: contentsValue("b")},
		{Step: "c", Value: contentsValue("c")},
	}})
	entries := make([]*childPtr, cfg.Entries)
	entries[0] = newTotalChild(ctx, leaf)
	// Depth is wrong on purpose: a tree node at depth 3 with a root
	// expectation of 0 should be reported.
	tree := newInode(ctx, true, &treeView{depth: 3, count: 3, entries: entries})

	r := CheckIntegrity(tree)
	if !hasIssue(r, InvalidDepth) {
		t.Errorf("expected InvalidDepth issue, got %v", r.Issues)
	}
}

func TestCheckIntegrityReportsInvalidLengthOnMismatch(t *testing.T) {
	cfg := testConfig(t, 2, 2)
	ctx := &context{cfg: cfg, layout: LayoutTotal}
	leaf := newInode(ctx, false, &valuesView{bindings: []BinBinding{
		{Step: "a", Value: contentsValue("a")},
	}})
	entries := make([]*childPtr, cfg.Entries)
	entries[0] = newTotalChild(ctx, leaf)
	// Declared length (10) does not match the sum of children (1).
	tree := newInode(ctx, true, &treeView{depth: 0, count: 10, entries: entries})

	r := CheckIntegrity(tree)
	if !hasIssue(r, InvalidLength) {
		t.Errorf("expected InvalidLength issue for a length/children mismatch, got %v", r.Issues)
	}
}

func TestCheckIntegrityReportsEmptyNonRootLeaf(t *testing.T) {
	cfg := testConfig(t, 2, 2)
	ctx := &context{cfg: cfg, layout: LayoutTotal}
	leaf := newInode(ctx, false, &valuesView{})

	r := leaf.checkIntegrityForTest()
	if !hasIssue(r, Empty) {
		t.Errorf("expected Empty issue for a non-root leaf with no bindings, got %v", r.Issues)
	}
}

func TestCheckBinIntegrityReportsUnsortedAndDuplicatedEntries(t *testing.T) {
	b := Bin{IsTree: false, Bindings: []BinBinding{
		{Step: "b", Value: contentsValue("b")},
		{Step: "a", Value: contentsValue("a")},
		{Step: "a", Value: contentsValue("a")},
	}}
	r := CheckBinIntegrity(b)
	if !hasIssue(r, UnsortedEntries) {
		t.Errorf("expected UnsortedEntries issue, got %v", r.Issues)
	}
	if !hasIssue(r, DuplicatedEntries) {
		t.Errorf("expected DuplicatedEntries issue, got %v", r.Issues)
	}
}

func TestCheckBinIntegrityReportsUnsortedAndDuplicatedPointers(t *testing.T) {
	h := irminhash.HashContents([]byte("x"))
	b := Bin{IsTree: true, Depth: 0, Ptrs: []BinPtr{
		{Index: 2, Hash: h},
		{Index: 0, Hash: h},
		{Index: 0, Hash: h},
	}}
	r := CheckBinIntegrity(b)
	if !hasIssue(r, UnsortedPointers) {
		t.Errorf("expected UnsortedPointers issue, got %v", r.Issues)
	}
	if !hasIssue(r, DuplicatedPointers) {
		t.Errorf("expected DuplicatedPointers issue, got %v", r.Issues)
	}
}

func TestCheckBinIntegrityReportsEmptyTree(t *testing.T) {
	b := Bin{IsTree: true, Depth: 0, Ptrs: nil}
	r := CheckBinIntegrity(b)
	if !hasIssue(r, Empty) {
		t.Errorf("expected Empty issue for a tree with no pointers, got %v", r.Issues)
	}
}

func TestCheckBinIntegrityCleanBinIsOK(t *testing.T) {
	b := Bin{IsTree: false, Bindings: []BinBinding{
		{Step: "a", Value: contentsValue("a")},
		{Step: "b", Value: contentsValue("b")},
	}}
	if r := CheckBinIntegrity(b); !r.OK() {
		t.Errorf("expected a clean Bin to report no issues, got %v", r.Issues)
	}
}

func hasIssue(r Result, kind IssueKind) bool {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// checkIntegrityForTest exposes the unexported recursive scan entry
// point for a single node, for tests that build a lone leaf directly
// rather than a whole tree.
func (n *Inode) checkIntegrityForTest() Result {
	var issues []Issue
	n.checkIntegrity(n.Depth(), &issues)
	return Result{Issues: issues}
}
