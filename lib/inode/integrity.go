// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"fmt"

	"github.com/2lambda123/irmin/lib/irminhash"
)

// IssueKind enumerates the integrity-error result variants a
// structural scan of a persisted tree can report. DuplicatedPointers
// and UnsortedPointers never come out of CheckIntegrity: Decode
// rejects a Tree-pointer list that repeats a slot, and places an
// out-of-order list into the fixed-width slot array by index, so a
// decoded tree carries neither problem. Only CheckBinIntegrity,
// running directly over a raw, not-yet-decoded Bin, reports them.
type IssueKind int

const (
	WrongHash IssueKind = iota
	AbsentValue
	InvalidDepth
	InvalidLength
	DuplicatedEntries
	UnsortedEntries
	DuplicatedPointers
	UnsortedPointers
	Empty
)

func (k IssueKind) String() string {
	switch k {
	case WrongHash:
		return "WrongHash"
	case AbsentValue:
		return "AbsentValue"
	case InvalidDepth:
		return "InvalidDepth"
	case InvalidLength:
		return "InvalidLength"
	case DuplicatedEntries:
		return "DuplicatedEntries"
	case UnsortedEntries:
		return "UnsortedEntries"
	case DuplicatedPointers:
		return "DuplicatedPointers"
	case UnsortedPointers:
		return "UnsortedPointers"
	case Empty:
		return "Empty"
	default:
		return fmt.Sprintf("IssueKind(%d)", int(k))
	}
}

// Issue is one structural problem found by CheckIntegrity or
// CheckBinIntegrity.
type Issue struct {
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
}

// Result collects every issue found by a scan.
type Result struct {
	Issues []Issue
}

// OK reports whether the scan found no issues.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// CheckIntegrity walks n and every reachable descendant, validating
// depth, length, sortedness and absence-of-duplicates within Values
// leaves, and resolvability of every pointer. It is meant for tooling
// driving an fsck-equivalent scan, not for the hot path.
func CheckIntegrity(n *Inode) Result {
	var issues []Issue
	expectedDepth := n.Depth()
	if n.root {
		expectedDepth = 0
	}
	n.checkIntegrity(expectedDepth, &issues)
	return Result{Issues: issues}
}

// CheckAgainstHash runs CheckIntegrity and additionally verifies that
// n's computed hash matches expected, appending a WrongHash issue on
// mismatch.
func CheckAgainstHash(n *Inode, expected irminhash.Hash) Result {
	result := CheckIntegrity(n)
	if n.Hash() != expected {
		result.Issues = append(result.Issues, Issue{
			Kind:   WrongHash,
			Detail: fmt.Sprintf("computed hash %s does not match expected %s", n.Hash(), expected),
		})
	}
	return result
}

func (n *Inode) checkIntegrity(expectedDepth int, issues *[]Issue) {
	switch v := n.view.(type) {
	case *valuesView:
		if len(v.bindings) == 0 && !n.root {
			*issues = append(*issues, Issue{Kind: Empty, Detail: "non-root values leaf has no bindings"})
		}
		for i := 1; i < len(v.bindings); i++ {
			switch {
			case v.bindings[i].Step < v.bindings[i-1].Step:
				*issues = append(*issues, Issue{
					Kind:   UnsortedEntries,
					Detail: fmt.Sprintf("binding %d (%q) sorts before binding %d (%q)", i, v.bindings[i].Step, i-1, v.bindings[i-1].Step),
				})
			case v.bindings[i].Step == v.bindings[i-1].Step:
				*issues = append(*issues, Issue{
					Kind:   DuplicatedEntries,
					Detail: fmt.Sprintf("step %q is bound twice", v.bindings[i].Step),
				})
			}
		}
		if len(v.bindings) > n.ctx.cfg.Entries {
			*issues = append(*issues, Issue{
				Kind:   InvalidLength,
				Detail: fmt.Sprintf("values leaf has %d bindings, exceeding Entries=%d", len(v.bindings), n.ctx.cfg.Entries),
			})
		}

	case *treeView:
		if v.depth != expectedDepth {
			*issues = append(*issues, Issue{
				Kind:   InvalidDepth,
				Detail: fmt.Sprintf("tree node depth %d, expected %d", v.depth, expectedDepth),
			})
		}
		if v.count <= n.ctx.cfg.Entries {
			*issues = append(*issues, Issue{
				Kind:   InvalidLength,
				Detail: fmt.Sprintf("tree node length %d does not exceed Entries=%d", v.count, n.ctx.cfg.Entries),
			})
		}
		sum := 0
		for i, p := range v.entries {
			if p == nil {
				continue
			}
			child, err := p.resolve()
			if err != nil {
				*issues = append(*issues, Issue{Kind: AbsentValue, Detail: fmt.Sprintf("slot %d: %v", i, err)})
				continue
			}
			sum += child.Length()
			child.checkIntegrity(v.depth+1, issues)
		}
		if sum != v.count {
			*issues = append(*issues, Issue{
				Kind:   InvalidLength,
				Detail: fmt.Sprintf("tree node length %d does not match sum of children's lengths %d", v.count, sum),
			})
		}

	default:
		*issues = append(*issues, Issue{Kind: AbsentValue, Detail: fmt.Sprintf("unknown view type %T", n.view)})
	}
}

// CheckBinIntegrity validates a raw, not-yet-placed Bin's pointer or
// binding list directly: sortedness and absence of duplicates. Use
// this ahead of turning a suspect Bin into a Tree node's fixed-width
// array, where out-of-order slots would otherwise be silently
// reordered by array placement and a duplicate slot would only surface
// as a Decode error rather than a reported issue.
func CheckBinIntegrity(b Bin) Result {
	var issues []Issue
	if b.IsTree {
		for i := 1; i < len(b.Ptrs); i++ {
			switch {
			case b.Ptrs[i].Index < b.Ptrs[i-1].Index:
				issues = append(issues, Issue{
					Kind:   UnsortedPointers,
					Detail: fmt.Sprintf("pointer %d (slot %d) sorts before pointer %d (slot %d)", i, b.Ptrs[i].Index, i-1, b.Ptrs[i-1].Index),
				})
			case b.Ptrs[i].Index == b.Ptrs[i-1].Index:
				issues = append(issues, Issue{
					Kind:   DuplicatedPointers,
					Detail: fmt.Sprintf("slot %d is bound twice", b.Ptrs[i].Index),
				})
			}
		}
		if len(b.Ptrs) == 0 {
			issues = append(issues, Issue{Kind: Empty, Detail: "tree node has no pointers"})
		}
		return Result{Issues: issues}
	}
	for i := 1; i < len(b.Bindings); i++ {
		switch {
		case b.Bindings[i].Step < b.Bindings[i-1].Step:
			issues = append(issues, Issue{
				Kind:   UnsortedEntries,
				Detail: fmt.Sprintf("binding %d (%q) sorts before binding %d (%q)", i, b.Bindings[i].Step, i-1, b.Bindings[i-1].Step),
			})
		case b.Bindings[i].Step == b.Bindings[i-1].Step:
			issues = append(issues, Issue{
				Kind:   DuplicatedEntries,
				Detail: fmt.Sprintf("step %q is bound twice", b.Bindings[i].Step),
			})
		}
	}
	return Result{Issues: issues}
}
