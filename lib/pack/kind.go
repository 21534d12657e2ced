// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import "fmt"

// Kind is the one-byte tag that opens every pack entry.
type Kind byte

const (
	KindContents Kind = iota + 1
	KindCommitV1
	KindCommitV2
	KindInodeV1Stable
	KindInodeV1Unstable
	KindInodeV2Root
	KindInodeV2NonRoot
)

func (k Kind) String() string {
	switch k {
	case KindContents:
		return "Contents"
	case KindCommitV1:
		return "Commit_v1"
	case KindCommitV2:
		return "Commit_v2"
	case KindInodeV1Stable:
		return "Inode_v1_stable"
	case KindInodeV1Unstable:
		return "Inode_v1_unstable"
	case KindInodeV2Root:
		return "Inode_v2_root"
	case KindInodeV2NonRoot:
		return "Inode_v2_nonroot"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// ParseKind parses a kind's String() form back into a Kind, for tools
// (lib/packstore's index text form) that round-trip kinds through
// text.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "Contents":
		return KindContents, nil
	case "Commit_v1":
		return KindCommitV1, nil
	case "Commit_v2":
		return KindCommitV2, nil
	case "Inode_v1_stable":
		return KindInodeV1Stable, nil
	case "Inode_v1_unstable":
		return KindInodeV1Unstable, nil
	case "Inode_v2_root":
		return KindInodeV2Root, nil
	case "Inode_v2_nonroot":
		return KindInodeV2NonRoot, nil
	default:
		return 0, fmt.Errorf("pack: unknown kind name %q", name)
	}
}

func (k Kind) valid() bool {
	switch k {
	case KindContents, KindCommitV1, KindCommitV2,
		KindInodeV1Stable, KindInodeV1Unstable,
		KindInodeV2Root, KindInodeV2NonRoot:
		return true
	default:
		return false
	}
}

// isV1 reports whether k's payload has no explicit length header and
// must be size-probed via CBOR self-delimiting decode.
func (k Kind) isV1() bool {
	switch k {
	case KindInodeV1Stable, KindInodeV1Unstable, KindCommitV1:
		return true
	default:
		return false
	}
}

// IsInode reports whether k denotes one of the four inode entry
// kinds the decoder must present uniformly to lib/inode.
func (k Kind) IsInode() bool {
	switch k {
	case KindInodeV1Stable, KindInodeV1Unstable, KindInodeV2Root, KindInodeV2NonRoot:
		return true
	default:
		return false
	}
}

// IsRoot reports whether k denotes an inode entry known to be a
// tree's root. V1 entries predate the root/nonroot distinction and
// report false; callers that need to tell a V1 root from a V1
// nonroot must fall back to other evidence (for example, whether the
// entry is ever referenced as a Tree pointer target).
func (k Kind) IsRoot() bool {
	return k == KindInodeV2Root
}

// IsStable reports whether k denotes an inode entry hashed with the
// stable (flat, seq-derived) hash rather than the structural hash.
// Only V1 kinds carry this distinction explicitly on the kind byte;
// V2 entries always use the structural hash for nonroot nodes and
// either hash for the root, recorded by the caller alongside the
// entry rather than in the kind byte itself.
func (k Kind) IsStable() bool {
	return k == KindInodeV1Stable
}
