// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"encoding/json"
	"fmt"
)

// StatusKind tags a V4/V5 payload's garbage-collection status.
type StatusKind int

const (
	StatusNoGcYet StatusKind = iota
	StatusUsedNonMinimalIndexingStrategy
	StatusFromV1V2PostUpgrade
	StatusGced
)

func (k StatusKind) String() string {
	switch k {
	case StatusNoGcYet:
		return "NoGcYet"
	case StatusUsedNonMinimalIndexingStrategy:
		return "UsedNonMinimalIndexingStrategy"
	case StatusFromV1V2PostUpgrade:
		return "FromV1V2PostUpgrade"
	case StatusGced:
		return "Gced"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// MarshalJSON renders a StatusKind by name rather than its underlying
// integer, so a JSON dump of a control file reads as "Gced" instead
// of a bare 3.
func (k StatusKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a StatusKind rendered by name, the inverse of
// MarshalJSON.
func (k *StatusKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []StatusKind{StatusNoGcYet, StatusUsedNonMinimalIndexingStrategy, StatusFromV1V2PostUpgrade, StatusGced} {
		if candidate.String() == name {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status kind %q", name)
}

// GcedDetails carries the fields specific to StatusGced.
type GcedDetails struct {
	SuffixStartOffset    int64 `cbor:"suffix_start_offset" json:"suffix_start_offset"`
	Generation           int64 `cbor:"generation" json:"generation"`
	LatestGCTargetOffset int64 `cbor:"latest_gc_target_offset" json:"latest_gc_target_offset"`
	SuffixDeadBytes      int64 `cbor:"suffix_dead_bytes" json:"suffix_dead_bytes"`
}

// FromV1V2PostUpgradeDetails carries the fields specific to
// StatusFromV1V2PostUpgrade: the entry count the pre-V3 store
// reported at the moment of its one-time upgrade, kept only so a
// dump tool can display where a volume came from.
type FromV1V2PostUpgradeDetails struct {
	EntryCount int64 `cbor:"entry_count" json:"entry_count"`
}

// Status is a V4/V5 payload's garbage-collection status, one of four
// variants realised as a tagged struct (Kind selects which of the two
// optional detail pointers, if any, is populated) rather than four Go
// types, mirroring lib/inode's CompressValue generalisation of a
// small closed variant set.
type Status struct {
	Kind                StatusKind                  `cbor:"kind" json:"kind"`
	Gced                *GcedDetails                `cbor:"gced,omitempty" json:"gced,omitempty"`
	FromV1V2PostUpgrade *FromV1V2PostUpgradeDetails `cbor:"from_v1v2,omitempty" json:"from_v1v2,omitempty"`
}

func (s Status) validate() error {
	switch s.Kind {
	case StatusGced:
		if s.Gced == nil {
			return fmt.Errorf("status Gced has no Gced details")
		}
	case StatusFromV1V2PostUpgrade:
		if s.FromV1V2PostUpgrade == nil {
			return fmt.Errorf("status FromV1V2PostUpgrade has no details")
		}
	case StatusNoGcYet, StatusUsedNonMinimalIndexingStrategy:
		if s.Gced != nil || s.FromV1V2PostUpgrade != nil {
			return fmt.Errorf("status %s carries details it should not", s.Kind)
		}
	default:
		return fmt.Errorf("unknown status kind %d", int(s.Kind))
	}
	return nil
}

// PayloadV5 is the current control file payload. Checksum is Adler-32
// over the CBOR encoding of this struct with Checksum itself zeroed;
// UpgradedFrom is 0 for a payload written natively as V5, or 3/4 when
// this value was produced by upgrading an older file.
type PayloadV5 struct {
	DictEndPoff         int64  `cbor:"dict_end_poff" json:"dict_end_poff"`
	AppendableChunkPoff int64  `cbor:"appendable_chunk_poff" json:"appendable_chunk_poff"`
	Checksum            uint32 `cbor:"checksum" json:"checksum"`
	ChunkStartIdx       int    `cbor:"chunk_start_idx" json:"chunk_start_idx"`
	ChunkNum            int    `cbor:"chunk_num" json:"chunk_num"`
	VolumeNum           int    `cbor:"volume_num" json:"volume_num"`
	Status              Status `cbor:"status" json:"status"`
	UpgradedFrom        int    `cbor:"upgraded_from,omitempty" json:"upgraded_from,omitempty"`
}

func (p PayloadV5) validate() error {
	if p.ChunkNum < 1 {
		return fmt.Errorf("chunk_num %d must be at least 1", p.ChunkNum)
	}
	return p.Status.validate()
}

// PayloadV4 predates the upgraded_from bookkeeping field but is
// otherwise field-for-field identical to PayloadV5.
type PayloadV4 struct {
	DictEndPoff         int64  `cbor:"dict_end_poff"`
	AppendableChunkPoff int64  `cbor:"appendable_chunk_poff"`
	Checksum            uint32 `cbor:"checksum"`
	ChunkStartIdx       int    `cbor:"chunk_start_idx"`
	ChunkNum            int    `cbor:"chunk_num"`
	VolumeNum           int    `cbor:"volume_num"`
	Status              Status `cbor:"status"`
}

func (p PayloadV4) validate() error {
	if p.ChunkNum < 1 {
		return fmt.Errorf("chunk_num %d must be at least 1", p.ChunkNum)
	}
	return p.Status.validate()
}

// upgrade lifts a V4 payload to V5, copying every common field
// verbatim and recording upgraded_from = 4.
func (p PayloadV4) upgrade() PayloadV5 {
	return PayloadV5{
		DictEndPoff:         p.DictEndPoff,
		AppendableChunkPoff: p.AppendableChunkPoff,
		Checksum:            p.Checksum,
		ChunkStartIdx:       p.ChunkStartIdx,
		ChunkNum:            p.ChunkNum,
		VolumeNum:           p.VolumeNum,
		Status:              p.Status,
		UpgradedFrom:        4,
	}
}

// V3StatusKind tags a V3 payload's much narrower status: either no GC
// has ever run, or one has and left behind a chunk-start index.
type V3StatusKind int

const (
	V3NoGcYet V3StatusKind = iota
	V3Gced
)

// PayloadV3 is the pre-multi-chunk control file payload: a single
// pack file's dictionary and suffix boundaries, plus whether GC has
// run.
type PayloadV3 struct {
	DictEndPoff   int64        `cbor:"dict_end_poff"`
	SuffixEndPoff int64        `cbor:"suffix_end_poff"`
	Checksum      uint32       `cbor:"checksum"`
	Status        V3StatusKind `cbor:"status"`
	ChunkStartIdx int          `cbor:"chunk_start_idx,omitempty"` // meaningful only when Status == V3Gced
}

func (p PayloadV3) validate() error {
	switch p.Status {
	case V3NoGcYet:
		if p.ChunkStartIdx != 0 {
			return fmt.Errorf("status From_v3_no_gc_yet carries a nonzero chunk_start_idx")
		}
	case V3Gced:
		// any chunk_start_idx, including 0, is legitimate here
	default:
		return fmt.Errorf("unknown V3 status %d", int(p.Status))
	}
	return nil
}

// upgrade lifts a V3 payload to V5: dict_end_poff copies across,
// appendable_chunk_poff takes over from suffix_end_poff, chunk_num
// becomes 1 (V3 knew only a single chunk), and the status translates
// according to whether GC had run.
func (p PayloadV3) upgrade() PayloadV5 {
	out := PayloadV5{
		DictEndPoff:         p.DictEndPoff,
		AppendableChunkPoff: p.SuffixEndPoff,
		Checksum:            p.Checksum,
		ChunkNum:            1,
		UpgradedFrom:        3,
	}
	switch p.Status {
	case V3Gced:
		out.Status = Status{
			Kind: StatusGced,
			Gced: &GcedDetails{Generation: int64(p.ChunkStartIdx)},
		}
	default:
		out.Status = Status{Kind: StatusNoGcYet}
	}
	return out
}
