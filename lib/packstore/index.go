// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
)

// IndexEntry is one line of the pack store's textual index form: a
// hash's location and kind within a pack file.
type IndexEntry struct {
	Hash   irminhash.Hash
	Offset int64
	Length int64
	Kind   pack.Kind
}

// FormatIndexLine renders e as "<hash> <offset> <length> <kind>", the
// form irmin-ppidx prints and reads back.
func FormatIndexLine(e IndexEntry) string {
	return fmt.Sprintf("%s %d %d %s", irminhash.Format(e.Hash), e.Offset, e.Length, e.Kind)
}

// ParseIndexLine parses one line produced by FormatIndexLine.
func ParseIndexLine(line string) (IndexEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return IndexEntry{}, fmt.Errorf("packstore: index line has %d fields, want 4: %q", len(fields), line)
	}

	h, err := irminhash.Parse(fields[0])
	if err != nil {
		return IndexEntry{}, fmt.Errorf("packstore: parsing index hash: %w", err)
	}
	offset, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("packstore: parsing index offset: %w", err)
	}
	length, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("packstore: parsing index length: %w", err)
	}
	kind, err := pack.ParseKind(fields[3])
	if err != nil {
		return IndexEntry{}, fmt.Errorf("packstore: parsing index kind: %w", err)
	}

	return IndexEntry{Hash: h, Offset: offset, Length: length, Kind: kind}, nil
}
