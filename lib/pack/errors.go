// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package pack

import "fmt"

// CorruptedEntry reports that bytes at offset could not be decoded as
// a well-formed pack entry; field names the piece of framing that
// failed (kind, length, payload, checksum).
type CorruptedEntry struct {
	Offset int64
	Field  string
}

func (e *CorruptedEntry) Error() string {
	return fmt.Sprintf("pack: corrupted entry at offset %d: invalid %s", e.Offset, e.Field)
}

// UnknownKind reports a kind byte outside the seven values this
// package knows how to frame.
type UnknownKind struct {
	Kind byte
}

func (e *UnknownKind) Error() string {
	return fmt.Sprintf("pack: unknown entry kind byte 0x%02x", e.Kind)
}
