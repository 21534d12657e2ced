// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package control

import "fmt"

// UnknownMajorPackVersion reports that the file's version tag is not
// one this package can parse (V3, V4, V5).
type UnknownMajorPackVersion struct {
	Tag string
}

func (e *UnknownMajorPackVersion) Error() string {
	return fmt.Sprintf("control: unknown major pack version tag %q", e.Tag)
}

// CorruptedControlFile reports that the payload's checksum did not
// match, or that a decoded payload's fields are in a combination that
// can never legitimately occur (for example, a V3 status naming a
// generation without carrying a Gced marker). Both cases are treated
// identically: the store must not be opened.
type CorruptedControlFile struct {
	Reason string
}

func (e *CorruptedControlFile) Error() string {
	return fmt.Sprintf("control: corrupted control file: %s", e.Reason)
}
