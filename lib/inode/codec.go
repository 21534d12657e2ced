// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package inode

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode and decMode use CBOR's Core Deterministic Encoding: map keys
// sorted, shortest-form integers, no indefinite-length items. Two
// equal Go values always produce byte-identical output, which is what
// lets Bin's hash preimage and the Compress on-disk payload use CBOR
// directly rather than a hand-rolled binary layout.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic("inode: building CBOR core deterministic encoding mode: " + err.Error())
	}
	encMode = m

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("inode: building CBOR decoding mode: " + err.Error())
	}
	decMode = dm
}

func marshalCBOR(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshalCBOR(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}
