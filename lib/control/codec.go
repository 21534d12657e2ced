// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package control

import "github.com/fxamacker/cbor/v2"

// encMode and decMode mirror lib/inode's CBOR Core Deterministic
// Encoding setup: the checksum-then-fill dance in this package
// depends on encoding the same Go value always producing the same
// bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic("control: building CBOR core deterministic encoding mode: " + err.Error())
	}
	encMode = m

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("control: building CBOR decoding mode: " + err.Error())
	}
	decMode = dm
}

func marshalCBOR(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshalCBOR(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}
