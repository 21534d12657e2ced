// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"fmt"
	"hash/adler32"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PageSize bounds a control file's total size: writes must fit in one
// filesystem page so a rewrite is atomic.
const PageSize = 4096

const tagSize = 8

// State is a control file's open mode.
type State int

const (
	StateClosed State = iota
	StateRw
	StateRo
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateRw:
		return "Rw"
	case StateRo:
		return "Ro"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// File is an open control file. The zero value is not usable; obtain
// one via Create, OpenRw, or OpenRo.
type File struct {
	mu      sync.Mutex
	path    string
	state   State
	payload PayloadV5
}

// Create writes a brand new V5 control file at path and returns it
// open for read-write.
func Create(path string, payload PayloadV5) (*File, error) {
	if err := payload.validate(); err != nil {
		return nil, fmt.Errorf("control: invalid payload: %w", err)
	}
	record, final, err := encodeV5Record(payload)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(path, record); err != nil {
		return nil, err
	}
	return &File{path: path, state: StateRw, payload: final}, nil
}

// OpenRw opens an existing control file for read-write.
func OpenRw(path string) (*File, error) {
	payload, err := readPayload(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, state: StateRw, payload: payload}, nil
}

// OpenRo opens an existing control file for read-only access.
func OpenRo(path string) (*File, error) {
	payload, err := readPayload(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, state: StateRo, payload: payload}, nil
}

// Payload returns the currently loaded payload.
func (f *File) Payload() PayloadV5 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payload
}

// State reports whether the file is Closed, Rw, or Ro.
func (f *File) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetPayload atomically rewrites the control file with a new payload.
// Only valid in the Rw state.
func (f *File) SetPayload(payload PayloadV5) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRw {
		return fmt.Errorf("control: SetPayload requires Rw state, file is %s", f.state)
	}
	if err := payload.validate(); err != nil {
		return fmt.Errorf("control: invalid payload: %w", err)
	}
	record, final, err := encodeV5Record(payload)
	if err != nil {
		return err
	}
	if err := writeAtomic(f.path, record); err != nil {
		return err
	}
	f.payload = final
	return nil
}

// Reload re-reads the control file from disk, replacing the in-memory
// payload. Only valid in the Ro state — an Rw handle is the sole
// writer and never needs to observe someone else's write.
func (f *File) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRo {
		return fmt.Errorf("control: Reload requires Ro state, file is %s", f.state)
	}
	payload, err := readPayload(f.path)
	if err != nil {
		return err
	}
	f.payload = payload
	return nil
}

// Close transitions the file to Closed. Subsequent SetPayload or
// Reload calls fail.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateClosed
	return nil
}

func readPayload(path string) (PayloadV5, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PayloadV5{}, fmt.Errorf("control: reading %s: %w", path, err)
	}
	return decodeRecord(raw)
}

// decodeRecord parses a full control file record: version tag plus
// payload, validating the checksum and upgrading a V3 or V4 payload
// to the V5 shape every caller works with.
func decodeRecord(raw []byte) (PayloadV5, error) {
	if len(raw) < tagSize {
		return PayloadV5{}, &CorruptedControlFile{Reason: "file shorter than the version tag"}
	}
	tag := trimTag(raw[:tagSize])
	body := raw[tagSize:]

	switch tag {
	case "V5":
		var p PayloadV5
		if err := unmarshalCBOR(body, &p); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: "malformed V5 payload: " + err.Error()}
		}
		if err := verifyChecksum(p.Checksum, withChecksumV5(p, 0)); err != nil {
			return PayloadV5{}, err
		}
		if err := p.validate(); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: err.Error()}
		}
		return p, nil

	case "V4":
		var p PayloadV4
		if err := unmarshalCBOR(body, &p); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: "malformed V4 payload: " + err.Error()}
		}
		zeroed := p
		zeroed.Checksum = 0
		if err := verifyChecksum(p.Checksum, zeroed); err != nil {
			return PayloadV5{}, err
		}
		if err := p.validate(); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: err.Error()}
		}
		return p.upgrade(), nil

	case "V3":
		var p PayloadV3
		if err := unmarshalCBOR(body, &p); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: "malformed V3 payload: " + err.Error()}
		}
		zeroed := p
		zeroed.Checksum = 0
		if err := verifyChecksum(p.Checksum, zeroed); err != nil {
			return PayloadV5{}, err
		}
		if err := p.validate(); err != nil {
			return PayloadV5{}, &CorruptedControlFile{Reason: err.Error()}
		}
		return p.upgrade(), nil

	default:
		return PayloadV5{}, &UnknownMajorPackVersion{Tag: tag}
	}
}

func withChecksumV5(p PayloadV5, checksum uint32) PayloadV5 {
	p.Checksum = checksum
	return p
}

func verifyChecksum(want uint32, zeroedPayload interface{}) error {
	body, err := marshalCBOR(zeroedPayload)
	if err != nil {
		return &CorruptedControlFile{Reason: "re-encoding payload for checksum: " + err.Error()}
	}
	if got := adler32.Checksum(body); got != want {
		return &CorruptedControlFile{Reason: "checksum mismatch"}
	}
	return nil
}

// encodeV5Record produces the on-disk bytes for payload, filling in
// its checksum, and returns both the bytes and the payload value as
// actually written (checksum populated).
func encodeV5Record(payload PayloadV5) ([]byte, PayloadV5, error) {
	zeroed := withChecksumV5(payload, 0)
	zeroedBody, err := marshalCBOR(zeroed)
	if err != nil {
		return nil, PayloadV5{}, fmt.Errorf("control: encoding payload: %w", err)
	}
	final := withChecksumV5(payload, adler32.Checksum(zeroedBody))
	finalBody, err := marshalCBOR(final)
	if err != nil {
		return nil, PayloadV5{}, fmt.Errorf("control: encoding payload: %w", err)
	}

	record := make([]byte, 0, tagSize+len(finalBody))
	record = append(record, tagBytes("V5")...)
	record = append(record, finalBody...)
	if len(record) > PageSize {
		return nil, PayloadV5{}, fmt.Errorf("control: encoded control file is %d bytes, exceeds one page (%d)", len(record), PageSize)
	}
	return record, final, nil
}

func tagBytes(tag string) []byte {
	b := make([]byte, tagSize)
	copy(b, tag)
	return b
}

func trimTag(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// writeAtomic writes data to a temp file in the same directory as
// path, then renames it into place, so a reader never observes a
// partially written control file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("control: creating temp control file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("control: writing temp control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("control: closing temp control file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("control: renaming control file into place: %w", err)
	}
	success = true
	return nil
}
