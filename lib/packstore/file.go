// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2lambda123/irmin/lib/control"
	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
)

const (
	controlFileName = "store.control"
	packFileName    = "store.pack"
	indexFileName   = "store.index"
)

// Options configures a file-backed store.
type Options struct {
	// Compression selects the algorithm applied to every payload
	// before framing. CompressionNone (the zero value) disables it.
	Compression CompressionTag
	// Logger receives a Debug event for each append and a Warn when
	// Open drops index entries written after the last committed
	// append. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// File is a file-backed, append-only Adapter. It keeps two files
// alongside a lib/control control file: store.pack (framed binary
// entries) and store.index (a textual index form, append-only, one
// line per entry). On Open, any bytes beyond the
// control file's committed AppendableChunkPoff are treated as the
// tail of a crashed write and discarded from both files, so a reader
// never observes a torn entry.
type File struct {
	mu sync.Mutex

	packFile  *os.File
	indexFile *os.File
	ctrl      *control.File

	compression CompressionTag
	logger      *slog.Logger

	byHash      map[irminhash.Hash]irminhash.Key
	writeOffset int64

	inBatch    bool
	batchDirty bool
}

// Open opens (creating if necessary) a file-backed store rooted at
// dir.
func Open(dir string, opts Options) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("packstore: creating store directory %s: %w", dir, err)
	}

	controlPath := filepath.Join(dir, controlFileName)
	packPath := filepath.Join(dir, packFileName)
	indexPath := filepath.Join(dir, indexFileName)

	ctrl, err := openOrCreateControl(controlPath)
	if err != nil {
		return nil, err
	}
	validLen := ctrl.Payload().AppendableChunkPoff

	packFile, err := os.OpenFile(packPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("packstore: opening pack file: %w", err)
	}
	if err := packFile.Truncate(validLen); err != nil {
		packFile.Close()
		return nil, fmt.Errorf("packstore: truncating pack file to committed length: %w", err)
	}

	entries, err := loadIndexEntries(indexPath)
	if err != nil {
		packFile.Close()
		return nil, err
	}
	logger := opts.logger()
	kept := make([]IndexEntry, 0, len(entries))
	byHash := make(map[irminhash.Hash]irminhash.Key, len(entries))
	for _, e := range entries {
		if e.Offset+e.Length > validLen {
			continue
		}
		kept = append(kept, e)
		byHash[e.Hash] = irminhash.NewKeyWithHint(e.Hash, e.Offset, e.Length)
	}
	if len(kept) != len(entries) {
		logger.Warn("packstore: dropped index entries written after the last committed append",
			"dropped", len(entries)-len(kept))
	}
	if err := writeIndexFileAtomic(indexPath, kept); err != nil {
		packFile.Close()
		return nil, err
	}

	indexFile, err := os.OpenFile(indexPath, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		packFile.Close()
		return nil, fmt.Errorf("packstore: opening index file: %w", err)
	}

	return &File{
		packFile:    packFile,
		indexFile:   indexFile,
		ctrl:        ctrl,
		compression: opts.Compression,
		logger:      logger,
		byHash:      byHash,
		writeOffset: validLen,
	}, nil
}

func openOrCreateControl(path string) (*control.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return control.Create(path, control.PayloadV5{
			ChunkNum: 1,
			Status:   control.Status{Kind: control.StatusNoGcYet},
		})
	}
	return control.OpenRw(path)
}

func (f *File) Mem(k irminhash.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byHash[k.ToHash()]
	return ok
}

func (f *File) Index(h irminhash.Hash) (irminhash.Key, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.byHash[h]
	return k, ok
}

func (f *File) Find(k irminhash.Key) ([]byte, bool, error) {
	f.mu.Lock()
	key, ok := f.byHash[k.ToHash()]
	packFile := f.packFile
	f.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	offset, length, hasHint := key.Hint()
	if !hasHint {
		return nil, false, fmt.Errorf("packstore: internal key %s has no offset hint", key)
	}
	buf := make([]byte, length)
	if _, err := packFile.ReadAt(buf, offset); err != nil {
		return nil, false, fmt.Errorf("packstore: reading entry at offset %d: %w", offset, err)
	}
	entry, _, err := pack.Decode(buf, offset)
	if err != nil {
		return nil, false, err
	}
	raw, err := decompressPayload(entry.Payload)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (f *File) Append(h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	return f.AppendKind(pack.KindInodeV2NonRoot, h, raw)
}

func (f *File) AppendRoot(h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	return f.AppendKind(pack.KindInodeV2Root, h, raw)
}

func (f *File) AppendKind(kind pack.Kind, h irminhash.Hash, raw []byte) (irminhash.Key, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.byHash[h]; ok {
		return existing, nil
	}

	compressed, err := compressPayload(raw, f.compression)
	if err != nil {
		return irminhash.Key{}, fmt.Errorf("packstore: compressing payload: %w", err)
	}
	framed, err := pack.Encode(kind, compressed)
	if err != nil {
		return irminhash.Key{}, fmt.Errorf("packstore: framing entry: %w", err)
	}

	offset := f.writeOffset
	if _, err := f.packFile.WriteAt(framed, offset); err != nil {
		return irminhash.Key{}, fmt.Errorf("packstore: writing entry at offset %d: %w", offset, err)
	}
	entry := IndexEntry{Hash: h, Offset: offset, Length: int64(len(framed)), Kind: kind}
	if _, err := f.indexFile.WriteString(FormatIndexLine(entry) + "\n"); err != nil {
		return irminhash.Key{}, fmt.Errorf("packstore: writing index line: %w", err)
	}

	f.writeOffset = offset + int64(len(framed))
	key := irminhash.NewKeyWithHint(h, offset, int64(len(framed)))
	f.byHash[h] = key

	f.logger.Debug("packstore: appended entry", "hash", h.String(), "kind", kind.String(), "offset", offset, "length", len(framed))

	if f.inBatch {
		f.batchDirty = true
		return key, nil
	}
	if err := f.commitLocked(); err != nil {
		return irminhash.Key{}, err
	}
	return key, nil
}

// Batch defers the control-file durability update until fn returns,
// so N appends made from within fn cost one control rewrite instead
// of N.
func (f *File) Batch(fn func() error) error {
	f.mu.Lock()
	f.inBatch = true
	f.mu.Unlock()

	fnErr := fn()

	f.mu.Lock()
	f.inBatch = false
	dirty := f.batchDirty
	f.batchDirty = false
	var commitErr error
	if dirty {
		commitErr = f.commitLocked()
	}
	f.mu.Unlock()

	if fnErr != nil {
		return fnErr
	}
	return commitErr
}

// commitLocked fsyncs the pack and index files and records the new
// committed length in the control file. Callers must hold f.mu.
func (f *File) commitLocked() error {
	if err := f.packFile.Sync(); err != nil {
		return fmt.Errorf("packstore: syncing pack file: %w", err)
	}
	if err := f.indexFile.Sync(); err != nil {
		return fmt.Errorf("packstore: syncing index file: %w", err)
	}
	updated := f.ctrl.Payload()
	updated.AppendableChunkPoff = f.writeOffset
	if err := f.ctrl.SetPayload(updated); err != nil {
		return fmt.Errorf("packstore: updating control file: %w", err)
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(f.ctrl.Close())
	record(f.packFile.Close())
	record(f.indexFile.Close())
	return firstErr
}

func loadIndexEntries(path string) ([]IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("packstore: reading index file: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]IndexEntry, 0, len(lines))
	for _, line := range lines {
		e, err := ParseIndexLine(line)
		if err != nil {
			return nil, fmt.Errorf("packstore: parsing index file: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeIndexFileAtomic(path string, entries []IndexEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(FormatIndexLine(e))
		b.WriteByte('\n')
	}
	return writeAtomicFile(path, []byte(b.String()))
}

// writeAtomicFile writes data to a temp file in the same directory as
// path, then renames it into place: the same crash-safe idiom
// lib/control's writeAtomic uses for control files.
func writeAtomicFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("packstore: creating temp file for %s: %w", path, err)
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
		return fmt.Errorf("packstore: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("packstore: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("packstore: renaming temp file into place: %w", err)
	}
	success = true
	return nil
}
