// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package packstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
)

func TestFileAppendFindRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	h := irminhash.HashContents([]byte("payload"))
	raw := []byte("this is the inode compress payload bytes")
	key, err := f.Append(h, raw)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, ok, err := f.Find(key)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("Find returned %q, want %q", got, raw)
	}
}

func TestFileAppendRootUsesRootKind(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	h := irminhash.HashContents([]byte("root payload"))
	if _, err := f.AppendRoot(h, []byte("root bytes")); err != nil {
		t.Fatal(err)
	}

	entries, err := loadIndexEntries(filepath.Join(dir, indexFileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Kind != pack.KindInodeV2Root {
		t.Errorf("index entries = %+v, want one Inode_v2_root entry", entries)
	}
}

func TestFileReopenPreservesEntries(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	h := irminhash.HashContents([]byte("payload"))
	raw := []byte("survives a reopen")
	key, err := f.Append(h, raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if !reopened.Mem(key) {
		t.Fatal("reopened store should still report the key present")
	}
	got, ok, err := reopened.Find(key)
	if err != nil || !ok {
		t.Fatalf("Find after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("Find after reopen returned %q, want %q", got, raw)
	}
}

func TestFileAppendIsIdempotentForSameHash(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	h := irminhash.HashContents([]byte("payload"))
	key1, err := f.Append(h, []byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	key2, err := f.Append(h, []byte("second, should be ignored"))
	if err != nil {
		t.Fatal(err)
	}
	if !key1.Equal(key2) {
		t.Errorf("keys differ across duplicate appends: %s vs %s", key1, key2)
	}
}

func TestFileWithCompressionRoundTrips(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			dir := t.TempDir()
			f, err := Open(dir, Options{Compression: tag})
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			h := irminhash.HashContents([]byte("payload"))
			raw := bytes.Repeat([]byte("compressible compressible compressible "), 50)
			key, err := f.Append(h, raw)
			if err != nil {
				t.Fatal(err)
			}
			got, ok, err := f.Find(key)
			if err != nil || !ok {
				t.Fatalf("Find: ok=%v err=%v", ok, err)
			}
			if !bytes.Equal(got, raw) {
				t.Error("round trip through compression mismatched")
			}
		})
	}
}

// S6/crash-safety: bytes appended to the pack or index file after the
// last committed control-file update must be discarded on reopen.
func TestFileRecoversFromUncommittedTail(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	h := irminhash.HashContents([]byte("committed"))
	if _, err := f.Append(h, []byte("committed payload")); err != nil {
		t.Fatal(err)
	}
	committedLen := f.writeOffset
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash mid-append: append garbage to the pack file and
	// a dangling index line, without updating the control file.
	packPath := filepath.Join(dir, packFileName)
	pf, err := os.OpenFile(packPath, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	garbage := []byte{byte(pack.KindContents), 0xff, 0xff, 0xff, 0xff}
	if _, err := pf.Write(garbage); err != nil {
		t.Fatal(err)
	}
	pf.Close()

	indexPath := filepath.Join(dir, indexFileName)
	danglingHash := irminhash.HashContents([]byte("uncommitted"))
	danglingLine := FormatIndexLine(IndexEntry{
		Hash: danglingHash, Offset: committedLen, Length: int64(len(garbage)), Kind: pack.KindContents,
	}) + "\n"
	idxf, err := os.OpenFile(indexPath, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idxf.WriteString(danglingLine); err != nil {
		t.Fatal(err)
	}
	idxf.Close()

	reopened, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("reopen after simulated crash: %v", err)
	}
	defer reopened.Close()

	if reopened.writeOffset != committedLen {
		t.Errorf("writeOffset after recovery = %d, want %d (the last committed length)", reopened.writeOffset, committedLen)
	}
	if _, ok := reopened.Index(danglingHash); ok {
		t.Error("recovery should have dropped the uncommitted index entry")
	}
	if !reopened.Mem(irminhash.NewKey(h)) {
		t.Error("recovery should keep the entry committed before the simulated crash")
	}

	info, err := os.Stat(packPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != committedLen {
		t.Errorf("pack file size after recovery = %d, want %d", info.Size(), committedLen)
	}
}

func TestFileBatchDefersControlCommit(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var keys []irminhash.Key
	err = f.Batch(func() error {
		for _, s := range []string{"a", "b", "c"} {
			k, err := f.Append(irminhash.HashContents([]byte(s)), []byte(s))
			if err != nil {
				return err
			}
			keys = append(keys, k)
			if f.ctrl.Payload().AppendableChunkPoff != 0 {
				t.Error("control file should not be updated until the batch completes")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if f.ctrl.Payload().AppendableChunkPoff != f.writeOffset {
		t.Error("control file should reflect all three appends once the batch completes")
	}
	for _, k := range keys {
		if !f.Mem(k) {
			t.Errorf("key %s missing after batch", k)
		}
	}
}
