// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/pack"
	"github.com/2lambda123/irmin/lib/packstore"
)

func writeFixtureIndex(t *testing.T, path string) []packstore.IndexEntry {
	t.Helper()
	entries := []packstore.IndexEntry{
		{Hash: irminhash.HashContents([]byte("a")), Offset: 0, Length: 12, Kind: pack.KindContents},
		{Hash: irminhash.HashContents([]byte("b")), Offset: 12, Length: 34, Kind: pack.KindInodeV2Root},
	}
	var content string
	for _, e := range entries {
		content += packstore.FormatIndexLine(e) + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestReadIndexFileParsesEveryLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.index")
	want := writeFixtureIndex(t, path)

	got, err := readIndexFile(path)
	if err != nil {
		t.Fatalf("readIndexFile: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadIndexFileSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.index")
	entries := writeFixtureIndex(t, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, append(data, '\n', '\n'), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readIndexFile(path)
	if err != nil {
		t.Fatalf("readIndexFile: %v", err)
	}
	if len(got) != len(entries) {
		t.Errorf("got %d entries, want %d (blank lines should be skipped)", len(got), len(entries))
	}
}

func TestReadIndexFileReportsLineNumberOnBadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.index")
	writeFixtureIndex(t, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, append(data, []byte("garbage line\n")...), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = readIndexFile(path)
	if err == nil {
		t.Fatal("expected an error for the malformed third line")
	}
}

func TestWriteIndexFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "store.index")
	entries := writeFixtureIndex(t, srcPath)

	dstPath := filepath.Join(dir, "rewritten.index")
	if err := writeIndexFile(dstPath, entries); err != nil {
		t.Fatalf("writeIndexFile: %v", err)
	}

	got, err := readIndexFile(dstPath)
	if err != nil {
		t.Fatalf("reading rewritten file: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestRunRewritesToWriteFlagTarget(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "store.index")
	writeFixtureIndex(t, srcPath)
	dstPath := filepath.Join(dir, "out.index")

	if err := run([]string{"--write", dstPath, srcPath}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(dstPath); err != nil {
		t.Errorf("expected %s to be created: %v", dstPath, err)
	}
}

func TestRunRequiresExactlyOnePositionalArg(t *testing.T) {
	if err := run(nil); err == nil {
		t.Error("expected an error with no positional argument")
	}
	if err := run([]string{"a", "b"}); err == nil {
		t.Error("expected an error with two positional arguments")
	}
}
