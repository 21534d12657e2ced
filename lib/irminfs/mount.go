// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package irminfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/2lambda123/irmin/lib/inode"
	"github.com/2lambda123/irmin/lib/irminhash"
	"github.com/2lambda123/irmin/lib/packstore"
	"github.com/2lambda123/irmin/lib/step"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Store provides access to the pack entries that make up the
	// tree, and every subtree a Node value points at.
	Store packstore.Adapter

	// Config is the store's tunables (Entries, StableHash, Ordering).
	// It must match what the tree was saved with.
	Config inode.Config

	// RootKey is the key of the root inode to mount.
	RootKey irminhash.Key

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, Mount uses a text
	// logger that writes Error-level messages to stderr.
	Logger *slog.Logger
}

// Mount mounts the tree named by options.RootKey at options.Mountpoint.
// The caller must call Unmount on the returned Server when done. The
// mountpoint directory is created if it does not exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("irminfs: mountpoint is required")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("irminfs: store is required")
	}
	if err := options.Config.Validate(); err != nil {
		return nil, fmt.Errorf("irminfs: %w", err)
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("irminfs: creating mountpoint %s: %w", options.Mountpoint, err)
	}

	resolver := newStoreResolver(options.Store, options.Config)
	root, err := resolver.findRoot(options.RootKey)
	if err != nil {
		return nil, fmt.Errorf("irminfs: resolving root %s: %w", options.RootKey, err)
	}

	rootDir := &dirNode{options: &options, resolver: resolver, tree: root}

	entryTimeout := time.Second
	attrTimeout := time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, rootDir, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "irmin",
			Name:       "irmin",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("irminfs: mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("irmin tree mounted", "mountpoint", options.Mountpoint, "root", options.RootKey)
	return server, nil
}

// dirNode represents one Node value's subtree: a directory whose
// entries are the bindings of tree's flat map.
type dirNode struct {
	gofuse.Inode
	options  *Options
	resolver *storeResolver
	tree     *inode.Inode
}

var _ gofuse.InodeEmbedder = (*dirNode)(nil)
var _ gofuse.NodeLookuper = (*dirNode)(nil)
var _ gofuse.NodeReaddirer = (*dirNode)(nil)

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	value, ok, err := d.tree.Find(step.Step(name))
	if err != nil {
		d.options.Logger.Error("find failed", "name", name, "error", err)
		return nil, syscall.EIO
	}
	if !ok {
		return nil, syscall.ENOENT
	}

	if value.Kind() == inode.ValueKindNode {
		child, err := d.resolver.findRoot(value.Key())
		if err != nil {
			d.options.Logger.Error("resolving subtree failed", "name", name, "error", err)
			return nil, syscall.EIO
		}
		node := &dirNode{options: d.options, resolver: d.resolver, tree: child}
		out.Mode = syscall.S_IFDIR | 0o555
		return d.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	metadata, _ := value.Metadata()
	node := &fileNode{options: d.options, key: value.Key(), metadata: metadata}
	out.Mode = fileMode(metadata)
	return d.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG}), 0
}

func (d *dirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	bindings, err := d.tree.Seq(0, maxSeqLength, true)
	if err != nil {
		d.options.Logger.Error("seq failed", "error", err)
		return nil, syscall.EIO
	}

	entries := make([]fuse.DirEntry, 0, len(bindings))
	for _, b := range bindings {
		mode := uint32(syscall.S_IFREG)
		if b.Value.Kind() == inode.ValueKindNode {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: string(b.Step), Mode: mode})
	}
	return &sliceDirStream{entries: entries}, 0
}

// sliceDirStream implements fs.DirStream over a fixed slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}

// maxSeqLength bounds a single Readdir's Seq call. Trees are Partial,
// so this triggers exactly the child resolution a real directory
// listing needs and no more.
const maxSeqLength = 1 << 30

// fileNode represents a Contents value as a regular file. Content is
// fetched from the store and cached on first read.
type fileNode struct {
	gofuse.Inode
	options  *Options
	key      irminhash.Key
	metadata inode.Metadata

	mu      sync.Mutex
	content []byte
	loaded  bool
}

var _ gofuse.InodeEmbedder = (*fileNode)(nil)
var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)
var _ gofuse.NodeReader = (*fileNode)(nil)

func (f *fileNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if err := f.ensureLoaded(); err != nil {
		f.options.Logger.Error("stat failed", "key", f.key, "error", err)
		return syscall.EIO
	}
	out.Mode = fileMode(f.metadata)
	out.Size = uint64(len(f.content))
	return 0
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	if err := f.ensureLoaded(); err != nil {
		f.options.Logger.Error("open failed", "key", f.key, "error", err)
		return nil, 0, syscall.EIO
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *fileNode) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := f.ensureLoaded(); err != nil {
		return nil, syscall.EIO
	}
	if off < 0 || off >= int64(len(f.content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(f.content)) {
		end = int64(len(f.content))
	}
	return fuse.ReadResultData(f.content[off:end]), 0
}

func (f *fileNode) ensureLoaded() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return nil
	}
	raw, ok, err := f.options.Store.Find(f.key)
	if err != nil {
		return fmt.Errorf("irminfs: reading contents %s: %w", f.key, err)
	}
	if !ok {
		return fmt.Errorf("irminfs: no contents entry for key %s", f.key)
	}
	f.content = raw
	f.loaded = true
	return nil
}

func fileMode(m inode.Metadata) uint32 {
	perm := m.Mode & 0o777
	if perm == 0 {
		perm = 0o444
	}
	return syscall.S_IFREG | perm
}
