// Copyright © 2019 NVIDIA Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package isofuse exposes a decoded ISO 9660 volume as a read-only FUSE
// file system, the way the teacher's isofuse package sits on top of its
// vdisc storage layer: a thin jacobsa/fuse op translator plus a
// ristretto-backed lookup cache. pkg/iso9660.Decoder deliberately caches
// nothing between calls (see its doc comment); this package is "one layer
// up" where that caching belongs.
package isofuse

import (
	"sync"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

var errUnknownInode = errors.New("isofuse: unknown inode")

// Options mirrors the teacher's isofuse.Options: FUSE-level knobs that sit
// above the decoder itself.
type Options struct {
	AllowOtherUsers bool
	ReadAheadKB     int64
	CacheEntries    int64
	Logger          *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ReadAheadKB == 0 {
		o.ReadAheadKB = 64 * 1024
	}
	if o.CacheEntries == 0 {
		o.CacheEntries = 1 << 16
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type entryRecord struct {
	entry  *iso9660.Entry
	refCnt uint64
}

// FS adapts a Decoder into a fuseutil.FileSystem. Every method not
// implemented here falls back to fuseutil.NotImplementedFileSystem's
// ENOSYS, which is correct for a read-only mount: no Mkdir, no Write, no
// SetXattr.
type FS struct {
	fuseutil.NotImplementedFileSystem

	decoder *iso9660.Decoder
	options Options
	logger  *zap.Logger
	cache   FileInfoCache

	mu      sync.RWMutex
	entries map[fuseops.InodeID]*entryRecord
}

// New wraps decoder, resolving its root once so inode 1 (fuseops.RootInodeID)
// is always resolvable without a LookUpInode round trip.
func New(decoder *iso9660.Decoder, options Options) (*FS, error) {
	options = options.withDefaults()

	root, err := decoder.Root()
	if err != nil {
		return nil, errors.Wrap(err, "resolve root")
	}

	cache, err := NewFileInfoCache(options.CacheEntries)
	if err != nil {
		return nil, errors.Wrap(err, "new file info cache")
	}

	fs := &FS{
		decoder: decoder,
		options: options,
		logger:  options.Logger,
		cache:   cache,
		entries: map[fuseops.InodeID]*entryRecord{
			fuseops.RootInodeID: {entry: root, refCnt: 1},
		},
	}
	return fs, nil
}

// Mount starts serving fs at mountpoint and returns once the mount is
// ready; callers Join the returned MountedFileSystem to wait for unmount.
func Mount(mountpoint string, fs *FS) (*fuse.MountedFileSystem, error) {
	cfg := &fuse.MountConfig{
		FSName:                  "iso9660",
		VolumeName:              "ISO9660",
		ReadOnly:                true,
		DisableDefaultPermissions: false,
	}
	if fs.options.AllowOtherUsers {
		cfg.Options = map[string]string{"allow_other": ""}
	}

	server := fuseutil.NewFileSystemServer(fs)
	return fuse.Mount(mountpoint, server, cfg)
}

// inodeFor derives a stable inode number from an Entry's extent location.
// Two lookups of the same directory entry always yield the same Start LBA
// (buildEntries already resolved any Rock Ridge CL indirection), so this
// needs no separate allocation table the way a general-purpose filesystem
// would.
func inodeFor(e *iso9660.Entry) fuseops.InodeID {
	return fuseops.InodeID(e.Start) + 2
}

func (fs *FS) rememberEntry(ino fuseops.InodeID, e *iso9660.Entry) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if rec, ok := fs.entries[ino]; ok {
		rec.entry = e
		return
	}
	fs.entries[ino] = &entryRecord{entry: e}
}

func (fs *FS) lookupInode(ino fuseops.InodeID) (*iso9660.Entry, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	rec, ok := fs.entries[ino]
	if !ok {
		return nil, false
	}
	return rec.entry, true
}
