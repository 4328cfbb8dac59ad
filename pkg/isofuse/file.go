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

package isofuse

import (
	"context"
	"io"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"go.uber.org/zap"
)

// OpenFile has no handle state of its own to allocate: ReadFile below
// reopens the underlying ReaderAt on every call the same way the
// teacher's bazil-based File.Read did with io.NewSectionReader, which
// is cheap since Decoder.OpenFile never touches the disc until Read is
// actually called.
func (fs *FS) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	entry, ok := fs.lookupInode(op.Inode)
	if !ok {
		return fuse.EINVAL
	}
	if entry.IsDir() {
		return fuse.EINVAL
	}
	op.KeepPageCache = true
	return nil
}

func (fs *FS) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	return nil
}

// ReadFile serves one pread. A short read at end-of-file is not an
// error here (io.ReaderAt's contract distinguishes "fewer bytes than
// requested" from "failed"); only an error other than io.EOF is
// propagated.
func (fs *FS) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	entry, ok := fs.lookupInode(op.Inode)
	if !ok {
		return fuse.EINVAL
	}

	r, err := fs.decoder.OpenFile(entry)
	if err != nil {
		fs.logger.Error("read file", zap.Uint64("ino", uint64(op.Inode)), zap.Error(err))
		return fuse.EIO
	}

	n, err := r.ReadAt(op.Dst, op.Offset)
	op.BytesRead = n
	if err == io.EOF {
		return nil
	}
	if err != nil {
		fs.logger.Error("read file", zap.Uint64("ino", uint64(op.Inode)), zap.Error(err))
		return fuse.EIO
	}
	return nil
}

// ReadSymlink serves readlink(2); Decoder.ReadLink already assembled
// every SL continuation piece when the Entry was resolved.
func (fs *FS) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	entry, ok := fs.lookupInode(op.Inode)
	if !ok {
		return fuse.EINVAL
	}
	target, err := fs.decoder.ReadLink(entry)
	if err != nil {
		fs.logger.Error("read symlink", zap.Uint64("ino", uint64(op.Inode)), zap.Error(err))
		return fuse.EINVAL
	}
	op.Target = target
	return nil
}

// StatFS reports a nominally large volume (1<<20 blocks and inodes) with
// no free blocks or inodes: a read-only mount has nothing to offer for
// writing, so the free and available counts are left at zero.
func (fs *FS) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	op.IoSize = iso9660BlockSize
	op.BlockSize = iso9660BlockSize
	op.Blocks = 1 << 20
	op.BlocksFree = 0
	op.BlocksAvailable = 0
	op.Inodes = 1 << 20
	op.InodesFree = 0
	return nil
}

const iso9660BlockSize = 2048
