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
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"go.uber.org/zap"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

const attributesExpiration = time.Hour

func toInodeAttributes(e *iso9660.Entry) fuseops.InodeAttributes {
	m := e.Metadata
	nlink := m.Nlink
	if nlink == 0 {
		nlink = 1
	}

	atime := m.AccessTime
	if atime.IsZero() {
		atime = m.ModTime
	}
	ctime := m.ChangeTime
	if ctime.IsZero() {
		ctime = m.ModTime
	}

	return fuseops.InodeAttributes{
		Size:  m.Size,
		Nlink: nlink,
		Mode:  m.Mode,
		Atime: atime,
		Mtime: m.ModTime,
		Ctime: ctime,
		Uid:   m.Uid,
		Gid:   m.Gid,
	}
}

// GetInodeAttributes serves FUSE's GETATTR, reading straight from the
// entry this inode was resolved from; nothing here is re-decoded.
func (fs *FS) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	entry, ok := fs.lookupInode(op.Inode)
	if !ok {
		fs.logger.Error("get inode attributes", zap.Uint64("ino", uint64(op.Inode)), zap.Error(errUnknownInode))
		return fuse.EINVAL
	}
	op.Attributes = toInodeAttributes(entry)
	op.AttributesExpiration = time.Now().Add(attributesExpiration)
	return nil
}

func (fs *FS) childInodeEntry(ino fuseops.InodeID, entry *iso9660.Entry) fuseops.ChildInodeEntry {
	return fuseops.ChildInodeEntry{
		Child:                ino,
		Attributes:           toInodeAttributes(entry),
		AttributesExpiration: time.Now().Add(attributesExpiration),
		EntryExpiration:      time.Now().Add(24 * time.Hour),
	}
}

// LookUpInode resolves one (parent, name) pair, consulting the
// ristretto-backed FileInfoCache before falling back to a fresh
// Decoder.ReadDir scan, matching the teacher's dir.go.
func (fs *FS) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	parent, ok := fs.lookupInode(op.Parent)
	if !ok {
		fs.logger.Info("lookup inode", zap.Uint64("parent", uint64(op.Parent)), zap.String("name", op.Name), zap.Error(errUnknownInode))
		return fuse.EINVAL
	}

	if entry, ok := fs.cache.Get(op.Parent, op.Name); ok {
		ino := inodeFor(entry)
		fs.rememberEntry(ino, entry)
		op.Entry = fs.childInodeEntry(ino, entry)
		return nil
	}

	entries, err := fs.decoder.ReadDir(parent)
	if err != nil {
		fs.logger.Error("lookup inode", zap.Uint64("parent", uint64(op.Parent)), zap.String("name", op.Name), zap.Error(err))
		return fuse.EIO
	}

	for i := range entries {
		child := &entries[i]
		ino := inodeFor(child)
		fs.cache.Put(op.Parent, child.Name, child)
		if child.Name != op.Name {
			continue
		}
		fs.rememberEntry(ino, child)
		op.Entry = fs.childInodeEntry(ino, child)
		return nil
	}

	return fuse.ENOENT
}

// ForgetInode drops the kernel's last reference to an inode; entry 1
// (the root) is always kept resident, matching the teacher's special
// case for it.
func (fs *FS) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	if op.Inode == fuseops.RootInodeID {
		return nil
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec, ok := fs.entries[op.Inode]
	if !ok {
		fs.logger.Error("forget inode", zap.Uint64("ino", uint64(op.Inode)), zap.Error(errUnknownInode))
		return fuse.EINVAL
	}
	if rec.refCnt <= op.N {
		delete(fs.entries, op.Inode)
		return nil
	}
	rec.refCnt -= op.N
	return nil
}

// OpenDir has nothing to validate beyond "is this inode a directory";
// ReadDir below re-reads the extent fresh every call, so no handle state
// is kept.
func (fs *FS) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	entry, ok := fs.lookupInode(op.Inode)
	if !ok {
		return fuse.EINVAL
	}
	if !entry.IsDir() {
		return fuse.EINVAL
	}
	return nil
}

func (fs *FS) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

// ReadDir serves one page of getdents output. op.Offset indexes into the
// listing (not a byte offset), matching the contract fuseutil.WriteDirent
// expects of its caller: re-derive the listing each call and slice from
// Offset rather than trying to resume a cursor.
func (fs *FS) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	dir, ok := fs.lookupInode(op.Inode)
	if !ok {
		fs.logger.Info("readdir", zap.Uint64("ino", uint64(op.Inode)), zap.Error(errUnknownInode))
		return fuse.EINVAL
	}

	entries, err := fs.decoder.ReadDir(dir)
	if err != nil {
		fs.logger.Error("readdir", zap.Uint64("ino", uint64(op.Inode)), zap.Error(err))
		return fuse.EIO
	}

	if int(op.Offset) > len(entries) {
		return nil
	}

	for i := int(op.Offset); i < len(entries); i++ {
		child := &entries[i]
		fs.cache.Put(op.Inode, child.Name, child)

		dirent := fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  inodeFor(child),
			Name:   child.Name,
			Type:   direntType(child),
		}
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], dirent)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
	return nil
}

func direntType(e *iso9660.Entry) fuseutil.DirentType {
	switch {
	case e.IsDir():
		return fuseutil.DT_Directory
	case e.IsSymlink():
		return fuseutil.DT_Link
	default:
		return fuseutil.DT_File
	}
}
