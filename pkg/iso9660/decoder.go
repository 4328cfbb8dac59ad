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

package iso9660

import (
	"io"
	"os"
	"path"
	"strings"
)

// Decoder is a read-only handle onto one decoded ISO 9660 volume. It
// holds no traversal state between calls — every ReadDir/Lookup re-reads
// the directory extent it needs from BlockSource, per this library's
// no-cross-call-cache design (any caching belongs one layer up, e.g. in
// pkg/isofuse).
type Decoder struct {
	bs  BlockSource
	cfg Config
	h   *hierarchy
}

// Open decodes bs's Volume Descriptor Set and resolves which namespace
// to present, returning a Decoder ready for traversal.
func Open(bs BlockSource, cfg Config) (*Decoder, error) {
	pvd, joliet, err := scanVolumeDescriptors(bs, &cfg)
	if err != nil {
		return nil, err
	}

	h, err := resolveHierarchy(bs, &cfg, pvd, joliet)
	if err != nil {
		return nil, err
	}

	return &Decoder{bs: bs, cfg: cfg, h: h}, nil
}

// Root returns the Entry for the volume's root directory.
func (d *Decoder) Root() (*Entry, error) {
	entry, err := resolveEntry(d.bs, &d.h.rootRecorded, &d.cfg, d.h.namespace, d.h.useRockRidge)
	if err != nil {
		return nil, err
	}
	entry.Name = "/"
	entry.Start = d.h.rootStart
	entry.Metadata.Size = uint64(d.h.rootLength)
	entry.Metadata.Kind = KindDirectoryEntry
	return &entry, nil
}

// ReadDir lists dir's children in on-disc order.
func (d *Decoder) ReadDir(dir *Entry) ([]Entry, error) {
	if dir.Metadata.Kind != KindDirectoryEntry {
		return nil, ErrNotADirectory
	}

	records, err := readDirectoryRecords(d.bs, dir.Start, uint32(dir.Metadata.Size), &d.cfg, d.h.skipBytes)
	if err != nil {
		return nil, err
	}

	return buildEntries(d.bs, records, &d.cfg, d.h.namespace, d.h.useRockRidge)
}

// Lookup resolves one path component within dir.
func (d *Decoder) Lookup(dir *Entry, name string) (*Entry, error) {
	entries, err := d.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Name == name {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// Resolve walks a slash-separated absolute path from the root, following
// each component via Lookup. It does not follow symlinks.
func (d *Decoder) Resolve(p string) (*Entry, error) {
	root, err := d.Root()
	if err != nil {
		return nil, err
	}

	cleaned := strings.Trim(path.Clean("/"+p), "/")
	if cleaned == "" {
		return root, nil
	}

	cur := root
	for _, part := range strings.Split(cleaned, "/") {
		if !cur.IsDir() {
			return nil, ErrNotADirectory
		}
		next, err := d.Lookup(cur, part)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// ReadLink returns a symlink Entry's target.
func (d *Decoder) ReadLink(entry *Entry) (string, error) {
	if !entry.IsSymlink() {
		return "", ErrNotASymlink
	}
	return entry.SymlinkTarget, nil
}

// OpenFile returns a ReaderAt over a regular file's bytes, spanning every
// extent a multi-part file was split across (buildEntries has already
// summed them into one contiguous logical span, which holds because
// ECMA-119 requires a file's extents to be recorded consecutively).
func (d *Decoder) OpenFile(entry *Entry) (io.ReaderAt, error) {
	if entry.Metadata.Kind != KindFileEntry {
		return nil, ErrNotAFile
	}
	return &fileReader{bs: d.bs, start: entry.Start, size: int64(entry.Metadata.Size)}, nil
}

// Metadata returns entry's attribute set. Provided for API symmetry with
// ReadDir/Lookup/ReadLink; Entry.Metadata is already public.
func (d *Decoder) Metadata(entry *Entry) Metadata {
	return entry.Metadata
}

// Walk visits root and every descendant in a depth-first, lexical-ish
// (on-disc) order, following Rock Ridge CL redirections but refusing to
// revisit an extent already visited on the current path — a cyclic or
// self-referential CL chain is reported as RelocationCycle rather than
// recursing forever. walkFn's returned error aborts the walk.
func (d *Decoder) Walk(root *Entry, walkFn func(path string, entry *Entry) error) error {
	return d.walk("/", root, map[LogicalBlockAddress]struct{}{}, walkFn)
}

func (d *Decoder) walk(p string, entry *Entry, visited map[LogicalBlockAddress]struct{}, walkFn func(string, *Entry) error) error {
	if err := walkFn(p, entry); err != nil {
		return err
	}
	if entry.Metadata.Kind != KindDirectoryEntry {
		return nil
	}

	if _, seen := visited[entry.Start]; seen {
		return ErrRelocationCycle
	}
	visited[entry.Start] = struct{}{}
	defer delete(visited, entry.Start)

	children, err := d.ReadDir(entry)
	if err != nil {
		if entry.Metadata.Relocated {
			return wrapErr(KindRelocationDangling, "CL target is not a readable directory", err)
		}
		return err
	}

	for i := range children {
		child := children[i]
		childPath := path.Join(p, child.Name)
		if err := d.walk(childPath, &child, visited, walkFn); err != nil {
			return err
		}
	}
	return nil
}

// fileReader adapts a BlockSource span into an io.ReaderAt, mirroring
// the teacher's use of io.SectionReader over the whole image.
type fileReader struct {
	bs    BlockSource
	start LogicalBlockAddress
	size  int64
}

func (f *fileReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > f.size {
		return 0, os.ErrInvalid
	}
	n := int64(len(p))
	if off+n > f.size {
		n = f.size - off
	}
	if n <= 0 {
		return 0, io.EOF
	}

	buf, err := f.bs.ReadRange(f.start, uint32(off), uint32(n))
	if err != nil {
		return 0, err
	}
	copy(p, buf)

	read := len(buf)
	if int64(read) < int64(len(p)) && off+int64(read) >= f.size {
		return read, io.EOF
	}
	return read, nil
}
