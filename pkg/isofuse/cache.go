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
	"hash/fnv"

	"github.com/dgraph-io/ristretto"
	"github.com/jacobsa/fuse/fuseops"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

// FileInfoCache memoizes (parent inode, child name) -> *iso9660.Entry,
// the same shape as the teacher's cache.go but keyed against this
// library's Entry instead of vdisc's FileInfo.
type FileInfoCache interface {
	Put(parent fuseops.InodeID, name string, entry *iso9660.Entry)
	Get(parent fuseops.InodeID, name string) (*iso9660.Entry, bool)
}

// NewFileInfoCache builds a ristretto cache sized for roughly maxEntries
// resident directory entries, mirroring the teacher's NumCounters/MaxCost
// sizing ratio (10 counters and ~176 bytes of cost per expected entry).
func NewFileInfoCache(maxEntries int64) (FileInfoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries * 176,
		BufferItems: 64,
		KeyToHash:   finfoHash,
		Cost:        finfoCost,
	})
	if err != nil {
		return nil, err
	}
	return &finfoCache{c: c}, nil
}

type finfoKey struct {
	parent fuseops.InodeID
	name   string
}

type finfoCache struct {
	c *ristretto.Cache
}

func (fc *finfoCache) Put(parent fuseops.InodeID, name string, entry *iso9660.Entry) {
	fc.c.Set(finfoKey{parent: parent, name: name}, entry, 0)
}

func (fc *finfoCache) Get(parent fuseops.InodeID, name string) (*iso9660.Entry, bool) {
	v, ok := fc.c.Get(finfoKey{parent: parent, name: name})
	if !ok {
		return nil, false
	}
	entry, ok := v.(*iso9660.Entry)
	return entry, ok
}

// finfoHash lets ristretto hash finfoKey without reflection, matching
// the teacher's own KeyToHash override.
func finfoHash(key interface{}) (uint64, uint64) {
	k := key.(finfoKey)
	h := fnv.New64a()
	var buf [8]byte
	buf[0] = byte(k.parent)
	buf[1] = byte(k.parent >> 8)
	buf[2] = byte(k.parent >> 16)
	buf[3] = byte(k.parent >> 24)
	buf[4] = byte(k.parent >> 32)
	buf[5] = byte(k.parent >> 40)
	buf[6] = byte(k.parent >> 48)
	buf[7] = byte(k.parent >> 56)
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(k.name))
	return h.Sum64(), 0
}

func finfoCost(value interface{}) int64 {
	entry, ok := value.(*iso9660.Entry)
	if !ok {
		return 1
	}
	return int64(len(entry.Name) + len(entry.SymlinkTarget) + 96)
}
