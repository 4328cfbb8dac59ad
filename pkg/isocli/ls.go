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

package isocli

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

// LsCmd mirrors the teacher's LsCmd, minus the vdisc URL/cache plumbing
// this image-local tool has no use for.
type LsCmd struct {
	Path string `arg:"" help:"Path in the image to list" default:"/"`
	Long bool   `short:"l" help:"Long listing"`
}

func (cmd *LsCmd) Run(g *Globals) error {
	dec, f, err := openDecoder(g.Image, g.config())
	if err != nil {
		zap.L().Fatal("opening image", zap.Error(err))
	}
	defer f.Close()

	entry, err := dec.Resolve(cmd.Path)
	if err != nil {
		zap.L().Fatal("resolve", zap.String("path", cmd.Path), zap.Error(err))
	}

	if !entry.IsDir() {
		cmd.listEntry(entry)
		return nil
	}

	entries, err := dec.ReadDir(entry)
	if err != nil {
		zap.L().Fatal("readdir", zap.String("path", cmd.Path), zap.Error(err))
	}
	for i := range entries {
		cmd.listEntry(&entries[i])
	}
	return nil
}

func (cmd *LsCmd) listEntry(entry *iso9660.Entry) {
	if cmd.Long {
		cmd.listLong(entry)
	} else {
		cmd.listShort(entry)
	}
}

func colorizeName(entry *iso9660.Entry) string {
	switch {
	case entry.IsDir():
		return color.New(color.FgBlue, color.Bold).Sprint(entry.Name)
	case entry.IsSymlink():
		return color.New(color.FgRed, color.Bold).Sprint(entry.Name)
	default:
		return entry.Name
	}
}

func (cmd *LsCmd) listShort(entry *iso9660.Entry) {
	name := colorizeName(entry)
	if entry.IsSymlink() {
		fmt.Printf("%s@\n", name)
		return
	}
	fmt.Println(name)
}

func (cmd *LsCmd) listLong(entry *iso9660.Entry) {
	name := colorizeName(entry)
	mode := entry.Metadata.Mode.String()

	uname := strconv.Itoa(int(entry.Metadata.Uid))
	if u, err := user.LookupId(uname); err == nil {
		uname = u.Username
	}
	gname := strconv.Itoa(int(entry.Metadata.Gid))
	if grp, err := user.LookupGroupId(gname); err == nil {
		gname = grp.Name
	}

	t := entry.Metadata.ModTime
	if entry.IsSymlink() {
		fmt.Printf("%s %s %s %9d %.3s %02d %02d:%02d %s -> %s\n",
			mode, uname, gname, entry.Metadata.Size, t.Month(), t.Day(), t.Hour(), t.Minute(), name, entry.SymlinkTarget)
		return
	}
	fmt.Printf("%s %s %s %9d %.3s %02d %02d:%02d %s\n",
		mode, uname, gname, entry.Metadata.Size, t.Month(), t.Day(), t.Hour(), t.Minute(), name)
}
