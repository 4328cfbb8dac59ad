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

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

// TreeCmd mirrors the teacher's TreeCmd box-drawing recursive listing.
type TreeCmd struct {
	Path string `arg:"" help:"Path in the image to print" default:"/"`
}

func (cmd *TreeCmd) Run(g *Globals) error {
	dec, f, err := openDecoder(g.Image, g.config())
	if err != nil {
		zap.L().Fatal("opening image", zap.Error(err))
	}
	defer f.Close()

	root, err := dec.Resolve(cmd.Path)
	if err != nil {
		zap.L().Fatal("resolve", zap.String("path", cmd.Path), zap.Error(err))
	}

	fmt.Println(cmd.Path)
	printTree(dec, root, nil)
	return nil
}

func printTree(dec *iso9660.Decoder, dir *iso9660.Entry, depth []bool) {
	entries, err := dec.ReadDir(dir)
	if err != nil {
		zap.L().Fatal("readdir", zap.Error(err))
	}

	var maxSizeLen int
	for _, e := range entries {
		l := len(fmt.Sprintf("%d", e.Metadata.Size))
		if l > maxSizeLen {
			maxSizeLen = l
		}
	}

	for i := range entries {
		e := &entries[i]

		var prefix string
		for _, final := range depth {
			if final {
				prefix += "    "
			} else {
				prefix += "│   "
			}
		}
		final := i == len(entries)-1
		if final {
			prefix += "└── "
		} else {
			prefix += "├── "
		}

		fmt.Print(prefix)
		fmt.Printf("[%*d] ", maxSizeLen, e.Metadata.Size)

		switch {
		case e.IsDir():
			color.New(color.FgBlue, color.Bold).Println(e.Name)
		case e.IsSymlink():
			color.New(color.FgRed, color.Bold).Print(e.Name)
			fmt.Println(" → " + e.SymlinkTarget)
		default:
			color.New(color.FgGreen, color.Bold).Println(e.Name)
		}

		if e.IsDir() {
			printTree(dec, e, append(depth, final))
		}
	}
}
