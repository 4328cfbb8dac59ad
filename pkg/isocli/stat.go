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
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// StatCmd prints an Entry's Metadata as JSON, the way the teacher's
// InspectCmd prints the decoded PrimaryVolumeDescriptor as JSON.
type StatCmd struct {
	Path string `arg:"" help:"Path to stat"`
}

type statOutput struct {
	Path          string `json:"path"`
	Kind          string `json:"kind"`
	Size          uint64 `json:"size"`
	Mode          string `json:"mode"`
	Nlink         uint32 `json:"nlink"`
	Uid           uint32 `json:"uid"`
	Gid           uint32 `json:"gid"`
	ModTime       string `json:"modTime"`
	SymlinkTarget string `json:"symlinkTarget,omitempty"`
	Relocated     bool   `json:"relocated"`
}

func (cmd *StatCmd) Run(g *Globals) error {
	dec, f, err := openDecoder(g.Image, g.config())
	if err != nil {
		zap.L().Fatal("opening image", zap.Error(err))
	}
	defer f.Close()

	entry, err := dec.Resolve(cmd.Path)
	if err != nil {
		zap.L().Fatal("resolve", zap.String("path", cmd.Path), zap.Error(err))
	}

	kind := "file"
	if entry.IsDir() {
		kind = "directory"
	} else if entry.IsSymlink() {
		kind = "symlink"
	}

	out := statOutput{
		Path:          cmd.Path,
		Kind:          kind,
		Size:          entry.Metadata.Size,
		Mode:          entry.Metadata.Mode.String(),
		Nlink:         entry.Metadata.Nlink,
		Uid:           entry.Metadata.Uid,
		Gid:           entry.Metadata.Gid,
		ModTime:       entry.Metadata.ModTime.Format("2006-01-02T15:04:05Z"),
		SymlinkTarget: entry.SymlinkTarget,
		Relocated:     entry.Metadata.Relocated,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		zap.L().Fatal("encode", zap.Error(err))
	}
	return nil
}
