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
	"io"
	"os"

	"go.uber.org/zap"
)

// CatCmd streams one file's bytes to stdout, the read-only analogue of
// the teacher's CpCmd (which copies to a local path instead).
type CatCmd struct {
	Path string `arg:"" help:"Path of the file to print"`
}

func (cmd *CatCmd) Run(g *Globals) error {
	dec, f, err := openDecoder(g.Image, g.config())
	if err != nil {
		zap.L().Fatal("opening image", zap.Error(err))
	}
	defer f.Close()

	entry, err := dec.Resolve(cmd.Path)
	if err != nil {
		zap.L().Fatal("resolve", zap.String("path", cmd.Path), zap.Error(err))
	}

	r, err := dec.OpenFile(entry)
	if err != nil {
		zap.L().Fatal("open file", zap.String("path", cmd.Path), zap.Error(err))
	}

	if _, err := io.Copy(os.Stdout, io.NewSectionReader(r, 0, int64(entry.Metadata.Size))); err != nil {
		zap.L().Fatal("copy", zap.String("path", cmd.Path), zap.Error(err))
	}
	return nil
}
