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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"go.uber.org/zap"

	"github.com/discreader/iso9660fs/pkg/isofuse"
)

// MountCmd mirrors the teacher's MountCmd fuse branch; tcmu block-device
// mounting is a Non-goal this module never carried (the teacher's own
// block-device path is vdisc-specific storage plumbing this decoder has
// no equivalent of).
type MountCmd struct {
	Mountpoint string        `arg:"" help:"Directory to mount the image onto" type:"existingdir"`
	Fuse       isofuse.Options `embed:"" prefix:"fuse-"`
}

func (cmd *MountCmd) Run(g *Globals) error {
	dec, f, err := openDecoder(g.Image, g.config())
	if err != nil {
		zap.L().Fatal("opening image", zap.Error(err))
	}
	defer f.Close()

	cmd.Fuse.Logger = zap.L()

	fs, err := isofuse.New(dec, cmd.Fuse)
	if err != nil {
		zap.L().Fatal("new isofuse", zap.Error(err))
	}

	mfs, err := isofuse.Mount(cmd.Mountpoint, fs)
	if err != nil {
		zap.L().Fatal("mount", zap.Error(err))
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	signal.Notify(sigchan, syscall.SIGTERM)
	<-sigchan

	if err := fuse.Unmount(cmd.Mountpoint); err != nil {
		zap.L().Fatal("unmount", zap.Error(err))
	}
	if err := mfs.Join(context.Background()); err != nil {
		zap.L().Fatal("join", zap.Error(err))
	}
	return nil
}
