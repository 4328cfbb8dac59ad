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

// Package isocli is the kong command tree for cmd/isoreader, split out
// of main.go the way the teacher splits pkg/vdisc/cli out of cmd/vdisc.
package isocli

import (
	"os"

	"github.com/discreader/iso9660fs/pkg/iso9660"
)

// Globals holds the flags shared by every subcommand.
type Globals struct {
	Image     string `short:"i" help:"Path to the ISO 9660 image" required:"true"`
	LogLevel  string `help:"Set the logging level (debug|info|warn|error)" default:"info"`
	Lenient   bool   `help:"Decode leniently: tolerate both-endian field mismatches instead of failing"`
	Namespace string `help:"Namespace to present (auto|primary|joliet|rockridge)" enum:"auto,primary,joliet,rockridge" default:"auto"`
}

// CLI is the root kong command.
type CLI struct {
	Globals

	Ls      LsCmd      `cmd:"" help:"List directory contents"`
	Cat     CatCmd     `cmd:"" help:"Print a file's contents to stdout"`
	Tree    TreeCmd    `cmd:"" help:"Print the file system hierarchy as a tree"`
	Stat    StatCmd    `cmd:"" help:"Print metadata for one path"`
	Mount   MountCmd   `cmd:"" help:"Mount an image read-only via FUSE"`
	Version VersionCmd `cmd:"" help:"Print the client version information"`
}

func (g *Globals) namespace() iso9660.Namespace {
	switch g.Namespace {
	case "primary":
		return iso9660.NamespacePrimary
	case "joliet":
		return iso9660.NamespaceJoliet
	case "rockridge":
		return iso9660.NamespaceRockRidge
	default:
		return iso9660.NamespaceAuto
	}
}

func (g *Globals) config() iso9660.Config {
	cfg := iso9660.DefaultConfig()
	cfg.PreferNamespace = g.namespace()
	cfg.StrictBothEndian = !g.Lenient
	return cfg
}

// openDecoder opens path as a BlockSource and decodes it, sized from the
// file's length the way the teacher's vdisc.Load determines an image's
// extent from its backing object's size.
func openDecoder(path string, cfg iso9660.Config) (*iso9660.Decoder, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	sectors := uint32(info.Size() / iso9660.LogicalBlockSize)
	bs := iso9660.NewBlockSource(f, sectors)

	dec, err := iso9660.Open(bs, cfg)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return dec, f, nil
}
