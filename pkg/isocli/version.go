// Copyright © 2019 NVIDIA Corporation
package isocli

import "fmt"

// Version is injected with the git sha at build time, the same convention
// the teacher's vdisc binary uses.
var Version = ""

type VersionCmd struct{}

func (cmd *VersionCmd) Run(g *Globals) error {
	fmt.Println(Version)
	return nil
}
