//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package main

import (
	"io"
	"os"

	"github.com/gluster/redant/cmd/redant/cmds"
)

var (
	REDANT_VERSION           = "(dev)"
	stdout         io.Writer = os.Stdout
	stderr         io.Writer = os.Stderr
)

func main() {
	cmd := cmds.NewRedantCli(REDANT_VERSION, stdout, stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
