//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package remoteexec

import (
	"github.com/gluster/redant/pkg/utils"
)

// CommandLogger logs the life of a remote command in a uniform way
// for all the transports.
type CommandLogger struct {
	logger *utils.Logger
}

func NewCommandLogger(l *utils.Logger) *CommandLogger {
	return &CommandLogger{l}
}

func (c *CommandLogger) Before(cmd, node string) {
	c.logger.Debug("Will run command [%v] on [%v]", cmd, node)
}

func (c *CommandLogger) Done(r *Result) {
	if r.Ok() {
		c.logger.Debug("Ran command [%v] on [%v]: Stdout [%v]: Stderr [%v]",
			r.Cmd, r.Node, r.Output(), r.ErrorMsg)
		return
	}
	c.logger.LogError("Failed to run command [%v] on [%v]: Exit [%v]: Stdout [%v]: Stderr [%v]",
		r.Cmd, r.Node, r.ErrorCode, r.Output(), r.ErrorMsg)
}

func (c *CommandLogger) Error(cmd, node string, err error) {
	c.logger.LogError("Unable to run command [%v] on [%v]: %v", cmd, node, err)
}

func (c *CommandLogger) Timeout(cmd, node string) {
	c.logger.LogError("Timeout running command [%v] on [%v]", cmd, node)
}
