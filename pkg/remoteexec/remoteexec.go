//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package remoteexec defines how commands reach the storage nodes.
// Transports live in the subpackages; everything above them only
// sees the Executor interface and Result values.
package remoteexec

import (
	"fmt"
	"strings"

	"github.com/gluster/redant/pkg/errtag"
)

var (
	// ErrTimeout tags commands which did not finish in time.
	ErrTimeout = errtag.NewTag("Timed out waiting for command")
	// ErrUnreachable tags commands which could not be started on the node.
	ErrUnreachable = errtag.NewTag("Unable to reach node")
)

// Executor runs a single shell command on a node.
//
// Connection level problems (unreachable host, bad credentials,
// timeouts) are returned as the error. A command that ran and failed
// is not an error: it is reported through Result.ErrorCode.
type Executor interface {
	ExecuteCommand(node, cmd string) (*Result, error)
}

// Result is what a node returned for one command.
type Result struct {
	Node      string   `json:"node"`
	Cmd       string   `json:"cmd"`
	ErrorCode int      `json:"error_code"`
	Msg       []string `json:"msg"`
	ErrorMsg  string   `json:"error_msg"`
}

// NewResult builds a Result out of the raw streams of a finished command.
func NewResult(node, cmd string, exitStatus int, stdout, stderr string) *Result {
	return &Result{
		Node:      node,
		Cmd:       cmd,
		ErrorCode: exitStatus,
		Msg:       SplitLines(stdout),
		ErrorMsg:  strings.TrimRight(stderr, "\n"),
	}
}

// Ok returns true if the command exited with status zero.
func (r *Result) Ok() bool {
	return r.ErrorCode == 0
}

// Output returns the standard output of the command as one string.
func (r *Result) Output() string {
	return strings.Join(r.Msg, "\n")
}

// Err converts a failed result into an error. It returns nil on success.
func (r *Result) Err() error {
	if r.Ok() {
		return nil
	}
	return fmt.Errorf("Command [%v] on %v exited with %v: %v",
		r.Cmd, r.Node, r.ErrorCode, r.ErrorMsg)
}

func (r *Result) String() string {
	return fmt.Sprintf("node=%v cmd=[%v] error_code=%v", r.Node, r.Cmd, r.ErrorCode)
}

// SplitLines splits command output into lines, dropping the trailing
// empty line produced by a final newline.
func SplitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}
