//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package mockexec

import (
	"sync"

	rex "github.com/gluster/redant/pkg/remoteexec"
)

// Call records one command handed to the mock.
type Call struct {
	Node string
	Cmd  string
}

type MockExecutor struct {
	// This function can be overwritten for testing
	MockExecuteCommand func(node, cmd string) (*rex.Result, error)

	lock  sync.Mutex
	calls []Call
}

// NewMockExecutor returns an executor where every command succeeds
// with empty output.
func NewMockExecutor() *MockExecutor {
	m := &MockExecutor{}

	m.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 0, "", ""), nil
	}

	return m
}

func (m *MockExecutor) ExecuteCommand(node, cmd string) (*rex.Result, error) {
	m.lock.Lock()
	m.calls = append(m.calls, Call{Node: node, Cmd: cmd})
	m.lock.Unlock()

	return m.MockExecuteCommand(node, cmd)
}

// Calls returns a copy of the commands run so far.
func (m *MockExecutor) Calls() []Call {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := make([]Call, len(m.calls))
	copy(c, m.calls)
	return c
}

// LastCmd returns the last command run, or "" if none.
func (m *MockExecutor) LastCmd() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1].Cmd
}
