//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package injectexec

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/heketi/tests"

	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/remoteexec/mockexec"
	"github.com/gluster/redant/pkg/utils"
)

func init() {
	SetLogLevel(utils.LEVEL_NOLOG)
}

func TestInjectNoHooks(t *testing.T) {
	m := mockexec.NewMockExecutor()
	e := NewInjectExecutor(m, &Config{})

	r, err := e.ExecuteCommand("s1", "gluster volume info v1 --xml")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.Ok())
	tests.Assert(t, len(m.Calls()) == 1)
}

func TestInjectCmdHook(t *testing.T) {
	m := mockexec.NewMockExecutor()
	e := NewInjectExecutor(m, &Config{
		CmdHooks: CmdHooks{
			CmdHook{
				Cmd:      "^gluster vol add-brick",
				Reaction: Reaction{ExitCode: 1, Stderr: "add-brick: failed"},
			},
			CmdHook{
				Cmd:      "reset-brick",
				Node:     "s2",
				Reaction: Reaction{Err: "connection reset"},
			},
		},
	})

	r, err := e.ExecuteCommand("s1", "gluster vol add-brick v1 replica 3 s3:/b/v1-2 --xml")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.ErrorCode == 1)
	tests.Assert(t, r.ErrorMsg == "add-brick: failed", r.ErrorMsg)
	tests.Assert(t, len(m.Calls()) == 0)

	r, err = e.ExecuteCommand("s2", "gluster vol reset-brick v1 s1:/b/v1-0 start")
	tests.Assert(t, err != nil)
	tests.Assert(t, r == nil)
	tests.Assert(t, len(m.Calls()) == 0)

	// other node, runs for real
	r, err = e.ExecuteCommand("s1", "gluster vol reset-brick v1 s1:/b/v1-0 start")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.Ok())
	tests.Assert(t, len(m.Calls()) == 1)
}

func TestInjectResultHook(t *testing.T) {
	m := mockexec.NewMockExecutor()
	m.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		if cmd == "down" {
			return nil, fmt.Errorf("no route to host")
		}
		return rex.NewResult(node, cmd, 0, "<opRet>0</opRet>", ""), nil
	}
	e := NewInjectExecutor(m, &Config{
		ResultHooks: ResultHooks{
			ResultHook{
				Result: "opRet>0<",
				CmdHook: CmdHook{
					Cmd:      "volume status",
					Reaction: Reaction{Output: "<opRet>-1</opRet>", ExitCode: 2},
				},
			},
			ResultHook{
				Result: "no route",
				CmdHook: CmdHook{
					Cmd:      ".*",
					Reaction: Reaction{ExitCode: 255, Stderr: "unreachable"},
				},
			},
		},
	})

	r, err := e.ExecuteCommand("s1", "gluster volume status v1 --xml")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.ErrorCode == 2)
	tests.Assert(t, r.Output() == "<opRet>-1</opRet>", r.Output())

	r, err = e.ExecuteCommand("s1", "gluster volume info v1 --xml")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.Ok())

	r, err = e.ExecuteCommand("s1", "down")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.ErrorCode == 255)
	tests.Assert(t, len(m.Calls()) == 3)
}

func TestInjectBadRegexp(t *testing.T) {
	h := CmdHook{Cmd: "("}
	tests.Assert(t, !h.Match("s1", "("))
}

func TestInjectPanic(t *testing.T) {
	defer func() {
		r := recover()
		tests.Assert(t, r == "boom", r)
	}()
	Reaction{Panic: "boom"}.React("s1", "true")
	t.Fatalf("expected a panic")
}

func TestInjectConfigJson(t *testing.T) {
	var c Config
	err := json.Unmarshal([]byte(`{
		"cmd_hooks": [{"cmd": "add-brick", "reaction": {"exit_code": 1}}],
		"result_hooks": [{"cmd": "status", "result": "Offline", "reaction": {"error": "x"}}]
	}`), &c)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, !c.Empty())
	tests.Assert(t, c.CmdHooks[0].Reaction.ExitCode == 1)
	tests.Assert(t, c.ResultHooks[0].Cmd == "status")
	tests.Assert(t, c.ResultHooks[0].Result == "Offline")
	tests.Assert(t, c.ResultHooks[0].Reaction.Err == "x")

	tests.Assert(t, (&Config{}).Empty())
}
