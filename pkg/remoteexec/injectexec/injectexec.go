//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package injectexec wraps an executor so that chosen commands fail,
// stall or lie about their output. It is used to exercise the error
// paths of the brick operations against a healthy cluster.
package injectexec

import (
	"fmt"
	"regexp"
	"time"

	"github.com/lpabon/godbc"

	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/utils"
)

var (
	logger = utils.NewLogger("[injectexec]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

// Reaction is what a matching hook does instead of, or after, the
// real command. Err produces a transport error. Otherwise a result
// with Output, Stderr and ExitCode is returned. Pause, in seconds,
// can be combined with either.
type Reaction struct {
	Output   string `json:"output"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Err      string `json:"error"`
	Pause    uint64 `json:"pause"`
	Panic    string `json:"panic"`
}

func (r Reaction) React(node, cmd string) (*rex.Result, error) {
	if r.Pause != 0 {
		time.Sleep(time.Second * time.Duration(r.Pause))
	}
	if r.Panic != "" {
		panic(r.Panic)
	}
	if r.Err != "" {
		return nil, fmt.Errorf("%v", r.Err)
	}
	return rex.NewResult(node, cmd, r.ExitCode, r.Output, r.Stderr), nil
}

// CmdHook reacts in place of every command matching the Cmd regex.
// An empty Node matches all nodes.
type CmdHook struct {
	Cmd      string   `json:"cmd"`
	Node     string   `json:"node"`
	Reaction Reaction `json:"reaction"`
}

func (c *CmdHook) Match(node, command string) bool {
	if c.Node != "" && c.Node != node {
		return false
	}
	m, err := regexp.MatchString(c.Cmd, command)
	if err != nil {
		logger.Warning("regexp error: %v", err)
	}
	return err == nil && m
}

func (c *CmdHook) String() string {
	return fmt.Sprintf("CmdHook(%v)", c.Cmd)
}

// ResultHook reacts after a command matching Cmd ran and what it
// returned matches the Result regex. What it returned is the output on
// success, the standard error on failure and the error message when
// the command could not run.
type ResultHook struct {
	Result string `json:"result"`
	CmdHook
}

func (r *ResultHook) Match(node, command, result string) bool {
	if !r.CmdHook.Match(node, command) {
		return false
	}
	m, err := regexp.MatchString(r.Result, result)
	if err != nil {
		logger.Warning("regexp error: %v", err)
	}
	return err == nil && m
}

func (r *ResultHook) String() string {
	return fmt.Sprintf("ResultHook(%v, %v)", r.Cmd, r.Result)
}

type CmdHooks []CmdHook

type ResultHooks []ResultHook

type Config struct {
	CmdHooks    CmdHooks    `json:"cmd_hooks"`
	ResultHooks ResultHooks `json:"result_hooks"`
}

// Empty returns true if no hook is configured.
func (c *Config) Empty() bool {
	return len(c.CmdHooks) == 0 && len(c.ResultHooks) == 0
}

// HookCommands returns the reaction of the first hook matching the
// command. ok is false if none matched.
func HookCommands(hooks CmdHooks, node, cmd string) (ok bool, r *rex.Result, err error) {
	for i := range hooks {
		h := &hooks[i]
		if h.Match(node, cmd) {
			logger.Info("Hook %v fired on [%v] for %v", h, cmd, node)
			r, err = h.Reaction.React(node, cmd)
			return true, r, err
		}
	}
	return false, nil, nil
}

// HookResults returns the reaction of the first hook matching the
// command and its outcome, or the outcome untouched.
func HookResults(hooks ResultHooks, node, cmd string,
	r *rex.Result, err error) (*rex.Result, error) {

	var compare string
	switch {
	case err != nil:
		compare = err.Error()
	case r.Ok():
		compare = r.Output()
	default:
		compare = r.ErrorMsg
	}

	for i := range hooks {
		h := &hooks[i]
		if h.Match(node, cmd, compare) {
			logger.Info("Hook %v fired on [%v] for %v", h, cmd, node)
			return h.Reaction.React(node, cmd)
		}
	}
	return r, err
}

// InjectExecutor runs commands through another executor unless a
// hook says otherwise.
type InjectExecutor struct {
	exec   rex.Executor
	config Config
}

func NewInjectExecutor(exec rex.Executor, config *Config) *InjectExecutor {
	godbc.Require(exec != nil)
	godbc.Require(config != nil)

	logger.Warning("Injecting errors with %v command and %v result hooks",
		len(config.CmdHooks), len(config.ResultHooks))
	return &InjectExecutor{
		exec:   exec,
		config: *config,
	}
}

func (e *InjectExecutor) ExecuteCommand(node, cmd string) (*rex.Result, error) {
	if ok, r, err := HookCommands(e.config.CmdHooks, node, cmd); ok {
		return r, err
	}
	r, err := e.exec.ExecuteCommand(node, cmd)
	return HookResults(e.config.ResultHooks, node, cmd, r, err)
}
