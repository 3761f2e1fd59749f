//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package brickops plans and runs the brick level operations of a
// volume: add-brick, remove-brick, replace-brick and reset-brick, and
// answers questions about the state of the bricks.
package brickops

import (
	"github.com/lpabon/godbc"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/pkg/metrics"
	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/utils"
)

var (
	logger = utils.NewLogger("[brickops]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

// BrickOps runs brick operations through an executor and keeps the
// brick store in line with what succeeded on the cluster.
type BrickOps struct {
	exec  rex.Executor
	store brickdata.Store
}

func NewBrickOps(exec rex.Executor, store brickdata.Store) *BrickOps {
	godbc.Require(exec != nil)
	godbc.Require(store != nil)

	return &BrickOps{
		exec:  exec,
		store: store,
	}
}

func (b *BrickOps) run(op, node, cmd string) (*rex.Result, error) {
	logger.Info("Running %v on %v: %v", op, node, cmd)
	r, err := b.exec.ExecuteCommand(node, cmd)
	metrics.CommandDone(op, r, err)
	if err != nil {
		return nil, logger.LogError("Unable to run %v on %v: %v", op, node, err)
	}
	if !r.Ok() {
		logger.Warning("%v on %v exited with %v: %v", op, node, r.ErrorCode, r.ErrorMsg)
	}
	return r, nil
}

// AddBrick expands the volume by one step of its shape and, if the
// command succeeded, records the new bricks in the store.
//
// The returned plan holds the configuration of the expanded volume.
// A failed command is not an error: check Result.ErrorCode.
func (b *BrickOps) AddBrick(node, volname string,
	conf VolumeConfig,
	servers []string,
	roots map[string]string,
	force bool) (*rex.Result, *Plan, error) {

	plan, err := PlanAddBrick(volname, conf, servers, roots, force)
	if err != nil {
		return nil, nil, logger.Err(err)
	}

	r, err := b.run("add-brick", node, plan.Command)
	if err != nil {
		return nil, plan, err
	}
	if r.Ok() {
		if err := b.store.AddBricks(volname, plan.Delta); err != nil {
			return r, plan, logger.Err(err)
		}
	}

	return r, plan, nil
}

// RemoveBrick shrinks the volume by one step of its shape. The bricks
// leave the store only once the command succeeded.
func (b *BrickOps) RemoveBrick(node, volname string,
	conf VolumeConfig,
	servers []string,
	roots map[string]string,
	option RemoveOption) (*rex.Result, *Plan, error) {

	plan, err := PlanRemoveBrick(volname, conf, servers, roots, option)
	if err != nil {
		return nil, nil, logger.Err(err)
	}

	r, err := b.run("remove-brick", node, plan.Command)
	if err != nil {
		return nil, plan, err
	}
	if r.Ok() {
		if err := b.store.RemoveBricks(volname, plan.Delta); err != nil {
			return r, plan, logger.Err(err)
		}
	}

	return r, plan, nil
}

// ReplaceBrick swaps src for dst, both given as "server:path", and
// moves the brick in the store on success.
func (b *BrickOps) ReplaceBrick(node, volname, src, dst string) (*rex.Result, error) {
	godbc.Require(volname != "")
	godbc.Require(src != "")
	godbc.Require(dst != "")

	r, err := b.run("replace-brick", node, ReplaceBrickCmd(volname, src, dst))
	if err != nil || !r.Ok() {
		return r, err
	}

	srcServer, srcPath, err := utils.SplitBrickId(src)
	if err != nil {
		logger.Warning("Not updating brick store: %v", err)
		return r, nil
	}
	dstServer, dstPath, err := utils.SplitBrickId(dst)
	if err != nil {
		logger.Warning("Not updating brick store: %v", err)
		return r, nil
	}

	err = b.store.RemoveBricks(volname, brickdata.ServerBricks{srcServer: {srcPath}})
	if err != nil {
		return r, logger.Err(err)
	}
	err = b.store.AddBricks(volname, brickdata.ServerBricks{dstServer: {dstPath}})
	if err != nil {
		return r, logger.Err(err)
	}

	return r, nil
}

// ResetBrick runs one phase of a reset-brick. The store is not
// touched: a reset brick keeps its place in the volume.
func (b *BrickOps) ResetBrick(node, volname, src string,
	option ResetOption,
	dst string,
	force bool) (*rex.Result, error) {

	cmd, err := ResetBrickCmd(volname, src, option, dst, force)
	if err != nil {
		return nil, logger.Err(err)
	}

	return b.run("reset-brick", node, cmd)
}
