//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package volops creates, starts, stops and deletes the volumes the
// brick operations work on, and cleans up the brick directories left
// behind on the servers.
package volops

import (
	"fmt"

	"github.com/lpabon/godbc"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/brickops"
	"github.com/gluster/redant/pkg/metrics"
	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/utils"
)

var (
	logger = utils.NewLogger("[volops]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

type VolOps struct {
	exec  rex.Executor
	store brickdata.Store
}

func NewVolOps(exec rex.Executor, store brickdata.Store) *VolOps {
	godbc.Require(exec != nil)
	godbc.Require(store != nil)

	return &VolOps{
		exec:  exec,
		store: store,
	}
}

func (v *VolOps) run(op, node, cmd string) (*rex.Result, error) {
	logger.Info("Running %v on %v: %v", op, node, cmd)
	r, err := v.exec.ExecuteCommand(node, cmd)
	metrics.CommandDone(op, r, err)
	if err != nil {
		return nil, logger.LogError("Unable to run %v on %v: %v", op, node, err)
	}
	if !r.Ok() {
		logger.Warning("%v on %v exited with %v: %v", op, node, r.ErrorCode, r.ErrorMsg)
	}
	return r, nil
}

// VolumeCreateCmd returns the create command for a volume made of the
// bricks in brickCmd.
func VolumeCreateCmd(volname string,
	conf brickops.VolumeConfig,
	brickCmd string,
	force bool) string {

	var topology string
	if conf.ReplicaCount > 0 {
		topology = fmt.Sprintf("replica %v ", conf.ReplicaCount)
		if conf.ArbiterCount > 0 {
			topology += fmt.Sprintf("arbiter %v ", conf.ArbiterCount)
		}
	}

	cmd := fmt.Sprintf("gluster vol create %v %v%v --mode=script --xml",
		volname, topology, brickCmd)
	if force {
		cmd += " force"
	}
	return cmd
}

// VolumeCreate lays the bricks of a new volume round-robin over the
// servers and creates it. The bricks are recorded in the store once
// the volume exists.
func (v *VolOps) VolumeCreate(node, volname string,
	conf brickops.VolumeConfig,
	servers []string,
	roots map[string]string,
	force bool) (*rex.Result, brickdata.ServerBricks, error) {

	godbc.Require(volname != "")

	if conf.Shape() == brickops.ShapeUnsupported {
		return nil, nil, logger.LogError("Unable to create volume %v: %v",
			volname, brickops.ErrUnsupportedShape)
	}

	bricks, brickCmd := brickops.FormBrickCmd(servers, roots, volname, conf.MulFac())
	r, err := v.run("volume-create", node, VolumeCreateCmd(volname, conf, brickCmd, force))
	if err != nil {
		return nil, bricks, err
	}
	if r.Ok() {
		if err := v.store.AddBricks(volname, bricks); err != nil {
			return r, bricks, logger.Err(err)
		}
	}
	return r, bricks, nil
}

func (v *VolOps) VolumeStart(node, volname string, force bool) (*rex.Result, error) {
	godbc.Require(volname != "")

	cmd := fmt.Sprintf("gluster vol start %v --mode=script --xml", volname)
	if force {
		cmd += " force"
	}
	return v.run("volume-start", node, cmd)
}

func (v *VolOps) VolumeStop(node, volname string, force bool) (*rex.Result, error) {
	godbc.Require(volname != "")

	cmd := fmt.Sprintf("gluster vol stop %v --mode=script --xml", volname)
	if force {
		cmd += " force"
	}
	return v.run("volume-stop", node, cmd)
}

// VolumeInfo runs "gluster volume info" and returns its raw output.
func (v *VolOps) VolumeInfo(node, volname string) (*rex.Result, error) {
	godbc.Require(volname != "")

	return v.run("volume-info", node,
		fmt.Sprintf("gluster volume info %v --xml", volname))
}

// VolumeDelete deletes the volume and forgets its bricks. Their
// directories stay in the clean-dirs ledger.
func (v *VolOps) VolumeDelete(node, volname string) (*rex.Result, error) {
	godbc.Require(volname != "")

	r, err := v.run("volume-delete", node,
		fmt.Sprintf("gluster vol delete %v --mode=script --xml", volname))
	if err != nil || !r.Ok() {
		return r, err
	}
	if err := v.store.DeleteVolume(volname); err != nil {
		return r, logger.Err(err)
	}
	return r, nil
}

// CleanupBrickDirs removes from every server the brick directories
// recorded in the clean-dirs ledger. A directory leaves the ledger
// once it is gone. It returns how many were removed and the first
// error met; the other directories are still attempted.
func (v *VolOps) CleanupBrickDirs() (int, error) {
	cleands, err := v.store.CleanDirs()
	if err != nil {
		return 0, logger.Err(err)
	}

	var (
		removed  int
		firstErr error
	)
	for _, node := range cleands.Servers() {
		for _, dir := range cleands[node] {
			r, err := v.run("cleanup", node, fmt.Sprintf("rm -rf %v", dir))
			if err == nil && !r.Ok() {
				err = r.Err()
			}
			if err == nil {
				err = v.store.RemoveCleanDir(node, dir)
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			removed++
		}
	}

	logger.Info("Removed %v of %v brick directories", removed, cleands.Count())
	return removed, firstErr
}
