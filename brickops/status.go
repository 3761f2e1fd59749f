//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package brickops

import (
	"fmt"

	"github.com/lpabon/godbc"

	"github.com/gluster/redant/pkg/glusterfs/cliout"
)

func (b *BrickOps) query(op, node, cmd string) (*cliout.CliOutput, error) {
	r, err := b.run(op, node, cmd)
	if err != nil {
		return nil, err
	}
	if !r.Ok() {
		return nil, logger.Err(r.Err())
	}

	out, err := cliout.Parse(r.Output())
	if err != nil {
		return nil, logger.LogError("Unable to determine %v output from %v: %v", op, node, err)
	}
	return out, nil
}

// VolumeInfo returns the parsed "gluster volume info" of a volume.
func (b *BrickOps) VolumeInfo(node, volname string) (*cliout.Volume, error) {
	godbc.Require(volname != "")

	out, err := b.query("volume-info", node,
		fmt.Sprintf("gluster volume info %v --xml", volname))
	if err != nil {
		return nil, err
	}
	vols := out.VolInfo.Volumes.VolumeList
	if len(vols) == 0 {
		return nil, logger.LogError("Volume %v not found in volume info", volname)
	}
	logger.Debug("%+v", vols[0])
	return &vols[0], nil
}

// VolumeStatus returns the parsed "gluster volume status" of a volume.
func (b *BrickOps) VolumeStatus(node, volname string) (*cliout.VolumeStatus, error) {
	godbc.Require(volname != "")

	out, err := b.query("volume-status", node,
		fmt.Sprintf("gluster volume status %v --xml", volname))
	if err != nil {
		return nil, err
	}
	vols := out.VolStatus.Volumes.VolumeList
	if len(vols) == 0 {
		return nil, logger.LogError("Volume %v not found in volume status", volname)
	}
	logger.Debug("%+v", vols[0])
	return &vols[0], nil
}

// GetAllBricks lists every brick of the volume as "host:path".
func (b *BrickOps) GetAllBricks(node, volname string) ([]string, error) {
	vol, err := b.VolumeInfo(node, volname)
	if err != nil {
		return nil, err
	}
	return vol.BrickIds(), nil
}

func (b *BrickOps) bricksByState(node, volname string, online bool) ([]string, error) {
	status, err := b.VolumeStatus(node, volname)
	if err != nil {
		return nil, err
	}

	bricks := []string{}
	for _, n := range status.Nodes {
		if n.IsBrick() && n.Online() == online {
			bricks = append(bricks, n.BrickId())
		}
	}
	return bricks, nil
}

// GetOnlineBricks lists the bricks volume status reports as online.
func (b *BrickOps) GetOnlineBricks(node, volname string) ([]string, error) {
	return b.bricksByState(node, volname, true)
}

// GetOfflineBricks lists the bricks volume status reports as offline.
func (b *BrickOps) GetOfflineBricks(node, volname string) ([]string, error) {
	return b.bricksByState(node, volname, false)
}

// AreBricksOffline checks that none of the given bricks is online.
// It returns the bricks found online. In strict mode every brick is
// checked; otherwise the check stops at the first one online.
func (b *BrickOps) AreBricksOffline(node, volname string,
	bricks []string,
	strict bool) (bool, []string, error) {

	online, err := b.GetOnlineBricks(node, volname)
	if err != nil {
		return false, nil, err
	}

	mismatch := matching(bricks, online, strict)
	if len(mismatch) != 0 {
		logger.LogError("Bricks of volume %v are online: %v", volname, mismatch)
		return false, mismatch, nil
	}
	return true, mismatch, nil
}

// AreBricksOnline checks that all the given bricks are online. It
// returns the bricks found offline, with the same strict semantics as
// AreBricksOffline.
func (b *BrickOps) AreBricksOnline(node, volname string,
	bricks []string,
	strict bool) (bool, []string, error) {

	offline, err := b.GetOfflineBricks(node, volname)
	if err != nil {
		return false, nil, err
	}

	mismatch := matching(bricks, offline, strict)
	if len(mismatch) != 0 {
		logger.LogError("Bricks of volume %v are offline: %v", volname, mismatch)
		return false, mismatch, nil
	}
	return true, mismatch, nil
}

// CheckIfBricksListChanged returns true if the bricks of the volume
// differ from the expected list, in length or in membership.
func (b *BrickOps) CheckIfBricksListChanged(node, volname string,
	expected []string) (bool, error) {

	current, err := b.GetAllBricks(node, volname)
	if err != nil {
		return false, err
	}

	if len(current) != len(expected) {
		logger.Info("Volume %v has %v bricks, expected %v",
			volname, len(current), len(expected))
		return true, nil
	}
	set := make(map[string]bool, len(current))
	for _, brick := range current {
		set[brick] = true
	}
	for _, brick := range expected {
		if !set[brick] {
			logger.Info("Brick %v is no longer part of volume %v", brick, volname)
			return true, nil
		}
	}
	return false, nil
}

// matching returns the entries of list present in set. Unless all is
// set it stops at the first match.
func matching(list, set []string, all bool) []string {
	in := make(map[string]bool, len(set))
	for _, s := range set {
		in[s] = true
	}

	found := []string{}
	for _, s := range list {
		if in[s] {
			found = append(found, s)
			if !all {
				break
			}
		}
	}
	return found
}
