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
	"strings"

	"github.com/lpabon/godbc"
	"github.com/pkg/errors"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/pkg/utils"
)

// BrickSlot is one brick to be added to or removed from a volume.
type BrickSlot struct {
	Server string
	Path   string
}

func (b BrickSlot) String() string {
	return utils.BrickId(b.Server, b.Path)
}

// Plan is the outcome of planning a brick operation. Nothing in it has
// been applied: Config is the topology the volume will have once
// Command succeeds, and Delta the bricks to record or forget.
type Plan struct {
	Command string
	Config  VolumeConfig
	Shape   Shape
	MulFac  int
	Bricks  []BrickSlot
	Delta   brickdata.ServerBricks
}

// BrickIds returns the planned bricks in "server:path" form, in the
// order they appear on the command line.
func (p *Plan) BrickIds() []string {
	ids := make([]string, len(p.Bricks))
	for i, b := range p.Bricks {
		ids[i] = b.String()
	}
	return ids
}

func (p *Plan) addSlot(server, root, volname string, index int) {
	path := utils.BrickPath(root, volname, index)
	p.Bricks = append(p.Bricks, BrickSlot{Server: server, Path: path})
	p.Delta[server] = append(p.Delta[server], path)
}

func (p *Plan) brickCmd() string {
	return strings.Join(p.BrickIds(), " ")
}

func brickRoot(roots map[string]string, server string) string {
	root, ok := roots[server]
	godbc.Require(ok, "no brick root for server", server)
	return root
}

// mod is the modulo operation with the sign of the divisor, so that
// walking backwards from index 0 lands on the last server.
func mod(a, n int) int {
	return ((a % n) + n) % n
}

// PlanAddBrick works out the bricks and the add-brick command that
// grow a volume of the given configuration by one step.
//
// Bricks are named after their position in the volume, starting at the
// current brick count, and are spread round-robin over servers
// starting at that same position. The configuration passed in is not
// modified; the grown one is returned in the plan.
func PlanAddBrick(volname string,
	conf VolumeConfig,
	servers []string,
	roots map[string]string,
	force bool) (*Plan, error) {

	godbc.Require(volname != "")
	godbc.Require(len(servers) > 0)

	shape := conf.Shape()
	if shape == ShapeUnsupported {
		return nil, unsupported(conf)
	}

	mulFac := conf.MulFac()

	var serverIter int
	if len(servers) > mulFac {
		serverIter = mulFac
	} else {
		serverIter = mulFac % len(servers)
	}

	plan := &Plan{
		Shape:  shape,
		MulFac: mulFac,
		Delta:  brickdata.ServerBricks{},
	}
	for i := 0; i < shape.NumBricks(); i++ {
		server := servers[serverIter]
		plan.addSlot(server, brickRoot(roots, server), volname, mulFac+i)
		serverIter = (serverIter + 1) % len(servers)
	}

	next := conf
	var topology string
	switch shape {
	case ShapeReplicaArbiter, ShapeReplicaArbiterDist:
		next.ArbiterCount++
		next.ReplicaCount++
		topology = "replica 3 arbiter 1 "
	case ShapeReplicaDist:
		next.DistCount++
		topology = "replica 3 "
	case ShapeReplica:
		next.ReplicaCount++
		topology = fmt.Sprintf("replica %v ", next.ReplicaCount)
	case ShapeDistribute:
		next.DistCount++
	}
	plan.Config = next

	plan.Command = fmt.Sprintf("gluster vol add-brick %v %v%v --xml",
		volname, topology, plan.brickCmd())
	if force {
		plan.Command += " force"
	}

	godbc.Ensure(len(plan.Bricks) == shape.NumBricks())
	return plan, nil
}

// PlanRemoveBrick is the mirror of PlanAddBrick: it picks the last
// bricks of the volume, walking the servers backwards, and builds the
// remove-brick command for the given option.
func PlanRemoveBrick(volname string,
	conf VolumeConfig,
	servers []string,
	roots map[string]string,
	option RemoveOption) (*Plan, error) {

	godbc.Require(volname != "")
	godbc.Require(len(servers) > 0)

	if !option.Valid() {
		return nil, errors.Wrapf(ErrInvalidRemoveOption, "%q", string(option))
	}

	shape := conf.Shape()
	if shape == ShapeUnsupported {
		return nil, unsupported(conf)
	}

	mulFac := conf.MulFac()

	var serverIter int
	if len(servers) > mulFac {
		serverIter = mulFac - 1
	} else {
		serverIter = (mulFac % len(servers)) - 1
	}
	serverIter = mod(serverIter, len(servers))

	plan := &Plan{
		Shape:  shape,
		MulFac: mulFac,
		Delta:  brickdata.ServerBricks{},
	}
	for i := 0; i < shape.NumBricks(); i++ {
		server := servers[serverIter]
		plan.addSlot(server, brickRoot(roots, server), volname, mulFac-i-1)
		serverIter = mod(serverIter-1, len(servers))
	}

	next := conf
	var topology string
	switch shape {
	case ShapeReplicaArbiter, ShapeReplicaArbiterDist:
		// The command keeps "replica 3" while the tracked counts shrink.
		next.ArbiterCount--
		next.ReplicaCount--
		topology = "replica 3 "
	case ShapeReplicaDist:
		next.DistCount--
		topology = fmt.Sprintf("replica %v ", conf.ReplicaCount)
	case ShapeReplica:
		next.ReplicaCount--
		topology = fmt.Sprintf("replica %v ", next.ReplicaCount)
	case ShapeDistribute:
		next.DistCount--
	}
	plan.Config = next

	plan.Command = fmt.Sprintf("gluster vol remove-brick %v %v%v %v --xml",
		volname, topology, plan.brickCmd(), option.withMode())

	godbc.Ensure(len(plan.Bricks) == shape.NumBricks())
	return plan, nil
}

// FormBrickCmd lays out mulFac bricks named volname-0 .. volname-(mulFac-1)
// round-robin over servers, as done when creating a volume. It returns
// the bricks per server and the bricks as they go on the command line.
func FormBrickCmd(servers []string,
	roots map[string]string,
	volname string,
	mulFac int) (brickdata.ServerBricks, string) {

	godbc.Require(len(servers) > 0)

	bricks := brickdata.ServerBricks{}
	ids := make([]string, 0, mulFac)
	serverIter := 0
	for i := 0; i < mulFac; i++ {
		if serverIter == len(servers) {
			serverIter = 0
		}
		server := servers[serverIter]
		path := utils.BrickPath(brickRoot(roots, server), volname, i)
		bricks[server] = append(bricks[server], path)
		ids = append(ids, utils.BrickId(server, path))
		serverIter++
	}

	return bricks, strings.Join(ids, " ")
}
