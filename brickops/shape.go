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
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedShape    = errors.New("Unsupported volume shape")
	ErrInvalidRemoveOption = errors.New("Invalid remove-brick option")
	ErrInvalidResetOption  = errors.New("Invalid reset-brick option")
)

// VolumeConfig describes the topology of a volume before an operation.
// A zero count means the key is absent.
type VolumeConfig struct {
	DistCount    int `json:"dist_count,omitempty"`
	ReplicaCount int `json:"replica_count,omitempty"`
	ArbiterCount int `json:"arbiter_count,omitempty"`
}

func (c VolumeConfig) hasDist() bool {
	return c.DistCount > 0
}

func (c VolumeConfig) hasReplica() bool {
	return c.ReplicaCount > 0
}

func (c VolumeConfig) hasArbiter() bool {
	return c.ArbiterCount > 0
}

// Shape is the kind of topology a VolumeConfig describes. It decides
// the brick arithmetic and the keywords used on the gluster command line.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeDistribute
	ShapeReplica
	ShapeReplicaDist
	ShapeReplicaArbiter
	ShapeReplicaArbiterDist
)

func (s Shape) String() string {
	switch s {
	case ShapeDistribute:
		return "distribute"
	case ShapeReplica:
		return "replicate"
	case ShapeReplicaDist:
		return "distributed-replicate"
	case ShapeReplicaArbiter:
		return "arbiter"
	case ShapeReplicaArbiterDist:
		return "distributed-arbiter"
	}
	return "unsupported"
}

// Shape classifies the configuration. An arbiter count without a
// replica count is unsupported.
func (c VolumeConfig) Shape() Shape {
	switch {
	case c.hasReplica() && c.hasArbiter() && c.hasDist():
		return ShapeReplicaArbiterDist
	case c.hasReplica() && c.hasArbiter():
		return ShapeReplicaArbiter
	case c.hasReplica() && c.hasDist():
		return ShapeReplicaDist
	case c.hasReplica():
		return ShapeReplica
	case c.hasArbiter():
		return ShapeUnsupported
	case c.hasDist():
		return ShapeDistribute
	}
	return ShapeUnsupported
}

// MulFac is the number of bricks the volume is made of in its
// current shape.
func (c VolumeConfig) MulFac() int {
	if c.hasReplica() {
		mulFac := c.ReplicaCount
		if c.hasArbiter() {
			mulFac += c.ArbiterCount
		}
		if c.hasDist() {
			mulFac *= c.DistCount
		}
		return mulFac
	} else if c.hasDist() {
		return c.DistCount
	}
	return 0
}

// NumBricks is how many bricks a single add-brick or remove-brick
// moves for this shape: one, two more with an arbiter, and two more
// when the volume is both distributed and replicated.
func (s Shape) NumBricks() int {
	switch s {
	case ShapeDistribute, ShapeReplica:
		return 1
	case ShapeReplicaDist, ShapeReplicaArbiter:
		return 3
	case ShapeReplicaArbiterDist:
		return 5
	}
	return 0
}

func unsupported(c VolumeConfig) error {
	return errors.Wrapf(ErrUnsupportedShape,
		"dist_count=%v replica_count=%v arbiter_count=%v",
		c.DistCount, c.ReplicaCount, c.ArbiterCount)
}
