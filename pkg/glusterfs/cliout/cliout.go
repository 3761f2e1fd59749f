//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package cliout holds the structures of the XML printed by the
// gluster command line when run with --xml.
package cliout

import (
	"encoding/xml"
	"fmt"
	"strings"

	xj "github.com/basgys/goxml2json"
)

type CliOutput struct {
	XMLName   xml.Name  `xml:"cliOutput"`
	OpRet     int       `xml:"opRet"`
	OpErrno   int       `xml:"opErrno"`
	OpErrStr  string    `xml:"opErrstr"`
	VolInfo   VolInfo   `xml:"volInfo"`
	VolStatus VolStatus `xml:"volStatus"`
}

type VolInfo struct {
	Volumes struct {
		Count      int      `xml:"count"`
		VolumeList []Volume `xml:"volume"`
	} `xml:"volumes"`
}

type Volume struct {
	Name         string `xml:"name"`
	ID           string `xml:"id"`
	Status       int    `xml:"status"`
	StatusStr    string `xml:"statusStr"`
	BrickCount   int    `xml:"brickCount"`
	DistCount    int    `xml:"distCount"`
	ReplicaCount int    `xml:"replicaCount"`
	ArbiterCount int    `xml:"arbiterCount"`
	Type         int    `xml:"type"`
	TypeStr      string `xml:"typeStr"`
	Bricks       struct {
		BrickList []Brick `xml:"brick"`
	} `xml:"bricks"`
}

type Brick struct {
	UUID      string `xml:"uuid,attr"`
	Name      string `xml:"name"`
	HostUUID  string `xml:"hostUuid"`
	IsArbiter int    `xml:"isArbiter"`
}

// BrickIds returns the bricks of the volume in "host:path" form.
func (v *Volume) BrickIds() []string {
	ids := make([]string, 0, len(v.Bricks.BrickList))
	for _, b := range v.Bricks.BrickList {
		ids = append(ids, b.Name)
	}
	return ids
}

type VolStatus struct {
	Volumes struct {
		VolumeList []VolumeStatus `xml:"volume"`
	} `xml:"volumes"`
}

type VolumeStatus struct {
	VolName   string       `xml:"volName"`
	NodeCount int          `xml:"nodeCount"`
	Nodes     []NodeStatus `xml:"node"`
}

// NodeStatus is one process of a volume: a brick or one of the
// daemons (self-heal, nfs, quota, ...) serving it.
type NodeStatus struct {
	Hostname string `xml:"hostname"`
	Path     string `xml:"path"`
	PeerID   string `xml:"peerid"`
	Status   int    `xml:"status"`
	Port     string `xml:"port"`
	Pid      string `xml:"pid"`
}

// IsBrick is true for brick processes; daemons have a non path value
// such as "localhost" in the path field.
func (n *NodeStatus) IsBrick() bool {
	return strings.HasPrefix(n.Path, "/")
}

func (n *NodeStatus) Online() bool {
	return n.Status == 1
}

func (n *NodeStatus) BrickId() string {
	return n.Hostname + ":" + n.Path
}

// Parse decodes the output of a gluster command run with --xml. A
// non zero opRet is returned as an error carrying opErrstr.
func Parse(output string) (*CliOutput, error) {
	var out CliOutput
	if err := xml.Unmarshal([]byte(output), &out); err != nil {
		return nil, fmt.Errorf("Unable to parse gluster xml output: %v", err)
	}
	if out.OpRet != 0 {
		return &out, fmt.Errorf("gluster command failed: opRet=%v opErrno=%v: %v",
			out.OpRet, out.OpErrno, out.OpErrStr)
	}
	return &out, nil
}

// ToJson converts the XML printed by gluster into JSON keeping the
// element names. Every value is a string and elements repeated under
// the same parent become arrays.
func ToJson(output string) ([]byte, error) {
	buf, err := xj.Convert(strings.NewReader(output))
	if err != nil {
		return nil, fmt.Errorf("Unable to convert gluster xml output: %v", err)
	}
	return buf.Bytes(), nil
}
