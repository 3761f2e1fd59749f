//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package brickdata keeps track of which bricks belong to which server
// for every volume created by the test runs, and of the brick
// directories that still have to be removed from the servers.
package brickdata

import (
	"sort"

	"github.com/gluster/redant/pkg/utils"
)

var (
	logger = utils.NewLogger("[brickdata]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

// ServerBricks maps a server to the brick paths it holds.
type ServerBricks map[string][]string

// Store is the bookkeeping of bricks per volume.
//
// AddBricks also records every added path in the clean-dirs ledger
// of its server. RemoveBricks leaves the ledger alone: a brick removed
// from a volume still has a directory on disk.
type Store interface {
	AddBricks(volname string, bricks ServerBricks) error
	RemoveBricks(volname string, bricks ServerBricks) error
	Bricks(volname string) (ServerBricks, error)
	Volumes() ([]string, error)
	DeleteVolume(volname string) error

	CleanDirs() (ServerBricks, error)
	RemoveCleanDir(node, dir string) error

	Close()
}

// Copy returns a deep copy.
func (s ServerBricks) Copy() ServerBricks {
	c := make(ServerBricks, len(s))
	for server, paths := range s {
		c[server] = append([]string{}, paths...)
	}
	return c
}

// Merge adds the paths in o which are not already present.
func (s ServerBricks) Merge(o ServerBricks) {
	for server, paths := range o {
		for _, path := range paths {
			if !contains(s[server], path) {
				s[server] = append(s[server], path)
			}
		}
	}
}

// Subtract removes the paths in o. Servers left with no bricks are
// removed from the map.
func (s ServerBricks) Subtract(o ServerBricks) {
	for server, paths := range o {
		current, ok := s[server]
		if !ok {
			continue
		}
		kept := current[:0]
		for _, path := range current {
			if !contains(paths, path) {
				kept = append(kept, path)
			}
		}
		if len(kept) == 0 {
			delete(s, server)
		} else {
			s[server] = kept
		}
	}
}

// Count returns the number of bricks across all servers.
func (s ServerBricks) Count() int {
	n := 0
	for _, paths := range s {
		n += len(paths)
	}
	return n
}

// Servers returns the servers holding bricks, sorted.
func (s ServerBricks) Servers() []string {
	servers := make([]string, 0, len(s))
	for server := range s {
		servers = append(servers, server)
	}
	sort.Strings(servers)
	return servers
}

// Ids returns the bricks in "server:path" form, sorted.
func (s ServerBricks) Ids() []string {
	ids := make([]string, 0, s.Count())
	for server, paths := range s {
		for _, path := range paths {
			ids = append(ids, utils.BrickId(server, path))
		}
	}
	sort.Strings(ids)
	return ids
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
