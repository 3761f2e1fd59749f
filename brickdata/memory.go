//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package brickdata

import (
	"sort"
	"sync"
)

// MemoryStore keeps the bookkeeping for the lifetime of the process.
type MemoryStore struct {
	lock    sync.Mutex
	volumes map[string]ServerBricks
	cleands ServerBricks
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		volumes: make(map[string]ServerBricks),
		cleands: make(ServerBricks),
	}
}

func (m *MemoryStore) AddBricks(volname string, bricks ServerBricks) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	vol, ok := m.volumes[volname]
	if !ok {
		vol = make(ServerBricks)
		m.volumes[volname] = vol
	}
	vol.Merge(bricks)
	m.cleands.Merge(bricks)

	logger.Debug("Added %v bricks to volume %v", bricks.Count(), volname)
	return nil
}

func (m *MemoryStore) RemoveBricks(volname string, bricks ServerBricks) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	vol, ok := m.volumes[volname]
	if !ok {
		logger.Warning("Volume %v has no bricks recorded", volname)
		return nil
	}
	vol.Subtract(bricks)
	if len(vol) == 0 {
		delete(m.volumes, volname)
	}

	logger.Debug("Removed %v bricks from volume %v", bricks.Count(), volname)
	return nil
}

func (m *MemoryStore) Bricks(volname string) (ServerBricks, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	vol, ok := m.volumes[volname]
	if !ok {
		return ServerBricks{}, nil
	}
	return vol.Copy(), nil
}

func (m *MemoryStore) Volumes() ([]string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	names := make([]string, 0, len(m.volumes))
	for name := range m.volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) DeleteVolume(volname string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.volumes, volname)
	return nil
}

func (m *MemoryStore) CleanDirs() (ServerBricks, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.cleands.Copy(), nil
}

func (m *MemoryStore) RemoveCleanDir(node, dir string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.cleands.Subtract(ServerBricks{node: {dir}})
	return nil
}

func (m *MemoryStore) Close() {
}
