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
	"os"
	"reflect"
	"testing"

	"github.com/heketi/tests"
)

func testStores(t *testing.T, f func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		f(t, s)
	})
	t.Run("boltdb", func(t *testing.T) {
		dbfile := tests.Tempfile()
		defer os.Remove(dbfile)

		s, err := NewBoltStore(dbfile)
		tests.Assert(t, err == nil, err)
		defer s.Close()
		f(t, s)
	})
}

func TestServerBricksMergeSubtract(t *testing.T) {
	s := ServerBricks{"s1": {"/b/v-0"}}
	s.Merge(ServerBricks{"s1": {"/b/v-0", "/b/v-3"}, "s2": {"/b/v-1"}})
	tests.Assert(t, reflect.DeepEqual(s, ServerBricks{
		"s1": {"/b/v-0", "/b/v-3"},
		"s2": {"/b/v-1"},
	}), s)
	tests.Assert(t, s.Count() == 3)

	s.Subtract(ServerBricks{"s2": {"/b/v-1"}, "s3": {"/b/v-9"}, "s1": {"/b/v-0"}})
	tests.Assert(t, reflect.DeepEqual(s, ServerBricks{"s1": {"/b/v-3"}}), s)

	ids := ServerBricks{"s2": {"/b/v-1"}, "s1": {"/b/v-0"}}.Ids()
	tests.Assert(t, reflect.DeepEqual(ids, []string{"s1:/b/v-0", "s2:/b/v-1"}), ids)

	servers := ServerBricks{"s3": {}, "s1": {"/b/v-0"}, "s2": {"/b/v-1"}}.Servers()
	tests.Assert(t, reflect.DeepEqual(servers, []string{"s1", "s2", "s3"}), servers)
}

func TestServerBricksCopy(t *testing.T) {
	s := ServerBricks{"s1": {"/b/v-0"}}
	c := s.Copy()
	c["s1"][0] = "changed"
	tests.Assert(t, s["s1"][0] == "/b/v-0")
}

func TestStoreAddRemove(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		err := s.AddBricks("v1", ServerBricks{
			"s1": {"/b/v1-0"},
			"s2": {"/b/v1-1"},
		})
		tests.Assert(t, err == nil, err)

		err = s.AddBricks("v1", ServerBricks{"s1": {"/b/v1-2"}})
		tests.Assert(t, err == nil, err)

		bricks, err := s.Bricks("v1")
		tests.Assert(t, err == nil, err)
		tests.Assert(t, reflect.DeepEqual(bricks, ServerBricks{
			"s1": {"/b/v1-0", "/b/v1-2"},
			"s2": {"/b/v1-1"},
		}), bricks)

		err = s.RemoveBricks("v1", ServerBricks{"s2": {"/b/v1-1"}})
		tests.Assert(t, err == nil, err)
		bricks, err = s.Bricks("v1")
		tests.Assert(t, err == nil, err)
		tests.Assert(t, reflect.DeepEqual(bricks, ServerBricks{
			"s1": {"/b/v1-0", "/b/v1-2"},
		}), bricks)

		// removing bricks of an unknown volume is not an error
		err = s.RemoveBricks("nope", ServerBricks{"s2": {"/b/v1-1"}})
		tests.Assert(t, err == nil, err)

		// removed bricks are still waiting to be cleaned
		dirs, err := s.CleanDirs()
		tests.Assert(t, err == nil, err)
		tests.Assert(t, len(dirs["s2"]) == 1, dirs)
		tests.Assert(t, len(dirs["s1"]) == 2, dirs)
	})
}

func TestStoreVolumes(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		vols, err := s.Volumes()
		tests.Assert(t, err == nil, err)
		tests.Assert(t, len(vols) == 0, vols)

		tests.Assert(t, s.AddBricks("vb", ServerBricks{"s1": {"/b/vb-0"}}) == nil)
		tests.Assert(t, s.AddBricks("va", ServerBricks{"s1": {"/b/va-0"}}) == nil)

		vols, err = s.Volumes()
		tests.Assert(t, err == nil, err)
		tests.Assert(t, reflect.DeepEqual(vols, []string{"va", "vb"}), vols)

		// a volume with no bricks left disappears
		tests.Assert(t, s.RemoveBricks("va", ServerBricks{"s1": {"/b/va-0"}}) == nil)
		tests.Assert(t, s.DeleteVolume("vb") == nil)
		vols, err = s.Volumes()
		tests.Assert(t, err == nil, err)
		tests.Assert(t, len(vols) == 0, vols)

		bricks, err := s.Bricks("vb")
		tests.Assert(t, err == nil, err)
		tests.Assert(t, len(bricks) == 0, bricks)
	})
}

func TestStoreCleanDirs(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		tests.Assert(t, s.AddBricks("v1", ServerBricks{
			"s1": {"/b/v1-0", "/b/v1-2"},
			"s2": {"/b/v1-1"},
		}) == nil)
		tests.Assert(t, s.DeleteVolume("v1") == nil)

		tests.Assert(t, s.RemoveCleanDir("s1", "/b/v1-0") == nil)
		tests.Assert(t, s.RemoveCleanDir("s2", "/b/v1-1") == nil)
		tests.Assert(t, s.RemoveCleanDir("s9", "/b/none") == nil)

		dirs, err := s.CleanDirs()
		tests.Assert(t, err == nil, err)
		tests.Assert(t, reflect.DeepEqual(dirs, ServerBricks{
			"s1": {"/b/v1-2"},
		}), dirs)
	})
}

func TestBoltStorePersists(t *testing.T) {
	dbfile := tests.Tempfile()
	defer os.Remove(dbfile)

	s, err := NewBoltStore(dbfile)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, s.AddBricks("v1", ServerBricks{"s1": {"/b/v1-0"}}) == nil)
	s.Close()

	s, err = NewBoltStore(dbfile)
	tests.Assert(t, err == nil, err)
	defer s.Close()

	bricks, err := s.Bricks("v1")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, reflect.DeepEqual(bricks, ServerBricks{"s1": {"/b/v1-0"}}), bricks)
}
