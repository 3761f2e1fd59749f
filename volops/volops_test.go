//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package volops

import (
	"reflect"
	"strings"
	"testing"

	"github.com/heketi/tests"
	"github.com/pkg/errors"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/brickops"
	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/remoteexec/mockexec"
	"github.com/gluster/redant/pkg/utils"
)

func init() {
	SetLogLevel(utils.LEVEL_NOLOG)
}

var (
	servers = []string{"s1", "s2", "s3"}
	roots   = map[string]string{"s1": "/b", "s2": "/b", "s3": "/b"}
)

func TestVolumeCreateCmd(t *testing.T) {
	for _, test := range []struct {
		conf  brickops.VolumeConfig
		force bool
		cmd   string
	}{
		{brickops.VolumeConfig{DistCount: 2}, false,
			"gluster vol create v1 BRICKS --mode=script --xml"},
		{brickops.VolumeConfig{ReplicaCount: 3}, true,
			"gluster vol create v1 replica 3 BRICKS --mode=script --xml force"},
		{brickops.VolumeConfig{ReplicaCount: 2, ArbiterCount: 1}, false,
			"gluster vol create v1 replica 2 arbiter 1 BRICKS --mode=script --xml"},
		{brickops.VolumeConfig{ReplicaCount: 3, DistCount: 2}, false,
			"gluster vol create v1 replica 3 BRICKS --mode=script --xml"},
	} {
		cmd := VolumeCreateCmd("v1", test.conf, "BRICKS", test.force)
		tests.Assert(t, cmd == test.cmd, cmd, test.cmd)
	}
}

func TestVolumeCreate(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	store := brickdata.NewMemoryStore()
	v := NewVolOps(exec, store)

	r, bricks, err := v.VolumeCreate("s1", "v1",
		brickops.VolumeConfig{ReplicaCount: 3, DistCount: 2},
		servers, roots, false)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.Ok())
	tests.Assert(t, bricks.Count() == 6)
	tests.Assert(t, exec.LastCmd() == "gluster vol create v1 replica 3 "+
		"s1:/b/v1-0 s2:/b/v1-1 s3:/b/v1-2 s1:/b/v1-3 s2:/b/v1-4 s3:/b/v1-5 "+
		"--mode=script --xml", exec.LastCmd())

	stored, _ := store.Bricks("v1")
	tests.Assert(t, reflect.DeepEqual(stored, bricks), stored, bricks)
	cleands, _ := store.CleanDirs()
	tests.Assert(t, cleands.Count() == 6)
}

func TestVolumeCreateFailed(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 1, "", "volume create: v1: failed"), nil
	}
	store := brickdata.NewMemoryStore()
	v := NewVolOps(exec, store)

	r, _, err := v.VolumeCreate("s1", "v1", brickops.VolumeConfig{DistCount: 3},
		servers, roots, true)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, !r.Ok())
	vols, _ := store.Volumes()
	tests.Assert(t, len(vols) == 0)

	_, _, err = v.VolumeCreate("s1", "v1", brickops.VolumeConfig{ArbiterCount: 1},
		servers, roots, true)
	tests.Assert(t, err != nil)
	tests.Assert(t, len(exec.Calls()) == 1)
}

func TestVolumeStartStop(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	v := NewVolOps(exec, brickdata.NewMemoryStore())

	_, err := v.VolumeStart("s1", "v1", false)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, exec.LastCmd() == "gluster vol start v1 --mode=script --xml")

	_, err = v.VolumeStart("s1", "v1", true)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, exec.LastCmd() == "gluster vol start v1 --mode=script --xml force")

	_, err = v.VolumeStop("s2", "v1", true)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, exec.LastCmd() == "gluster vol stop v1 --mode=script --xml force")
	tests.Assert(t, exec.Calls()[2].Node == "s2")
}

func TestVolumeInfo(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 0, "<cliOutput><opRet>0</opRet></cliOutput>\n", ""), nil
	}
	v := NewVolOps(exec, brickdata.NewMemoryStore())

	r, err := v.VolumeInfo("s1", "v1")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, exec.LastCmd() == "gluster volume info v1 --xml")
	tests.Assert(t, r.Output() == "<cliOutput><opRet>0</opRet></cliOutput>", r.Output())
}

func TestVolumeDelete(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	store := brickdata.NewMemoryStore()
	v := NewVolOps(exec, store)

	_, _, err := v.VolumeCreate("s1", "v1", brickops.VolumeConfig{DistCount: 2},
		servers, roots, false)
	tests.Assert(t, err == nil, err)

	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 1, "", "volume delete: v1: failed"), nil
	}
	r, err := v.VolumeDelete("s1", "v1")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, !r.Ok())
	vols, _ := store.Volumes()
	tests.Assert(t, reflect.DeepEqual(vols, []string{"v1"}), vols)

	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 0, "", ""), nil
	}
	r, err = v.VolumeDelete("s1", "v1")
	tests.Assert(t, err == nil, err)
	tests.Assert(t, r.Ok())
	tests.Assert(t, exec.LastCmd() == "gluster vol delete v1 --mode=script --xml")
	vols, _ = store.Volumes()
	tests.Assert(t, len(vols) == 0, vols)

	// the directories are still there to be cleaned
	cleands, _ := store.CleanDirs()
	tests.Assert(t, cleands.Count() == 2)
}

func TestCleanupBrickDirs(t *testing.T) {
	exec := mockexec.NewMockExecutor()
	store := brickdata.NewMemoryStore()
	v := NewVolOps(exec, store)

	tests.Assert(t, store.AddBricks("v1", brickdata.ServerBricks{
		"s1": {"/b/v1-0", "/b/v1-2"},
		"s2": {"/b/v1-1"},
	}) == nil)

	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		if node == "s1" && strings.HasSuffix(cmd, "/b/v1-2") {
			return rex.NewResult(node, cmd, 1, "", "Device or resource busy"), nil
		}
		if node == "s2" {
			return nil, errors.New("no route to host")
		}
		return rex.NewResult(node, cmd, 0, "", ""), nil
	}

	removed, err := v.CleanupBrickDirs()
	tests.Assert(t, err != nil)
	tests.Assert(t, removed == 1, removed)

	calls := exec.Calls()
	tests.Assert(t, len(calls) == 3, calls)
	tests.Assert(t, calls[0].Cmd == "rm -rf /b/v1-0", calls[0].Cmd)

	cleands, _ := store.CleanDirs()
	tests.Assert(t, reflect.DeepEqual(cleands.Ids(),
		[]string{"s1:/b/v1-2", "s2:/b/v1-1"}), cleands)

	exec.MockExecuteCommand = func(node, cmd string) (*rex.Result, error) {
		return rex.NewResult(node, cmd, 0, "", ""), nil
	}
	removed, err = v.CleanupBrickDirs()
	tests.Assert(t, err == nil, err)
	tests.Assert(t, removed == 2, removed)
	cleands, _ = store.CleanDirs()
	tests.Assert(t, cleands.Count() == 0, cleands)
}
