//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package remoteexec

import (
	"strings"
	"testing"

	"github.com/heketi/tests"
)

func TestNewResult(t *testing.T) {
	r := NewResult("s1", "gluster peer status", 0, "line1\nline2\n", "")
	tests.Assert(t, r.Ok())
	tests.Assert(t, r.Err() == nil)
	tests.Assert(t, len(r.Msg) == 2, r.Msg)
	tests.Assert(t, r.Msg[1] == "line2", r.Msg)
	tests.Assert(t, r.Output() == "line1\nline2", r.Output())
	tests.Assert(t, r.Node == "s1")
	tests.Assert(t, r.Cmd == "gluster peer status")
}

func TestNewResultFailure(t *testing.T) {
	r := NewResult("s2", "false", 1, "", "boom\n")
	tests.Assert(t, !r.Ok())
	tests.Assert(t, r.ErrorMsg == "boom", r.ErrorMsg)
	tests.Assert(t, len(r.Msg) == 0)

	err := r.Err()
	tests.Assert(t, err != nil)
	tests.Assert(t, strings.Contains(err.Error(), "boom"), err)
	tests.Assert(t, strings.Contains(err.Error(), "s2"), err)
}

func TestSplitLines(t *testing.T) {
	tests.Assert(t, len(SplitLines("")) == 0)
	tests.Assert(t, len(SplitLines("\n")) == 0)
	tests.Assert(t, len(SplitLines("a\n\nb")) == 3)
}
