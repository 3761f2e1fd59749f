//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package metrics

import (
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heketi/tests"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gluster/redant/brickdata"
	rex "github.com/gluster/redant/pkg/remoteexec"
)

func TestCommandDone(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("test-op", "success"))
	CommandDone("test-op", rex.NewResult("s1", "true", 0, "", ""), nil)
	after := testutil.ToFloat64(CommandsTotal.WithLabelValues("test-op", "success"))
	tests.Assert(t, after == before+1, before, after)

	CommandDone("test-op", rex.NewResult("s1", "false", 1, "", ""), nil)
	tests.Assert(t, testutil.ToFloat64(CommandsTotal.WithLabelValues("test-op", "failed")) == 1)

	CommandDone("test-op", nil, errors.New("unreachable"))
	tests.Assert(t, testutil.ToFloat64(CommandsTotal.WithLabelValues("test-op", "error")) == 1)
}

func TestMetricsCollect(t *testing.T) {
	store := brickdata.NewMemoryStore()
	err := store.AddBricks("v1", brickdata.ServerBricks{
		"s1": {"/b/v1-0", "/b/v1-2"},
		"s2": {"/b/v1-1"},
	})
	tests.Assert(t, err == nil, err)

	m := NewMetrics(store)
	// up, volume_count, 2 x brick_count, 2 x clean_dir_count
	n := testutil.CollectAndCount(m)
	tests.Assert(t, n == 6, n)
}

func TestMetricsHandler(t *testing.T) {
	store := brickdata.NewMemoryStore()
	err := store.AddBricks("v1", brickdata.ServerBricks{"s1": {"/b/v1-0"}})
	tests.Assert(t, err == nil, err)

	ts := httptest.NewServer(NewMetricsHandler(store))
	defer ts.Close()

	r, err := http.Get(ts.URL)
	tests.Assert(t, err == nil, err)
	defer r.Body.Close()
	tests.Assert(t, r.StatusCode == http.StatusOK)

	body, err := ioutil.ReadAll(r.Body)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, strings.Contains(string(body),
		`redant_brick_count{server="s1",volume="v1"} 1`), string(body))
	tests.Assert(t, strings.Contains(string(body), "redant_up 1"), string(body))
}
