//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package server exposes the brick bookkeeping of a test run over
// HTTP, together with the metrics and a background cleanup of the
// brick directories.
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lpabon/godbc"
	"github.com/urfave/negroni"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/middleware"
	"github.com/gluster/redant/pkg/metrics"
	"github.com/gluster/redant/pkg/utils"
	"github.com/gluster/redant/volops"
)

const (
	ASYNC_ROUTE = "/queue"

	// Maximum number of state changing requests handled at once
	DefaultMaxRequests = 10
)

var (
	logger = utils.NewLogger("[server]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type Routes []Route

type VolumeList struct {
	Volumes []string `json:"volumes"`
}

type App struct {
	store    brickdata.Store
	volops   *volops.VolOps
	asyncMgr *AsyncHttpManager
	adminKey string
}

// NewApp serves the content of store. volops may be nil, in which case
// the cleanup route is not available.
func NewApp(store brickdata.Store, vol *volops.VolOps, adminKey string) *App {
	godbc.Require(store != nil)

	return &App{
		store:    store,
		volops:   vol,
		asyncMgr: NewAsyncHttpManager(ASYNC_ROUTE),
		adminKey: adminKey,
	}
}

func (a *App) routes() Routes {
	routes := Routes{
		Route{"VolumeList", "GET", "/brickdata", a.VolumeList},
		Route{"VolumeBricks", "GET", "/brickdata/{volume}", a.VolumeBricks},
		Route{"CleanDirs", "GET", "/cleands", a.CleanDirs},
		Route{"Metrics", "GET", "/metrics", metrics.NewMetricsHandler(a.store)},
		Route{"AsyncStatus", "GET", ASYNC_ROUTE + "/{id:[A-Fa-f0-9]+}", a.asyncMgr.HandlerStatus},
	}
	if a.volops != nil {
		routes = append(routes,
			Route{"CleanDirsCleanup", "POST", "/cleands/cleanup", a.Cleanup})
	}
	return routes
}

// SetRoutes adds the routes of the application to router.
func (a *App) SetRoutes(router *mux.Router) {
	for _, route := range a.routes() {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(route.HandlerFunc)
	}
}

// Handler returns the full HTTP stack: recovery, authentication when
// an admin key is set, request ids and throttling in front of the
// routes.
func (a *App) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	a.SetRoutes(router)

	n := negroni.New(negroni.NewRecovery())
	if a.adminKey != "" {
		n.Use(middleware.NewJwtAuth(a.adminKey))
	}
	n.Use(&middleware.RequestID{})
	n.Use(middleware.NewHTTPThrottler(DefaultMaxRequests))
	n.UseHandler(router)

	return n
}

func (a *App) VolumeList(w http.ResponseWriter, r *http.Request) {
	vols, err := a.store.Volumes()
	if err != nil {
		logger.Err(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, http.StatusOK, VolumeList{Volumes: vols})
}

func (a *App) VolumeBricks(w http.ResponseWriter, r *http.Request) {
	volname := mux.Vars(r)["volume"]

	bricks, err := a.store.Bricks(volname)
	if err != nil {
		logger.Err(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(bricks) == 0 {
		http.Error(w, fmt.Sprintf("Volume %v has no bricks recorded", volname),
			http.StatusNotFound)
		return
	}
	utils.WriteJsonResponse(w, http.StatusOK, bricks)
}

func (a *App) CleanDirs(w http.ResponseWriter, r *http.Request) {
	cleands, err := a.store.CleanDirs()
	if err != nil {
		logger.Err(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJsonResponse(w, http.StatusOK, cleands)
}

// Cleanup removes the brick directories in the background. Poll the
// returned location; once done it redirects to /cleands.
func (a *App) Cleanup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	a.asyncMgr.AsyncHttpRedirectFunc(w, r, func() (string, error) {
		removed, err := a.volops.CleanupBrickDirs()
		logger.Info("Cleanup %v removed %v brick directories", reqID, removed)
		if err != nil {
			return "", err
		}
		return "/cleands", nil
	})
}
