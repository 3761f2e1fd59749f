//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/lpabon/godbc"

	"github.com/gluster/redant/pkg/utils"
)

// AsyncHttpHandler tracks one long running request.
type AsyncHttpHandler struct {
	err          error
	completed    bool
	manager      *AsyncHttpManager
	location, id string
}

// AsyncHttpManager answers the status queries of the requests that
// were accepted and run in the background.
type AsyncHttpManager struct {
	lock     sync.RWMutex
	route    string
	handlers map[string]*AsyncHttpHandler
}

func NewAsyncHttpManager(route string) *AsyncHttpManager {
	return &AsyncHttpManager{
		route:    route,
		handlers: make(map[string]*AsyncHttpHandler),
	}
}

func (a *AsyncHttpManager) NewHandler() *AsyncHttpHandler {
	handler := &AsyncHttpHandler{
		manager: a,
		id:      utils.GenUUID(),
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	a.handlers[handler.id] = handler

	return handler
}

// AsyncHttpRedirectFunc runs f in the background and answers the
// request with 202 Accepted and the location to poll for the outcome.
// f returns the location of the result, or "" if there is none.
func (a *AsyncHttpManager) AsyncHttpRedirectFunc(w http.ResponseWriter,
	r *http.Request,
	f func() (string, error)) {

	handler := a.NewHandler()
	go func() {
		logger.Info("Started async operation: %v %v", r.Method, r.URL.Path)
		location, err := f()
		if err != nil {
			handler.CompletedWithError(err)
		} else if location != "" {
			handler.CompletedWithLocation(location)
		} else {
			handler.Completed()
		}
		logger.Info("Completed async operation: %v %v", r.Method, r.URL.Path)
	}()

	http.Redirect(w, r, handler.Url(), http.StatusAccepted)
}

func (a *AsyncHttpManager) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	// Get the id from the URL
	vars := mux.Vars(r)
	id := vars["id"]

	a.lock.Lock()
	defer a.lock.Unlock()

	if handler, ok := a.handlers[id]; ok {
		if handler.completed {
			if handler.err != nil {
				http.Error(w, handler.err.Error(), http.StatusInternalServerError)
			} else {
				if handler.location != "" {
					http.Redirect(w, r, handler.location, http.StatusSeeOther)
				} else {
					w.WriteHeader(http.StatusNoContent)
				}
			}

			// It has been completed, we can now remove it from the map
			delete(a.handlers, id)
		} else {
			// Still pending
			w.Header().Add("X-Pending", "true")
			w.WriteHeader(http.StatusOK)
		}

	} else {
		http.Error(w, "Id not found", http.StatusNotFound)
	}
}

func (h *AsyncHttpHandler) Url() string {
	return h.manager.route + "/" + h.id
}

func (h *AsyncHttpHandler) CompletedWithError(err error) {
	h.manager.lock.Lock()
	defer h.manager.lock.Unlock()

	godbc.Require(h.completed == false)

	h.err = err
	h.completed = true
}

func (h *AsyncHttpHandler) CompletedWithLocation(location string) {
	h.manager.lock.Lock()
	defer h.manager.lock.Unlock()

	godbc.Require(h.completed == false)

	h.location = location
	h.completed = true
}

func (h *AsyncHttpHandler) Completed() {
	h.manager.lock.Lock()
	defer h.manager.lock.Unlock()

	godbc.Require(h.completed == false)

	h.completed = true
}
