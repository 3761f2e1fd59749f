//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package middleware

import (
	"net/http"
	"sync"
)

// ReqLimiter bounds the number of state changing requests served at
// the same time. Each of them runs commands on the cluster.
type ReqLimiter struct {
	maxcount     uint32
	servingCount uint32
	lock         sync.Mutex
}

func NewHTTPThrottler(count uint32) *ReqLimiter {
	return &ReqLimiter{
		maxcount: count,
	}
}

func (r *ReqLimiter) acquire() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.servingCount >= r.maxcount {
		return false
	}
	r.servingCount++
	return true
}

func (r *ReqLimiter) release() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.servingCount--
}

// Serving returns the number of requests in flight.
func (r *ReqLimiter) Serving() uint32 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.servingCount
}

func (r *ReqLimiter) ServeHTTP(hw http.ResponseWriter, hr *http.Request, next http.HandlerFunc) {
	switch hr.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if !r.acquire() {
			http.Error(hw, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		defer r.release()
		next(hw, hr)
	default:
		next(hw, hr)
	}
}
