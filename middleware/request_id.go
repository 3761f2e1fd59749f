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
	"context"
	"net/http"

	"github.com/gluster/redant/pkg/utils"
)

type contextKey string

const RequestIDHeader = "X-Request-ID"

var requestIDKey = contextKey(RequestIDHeader)

type RequestID struct {
}

// GetRequestID returns the request id from HTTP context.
func GetRequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(requestIDKey).(string)
	return reqID
}

// ServeHTTP tags every request that changes state with a new id, also
// returned to the client in the X-Request-ID header. Reads are left
// untagged.
func (reqID *RequestID) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		next(w, r)
		return
	}

	id := utils.GenUUID()
	w.Header().Set(RequestIDHeader, id)
	newCtx := context.WithValue(r.Context(), requestIDKey, id)
	next(w, r.WithContext(newCtx))
}
