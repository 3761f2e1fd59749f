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
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt"
	"github.com/heketi/tests"
	"github.com/urfave/negroni"
)

func signed(t *testing.T, claims jwt.MapClaims, key string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(key))
	tests.Assert(t, err == nil, err)
	return s
}

func TestJwtAuth(t *testing.T) {
	n := negroni.New(NewJwtAuth("secret"))
	called := false
	n.UseHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ts := httptest.NewServer(n)
	defer ts.Close()

	do := func(auth string) int {
		called = false
		req, err := http.NewRequest("GET", ts.URL, nil)
		tests.Assert(t, err == nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		tests.Assert(t, err == nil, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	exp := time.Now().Add(time.Minute).Unix()

	tests.Assert(t, do("") == http.StatusUnauthorized)
	tests.Assert(t, !called)

	tests.Assert(t, do("Basic abc") == http.StatusUnauthorized)

	good := signed(t, jwt.MapClaims{"iss": "admin", "exp": exp}, "secret")
	tests.Assert(t, do("Bearer "+good) == http.StatusOK)
	tests.Assert(t, called)

	wrongKey := signed(t, jwt.MapClaims{"iss": "admin", "exp": exp}, "other")
	tests.Assert(t, do("Bearer "+wrongKey) == http.StatusUnauthorized)

	wrongUser := signed(t, jwt.MapClaims{"iss": "user", "exp": exp}, "secret")
	tests.Assert(t, do("Bearer "+wrongUser) == http.StatusUnauthorized)

	noExp := signed(t, jwt.MapClaims{"iss": "admin"}, "secret")
	tests.Assert(t, do("Bearer "+noExp) == http.StatusUnauthorized)

	expired := signed(t, jwt.MapClaims{
		"iss": "admin",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, "secret")
	tests.Assert(t, do("Bearer "+expired) == http.StatusUnauthorized)
	tests.Assert(t, !called)
}

func TestRequestID(t *testing.T) {
	var id string
	n := negroni.New(&RequestID{})
	n.UseHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = GetRequestID(r.Context())
	})
	ts := httptest.NewServer(n)
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, id == "")
	tests.Assert(t, resp.Header.Get(RequestIDHeader) == "")

	resp, err = http.Post(ts.URL, "application/json", nil)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, len(id) == 32, id)
	tests.Assert(t, resp.Header.Get(RequestIDHeader) == id)
}

func TestHTTPThrottler(t *testing.T) {
	nt := NewHTTPThrottler(1)

	release := make(chan bool)
	entered := make(chan bool)
	n := negroni.New(nt)
	n.UseHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			entered <- true
			<-release
		}
	})
	ts := httptest.NewServer(n)
	defer ts.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := http.Post(ts.URL, "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered
	tests.Assert(t, nt.Serving() == 1)

	resp, err := http.Post(ts.URL, "application/json", nil)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode)

	// reads are never throttled
	resp, err = http.Get(ts.URL)
	tests.Assert(t, err == nil, err)
	tests.Assert(t, resp.StatusCode == http.StatusOK)

	close(release)
	wg.Wait()
	tests.Assert(t, nt.Serving() == 0)
}
