//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package utils

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
)

func jsonFromReader(r io.ReadCloser, v interface{}) error {
	defer r.Close()

	body, err := ioutil.ReadAll(io.LimitReader(r, 1048576))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// GetJsonFromRequest unmarshals the body of the request into v.
func GetJsonFromRequest(r *http.Request, v interface{}) error {
	return jsonFromReader(r.Body, v)
}

// GetJsonFromResponse unmarshals the body of the response into v.
func GetJsonFromResponse(r *http.Response, v interface{}) error {
	return jsonFromReader(r.Body, v)
}

// WriteJsonResponse writes v as the JSON body of the response.
func WriteJsonResponse(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}
