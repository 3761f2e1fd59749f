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
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/lpabon/godbc"
)

var (
	Randomness io.Reader = rand.Reader
)

// GenUUID returns 16 random bytes hex encoded. Used for request ids.
func GenUUID() string {
	uuid := make([]byte, 16)
	n, err := io.ReadFull(Randomness, uuid)
	godbc.Check(n == len(uuid), n, len(uuid))
	godbc.Check(err == nil, err)

	return hex.EncodeToString(uuid)
}
