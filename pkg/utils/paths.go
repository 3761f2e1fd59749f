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
	"fmt"
	"strings"
)

// BrickName returns the directory name used for the brick with
// the given index inside a volume.
func BrickName(volume string, index int) string {
	return fmt.Sprintf("%v-%v", volume, index)
}

// BrickPath returns the absolute path of a brick below a brick root.
// The root is joined verbatim, without cleaning, because the
// resulting string is compared against gluster output.
func BrickPath(root, volume string, index int) string {
	return root + "/" + BrickName(volume, index)
}

// BrickId returns the "server:path" form gluster uses to name a brick.
func BrickId(server, path string) string {
	return server + ":" + path
}

// SplitBrickId breaks "server:path" into its parts. The split happens on
// the first colon followed by a slash so IPv6-less hostnames with ports
// are not mangled.
func SplitBrickId(brick string) (server, path string, err error) {
	i := strings.Index(brick, ":/")
	if i <= 0 {
		return "", "", fmt.Errorf("Invalid brick %q, expected server:/path", brick)
	}
	return brick[:i], brick[i+1:], nil
}
