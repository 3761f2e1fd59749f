//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package brickops

import (
	"fmt"

	"github.com/pkg/errors"
)

// RemoveOption is the phase of a remove-brick operation.
type RemoveOption string

const (
	RemoveStart  RemoveOption = "start"
	RemoveStop   RemoveOption = "stop"
	RemoveStatus RemoveOption = "status"
	RemoveCommit RemoveOption = "commit"
	RemoveForce  RemoveOption = "force"
)

func (o RemoveOption) Valid() bool {
	switch o {
	case RemoveStart, RemoveStop, RemoveStatus, RemoveCommit, RemoveForce:
		return true
	}
	return false
}

func (o RemoveOption) withMode() string {
	return string(o) + " --mode=script"
}

func ParseRemoveOption(s string) (RemoveOption, error) {
	o := RemoveOption(s)
	if !o.Valid() {
		return "", errors.Wrapf(ErrInvalidRemoveOption, "%q", s)
	}
	return o, nil
}

// ResetOption is the phase of a reset-brick operation.
type ResetOption int

const (
	ResetStart ResetOption = iota + 1
	ResetCommit
)

func (o ResetOption) String() string {
	switch o {
	case ResetStart:
		return "start"
	case ResetCommit:
		return "commit"
	}
	return fmt.Sprintf("ResetOption(%d)", int(o))
}

func ParseResetOption(s string) (ResetOption, error) {
	switch s {
	case "start":
		return ResetStart, nil
	case "commit":
		return ResetCommit, nil
	}
	return 0, errors.Wrapf(ErrInvalidResetOption, "%q", s)
}

// ReplaceBrickCmd returns the command replacing src with dst in a volume.
func ReplaceBrickCmd(volname, src, dst string) string {
	return fmt.Sprintf("gluster volume replace-brick %v %v %v commit force --xml",
		volname, src, dst)
}

// ResetBrickCmd returns the command for one phase of a reset-brick.
// On commit, an empty dst means the brick is reset in place.
func ResetBrickCmd(volname, src string,
	option ResetOption,
	dst string,
	force bool) (string, error) {

	switch option {
	case ResetStart:
		return fmt.Sprintf("gluster vol reset-brick %v %v start", volname, src), nil
	case ResetCommit:
		if dst == "" {
			dst = src
		}
		cmd := fmt.Sprintf("gluster vol reset-brick %v %v commit", src, dst)
		if force {
			cmd += " force"
		}
		return cmd, nil
	}
	return "", errors.Wrapf(ErrInvalidResetOption, "%v", option)
}
