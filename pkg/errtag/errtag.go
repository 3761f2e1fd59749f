//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package errtag creates errors that can be recognized after being
// wrapped, without comparing their messages.
package errtag

import "github.com/pkg/errors"

type errData struct {
	desc string
}

// ErrTag identifies a class of errors. Two tags never match each
// other even when their descriptions are equal.
type ErrTag struct {
	data *errData
}

func NewTag(desc string) ErrTag {
	return ErrTag{&errData{desc}}
}

// In returns true if err, or the error it wraps, was emitted by this tag.
func (e ErrTag) In(err error) bool {
	if e2, ok := errors.Cause(err).(errInstance); ok {
		return e.data == e2.data
	}
	return false
}

// Err emits an error of this tag carrying a stack trace.
func (e ErrTag) Err() error {
	return errors.WithStack(errInstance(e))
}

// Wrapf emits an error of this tag prefixed with a formatted message.
func (e ErrTag) Wrapf(format string, args ...interface{}) error {
	return errors.Wrapf(errInstance(e), format, args...)
}

func (e ErrTag) String() string {
	return e.data.desc
}

type errInstance ErrTag

func (e errInstance) Error() string {
	return e.data.desc
}
