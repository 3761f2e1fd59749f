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
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/lpabon/godbc"
)

type LogLevel int

const (
	LEVEL_NOLOG LogLevel = iota
	LEVEL_CRITICAL
	LEVEL_ERROR
	LEVEL_WARNING
	LEVEL_INFO
	LEVEL_DEBUG
)

var (
	stderr io.Writer = os.Stderr
	stdout io.Writer = os.Stdout
)

type Logger struct {
	critlog, errorlog, infolog *log.Logger
	debuglog, warninglog       *log.Logger

	level LogLevel
}

func NewLogger(prefix string, level LogLevel) *Logger {
	godbc.Require(level >= 0, level)
	godbc.Require(level <= LEVEL_DEBUG, level)

	l := &Logger{}

	if level == LEVEL_NOLOG {
		l.level = LEVEL_DEBUG
	} else {
		l.level = level
	}

	l.critlog = log.New(stderr, prefix+" CRITICAL ", log.LstdFlags)
	l.errorlog = log.New(stderr, prefix+" ERROR ", log.LstdFlags)
	l.warninglog = log.New(stdout, prefix+" WARNING ", log.LstdFlags)
	l.infolog = log.New(stdout, prefix+" INFO ", log.LstdFlags)
	l.debuglog = log.New(stdout, prefix+" DEBUG ", log.LstdFlags)

	godbc.Ensure(l.critlog != nil)
	godbc.Ensure(l.errorlog != nil)
	godbc.Ensure(l.warninglog != nil)
	godbc.Ensure(l.infolog != nil)
	godbc.Ensure(l.debuglog != nil)

	return l
}

// ParseLogLevel converts the level names used in configuration files
// and on the command line into a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "none":
		return LEVEL_NOLOG, nil
	case "critical":
		return LEVEL_CRITICAL, nil
	case "error":
		return LEVEL_ERROR, nil
	case "warning":
		return LEVEL_WARNING, nil
	case "info":
		return LEVEL_INFO, nil
	case "debug":
		return LEVEL_DEBUG, nil
	}
	return LEVEL_NOLOG, fmt.Errorf("Unknown log level: %v", level)
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func logWithLonfile(l *log.Logger, format string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(2)

	// Shorten the path.
	// From
	// /builddir/build/BUILD/redant/src/github.com/gluster/redant/brickops/brickops.go
	// to
	// src/github.com/gluster/redant/brickops/brickops.go
	i := strings.Index(file, "/src/")
	if i == -1 {
		i = 0
	}

	l.Print(fmt.Sprintf("%v:%v: ", file[i:], line) +
		fmt.Sprintf(format, v...))
}

func (l *Logger) Critical(format string, v ...interface{}) {
	if l.level >= LEVEL_CRITICAL {
		logWithLonfile(l.critlog, format, v...)
	}
}

// LogError logs the message at ERROR level and returns it as an error
// so callers can log and return in one statement.
func (l *Logger) LogError(format string, v ...interface{}) error {
	if l.level >= LEVEL_ERROR {
		logWithLonfile(l.errorlog, format, v...)
	}

	return fmt.Errorf(format, v...)
}

// Err logs the error and hands it back unchanged.
func (l *Logger) Err(err error) error {
	if l.level >= LEVEL_ERROR {
		logWithLonfile(l.errorlog, "%v", err)
	}

	return err
}

func (l *Logger) Warning(format string, v ...interface{}) {
	if l.level >= LEVEL_WARNING {
		l.warninglog.Printf(format, v...)
	}
}

func (l *Logger) WarnErr(err error) error {
	if l.level >= LEVEL_WARNING {
		logWithLonfile(l.warninglog, "%v", err)
	}

	return err
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.level >= LEVEL_INFO {
		l.infolog.Printf(format, v...)
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level >= LEVEL_DEBUG {
		logWithLonfile(l.debuglog, format, v...)
	}
}
