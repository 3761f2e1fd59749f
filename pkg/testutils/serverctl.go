// +build functional

//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package testutils

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path"
	"syscall"
	"time"
)

// ServerCfg describes how to run "redant serve" out of process.
type ServerCfg struct {
	ServerDir string
	RedantBin string
	LogPath   string
	ConfPath  string
	DbPath    string
	URL       string
	KeepDB    bool
}

// ServerCtl starts and stops a redant server process.
type ServerCtl struct {
	ServerCfg

	cmd       *exec.Cmd
	cmdExited bool
	cmdErr    error
	logF      *os.File
}

func getEnvValue(k, val string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return val
}

func NewServerCfgFromEnv(dirDefault string) *ServerCfg {
	return &ServerCfg{
		ServerDir: getEnvValue("REDANT_SERVER_DIR", dirDefault),
		RedantBin: getEnvValue("REDANT_SERVER", "./redant"),
		LogPath:   getEnvValue("REDANT_LOG", ""),
		DbPath:    getEnvValue("REDANT_DB_PATH", "./redant.db"),
		ConfPath:  getEnvValue("REDANT_CONF_PATH", "redant.json"),
		URL:       getEnvValue("REDANT_URL", "http://localhost:8080"),
	}
}

func NewServerCtl(cfg *ServerCfg) *ServerCtl {
	return &ServerCtl{ServerCfg: *cfg}
}

// Start runs the server and waits until it answers on URL.
func (s *ServerCtl) Start() error {
	if !s.KeepDB {
		os.Remove(path.Join(s.ServerDir, s.DbPath))
	}
	s.logF = nil
	if s.LogPath != "" {
		f, err := os.OpenFile(s.LogPath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, 0644)
		if err != nil {
			return err
		}
		s.logF = f
	}

	s.cmdExited = false
	s.cmd = exec.Command(s.RedantBin, fmt.Sprintf("--config=%v", s.ConfPath), "serve")
	s.cmd.Dir = s.ServerDir
	s.cmd.Env = append(os.Environ(), "REDANT_DB="+s.DbPath)
	if s.logF == nil {
		s.cmd.Stdout = os.Stdout
		s.cmd.Stderr = os.Stderr
	} else {
		s.cmd.Stdout = s.logF
		s.cmd.Stderr = s.logF
	}
	if err := s.cmd.Start(); err != nil {
		return err
	}
	go func() {
		s.cmdErr = s.cmd.Wait()
		s.cmdExited = true
	}()

	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if !s.IsAlive() {
			return errors.New("server exited early")
		}
		if r, err := http.Get(s.URL + "/metrics"); err == nil {
			r.Body.Close()
			return nil
		}
	}
	return fmt.Errorf("server not answering on %v", s.URL)
}

func (s *ServerCtl) IsAlive() bool {
	if s.cmd == nil || s.cmdExited {
		return false
	}
	return s.cmd.Process.Signal(syscall.Signal(0)) == nil
}

// Stop interrupts the server, killing it if it does not exit.
func (s *ServerCtl) Stop() error {
	if s.logF != nil {
		defer s.logF.Close()
	}
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	if !s.cmdExited {
		return s.cmd.Process.Kill()
	}
	return nil
}

// Tester is the part of testing.T the helpers need.
type Tester interface {
	Fatalf(format string, args ...interface{})
}

// ServerStarted makes sure s is running or fails the test.
func ServerStarted(t Tester, s *ServerCtl) {
	if s.IsAlive() {
		return
	}
	if err := s.Start(); err != nil {
		t.Fatalf("redant server is not started: %v", err)
	}
}

// ServerStopped makes sure s is not running or fails the test.
func ServerStopped(t Tester, s *ServerCtl) {
	if !s.IsAlive() {
		return
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("redant server is not stopped: %v", err)
	}
}
