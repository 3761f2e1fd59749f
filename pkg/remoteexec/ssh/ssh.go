//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package ssh runs commands on the gluster servers over ssh.
package ssh

import (
	"bytes"
	"io/ioutil"
	"os"
	"sync"
	"time"

	"github.com/lpabon/godbc"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/utils"
)

const (
	DefaultUser           = "root"
	DefaultPort           = "22"
	DefaultTimeoutMinutes = 10
)

var (
	logger           = utils.NewLogger("[sshexec]", utils.LEVEL_INFO)
	ErrSshPrivateKey = errors.New("Unable to read private key file")

	sshNew = func(logger *utils.Logger, user string, file string) (Ssher, error) {
		s := NewSshExecWithKeyFile(logger, user, file)
		if s == nil {
			return nil, ErrSshPrivateKey
		}
		return s, nil
	}
)

// Ssher runs one command on a host and reports its output and exit
// status. err is only set when the command could not be run.
type Ssher interface {
	ConnectAndExec(host, command string,
		timeout time.Duration) (stdout, stderr string, exitStatus int, err error)
}

type Config struct {
	PrivateKeyFile string `json:"keyfile"`
	User           string `json:"user"`
	Port           string `json:"port"`
	TimeoutMinutes int    `json:"timeout_minutes"`
}

type SshExecutor struct {
	private_keyfile string
	user            string
	port            string
	timeout         time.Duration
	throttlemap     map[string]chan bool
	lock            sync.Mutex
	exec            Ssher
	cmdlog          *rex.CommandLogger
}

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

func NewSshExecutor(config *Config) (*SshExecutor, error) {
	godbc.Require(config != nil)

	s := &SshExecutor{}
	s.throttlemap = make(map[string]chan bool)
	s.cmdlog = rex.NewCommandLogger(logger)

	if config.PrivateKeyFile == "" {
		s.private_keyfile = os.Getenv("HOME") + "/.ssh/id_rsa"
	} else {
		s.private_keyfile = config.PrivateKeyFile
	}

	if config.User == "" {
		s.user = DefaultUser
	} else {
		s.user = config.User
	}

	if config.Port == "" {
		s.port = DefaultPort
	} else {
		s.port = config.Port
	}

	if config.TimeoutMinutes <= 0 {
		s.timeout = DefaultTimeoutMinutes * time.Minute
	} else {
		s.timeout = time.Duration(config.TimeoutMinutes) * time.Minute
	}

	var err error
	s.exec, err = sshNew(logger, s.user, s.private_keyfile)
	if err != nil {
		return nil, logger.Err(err)
	}

	godbc.Ensure(s.user != "")
	godbc.Ensure(s.private_keyfile != "")
	godbc.Ensure(s.port != "")

	return s, nil
}

func (s *SshExecutor) accessConnection(host string) {
	var (
		c  chan bool
		ok bool
	)

	s.lock.Lock()
	if c, ok = s.throttlemap[host]; !ok {
		c = make(chan bool, 1)
		s.throttlemap[host] = c
	}
	s.lock.Unlock()

	c <- true
}

func (s *SshExecutor) freeConnection(host string) {
	s.lock.Lock()
	c := s.throttlemap[host]
	s.lock.Unlock()

	<-c
}

// ExecuteCommand runs cmd on node. Only one command at a time runs on
// a given node.
func (s *SshExecutor) ExecuteCommand(node, cmd string) (*rex.Result, error) {
	s.accessConnection(node)
	defer s.freeConnection(node)

	s.cmdlog.Before(cmd, node)
	stdout, stderr, status, err := s.exec.ConnectAndExec(node+":"+s.port, cmd, s.timeout)
	if rex.ErrTimeout.In(err) {
		s.cmdlog.Timeout(cmd, node)
		return nil, err
	} else if err != nil {
		s.cmdlog.Error(cmd, node, err)
		return nil, err
	}

	r := rex.NewResult(node, cmd, status, stdout, stderr)
	s.cmdlog.Done(r)
	return r, nil
}

// SshExec holds the client configuration used for every connection.
type SshExec struct {
	clientConfig *ssh.ClientConfig
	logger       *utils.Logger
}

func getKeyFile(file string) (ssh.Signer, error) {
	buf, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(buf)
}

// NewSshExecWithKeyFile returns nil if the key cannot be loaded.
func NewSshExecWithKeyFile(logger *utils.Logger, user string, file string) *SshExec {
	key, err := getKeyFile(file)
	if err != nil {
		logger.LogError("Unable to get private key from %v: %v", file, err)
		return nil
	}

	return &SshExec{
		logger: logger,
		clientConfig: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(key)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         30 * time.Second,
		},
	}
}

func (s *SshExec) ConnectAndExec(host, command string,
	timeout time.Duration) (string, string, int, error) {

	client, err := ssh.Dial("tcp", host, s.clientConfig)
	if err != nil {
		logger.Err(err)
		return "", "", 0, rex.ErrUnreachable.Wrapf("Failed to connect to %v", host)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", "", 0, errors.Wrapf(err, "Unable to create session on %v", host)
	}
	defer session.Close()

	var b, berr bytes.Buffer
	session.Stdout = &b
	session.Stderr = &berr

	errch := make(chan error, 1)
	go func() {
		errch <- session.Run(command)
	}()

	select {
	case err := <-errch:
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return b.String(), berr.String(), exitErr.ExitStatus(), nil
		} else if err != nil {
			return b.String(), berr.String(), 0, err
		}
		return b.String(), berr.String(), 0, nil
	case <-time.After(timeout):
		return "", "", 0, rex.ErrTimeout.Wrapf("%v", host)
	}
}
