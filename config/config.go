//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package config loads the description of the cluster under test and
// builds the executor and brick store it asks for.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/gluster/redant/brickdata"
	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/remoteexec/injectexec"
	"github.com/gluster/redant/pkg/remoteexec/kube"
	"github.com/gluster/redant/pkg/remoteexec/mockexec"
	"github.com/gluster/redant/pkg/remoteexec/ssh"
	"github.com/gluster/redant/pkg/utils"
)

const (
	ExecutorSsh  = "ssh"
	ExecutorKube = "kubernetes"
	ExecutorMock = "mock"

	DefaultListen = ":8080"
)

var (
	logger = utils.NewLogger("[config]", utils.LEVEL_INFO)
)

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

type Config struct {
	Servers    []string          `json:"servers"`
	BrickRoots map[string]string `json:"brick_roots"`

	Executor   string            `json:"executor"`
	SshConfig  ssh.Config        `json:"sshexec"`
	KubeConfig kube.Config       `json:"kubeexec"`
	Inject     injectexec.Config `json:"inject"`
	DBfile     string            `json:"db"`
	LogLevel   string            `json:"log_level"`
	Listen     string            `json:"listen"`
	AdminKey   string            `json:"admin_key"`
}

// ReadConfig loads the configuration from filename, applies the
// REDANT_* environment overrides and validates the result.
func ReadConfig(filename string) (*Config, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, logger.LogError("Unable to open config file %v: %v", filename, err)
	}
	defer fp.Close()

	var c Config
	if err := json.NewDecoder(fp).Decode(&c); err != nil {
		return nil, logger.LogError("Unable to parse config file %v: %v", filename, err)
	}

	c.setWithEnvVariables()
	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, logger.LogError("Invalid configuration in %v: %v", filename, err)
	}
	return &c, nil
}

func (c *Config) setWithEnvVariables() {
	if env := os.Getenv("REDANT_SERVERS"); env != "" {
		c.Servers = strings.Split(env, ",")
	}
	if env := os.Getenv("REDANT_EXECUTOR"); env != "" {
		c.Executor = env
	}
	if env := os.Getenv("REDANT_DB"); env != "" {
		c.DBfile = env
	}
	if env := os.Getenv("REDANT_LOG_LEVEL"); env != "" {
		c.LogLevel = env
	}
	if env := os.Getenv("REDANT_LISTEN"); env != "" {
		c.Listen = env
	}
	if env := os.Getenv("REDANT_ADMIN_KEY"); env != "" {
		c.AdminKey = env
	}
	if env := os.Getenv("REDANT_SSH_KEYFILE"); env != "" {
		c.SshConfig.PrivateKeyFile = env
	}
	if env := os.Getenv("REDANT_SSH_USER"); env != "" {
		c.SshConfig.User = env
	}
	if env := os.Getenv("REDANT_SSH_PORT"); env != "" {
		c.SshConfig.Port = env
	}
}

func (c *Config) setDefaults() {
	if c.Executor == "" {
		c.Executor = ExecutorSsh
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func validateServers(value interface{}) error {
	servers, _ := value.([]string)
	for _, server := range servers {
		if err := validation.Validate(server, validation.Required, is.Host); err != nil {
			return fmt.Errorf("%v is not a valid server hostname", server)
		}
	}
	return nil
}

func validateLogLevel(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, err := utils.ParseLogLevel(s)
	return err
}

func (c *Config) validateBrickRoots(value interface{}) error {
	roots, _ := value.(map[string]string)
	for _, server := range c.Servers {
		root, ok := roots[server]
		if !ok {
			return fmt.Errorf("no brick root for server %v", server)
		}
		if !strings.HasPrefix(root, "/") {
			return fmt.Errorf("brick root %v of server %v is not an absolute path",
				root, server)
		}
	}
	return nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Servers, validation.Required, validation.By(validateServers)),
		validation.Field(&c.BrickRoots, validation.Required, validation.By(c.validateBrickRoots)),
		validation.Field(&c.Executor, validation.Required,
			validation.In(ExecutorSsh, ExecutorKube, ExecutorMock)),
		validation.Field(&c.LogLevel, validation.By(validateLogLevel)),
		validation.Field(&c.Listen, validation.Required),
	)
}

// Level returns the log level of the configuration.
func (c *Config) Level() utils.LogLevel {
	level, err := utils.ParseLogLevel(c.LogLevel)
	if err != nil {
		return utils.LEVEL_INFO
	}
	return level
}

// NewExecutor builds the executor named in the configuration, behind
// the injection hooks if any are configured.
func (c *Config) NewExecutor() (rex.Executor, error) {
	exec, err := c.newTransport()
	if err != nil {
		return nil, err
	}
	if c.Inject.Empty() {
		return exec, nil
	}
	return injectexec.NewInjectExecutor(exec, &c.Inject), nil
}

func (c *Config) newTransport() (rex.Executor, error) {
	switch c.Executor {
	case ExecutorSsh:
		s, err := ssh.NewSshExecutor(&c.SshConfig)
		if err != nil {
			return nil, err
		}
		return s, nil
	case ExecutorKube:
		k, err := kube.NewKubeExecutor(&c.KubeConfig)
		if err != nil {
			return nil, err
		}
		return k, nil
	case ExecutorMock:
		logger.Warning("Using mock executor, no command reaches the servers")
		return mockexec.NewMockExecutor(), nil
	}
	return nil, fmt.Errorf("Unknown executor %v", c.Executor)
}

// NewStore opens the bolt database if one is configured, otherwise the
// bookkeeping only lives as long as the process.
func (c *Config) NewStore() (brickdata.Store, error) {
	if c.DBfile == "" {
		return brickdata.NewMemoryStore(), nil
	}
	db, err := brickdata.NewBoltStore(c.DBfile)
	if err != nil {
		return nil, err
	}
	return db, nil
}
