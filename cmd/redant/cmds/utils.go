//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package cmds

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gluster/redant/brickdata"
	"github.com/gluster/redant/brickops"
	"github.com/gluster/redant/config"
	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/remoteexec/injectexec"
	"github.com/gluster/redant/pkg/remoteexec/kube"
	"github.com/gluster/redant/pkg/remoteexec/ssh"
	"github.com/gluster/redant/pkg/utils"
	"github.com/gluster/redant/server"
	"github.com/gluster/redant/volops"
)

// session is what a command needs to talk to the cluster.
type session struct {
	conf  *config.Config
	exec  rex.Executor
	store brickdata.Store
	node  string
}

func setLogLevel(level utils.LogLevel) {
	brickdata.SetLogLevel(level)
	brickops.SetLogLevel(level)
	config.SetLogLevel(level)
	injectexec.SetLogLevel(level)
	kube.SetLogLevel(level)
	server.SetLogLevel(level)
	ssh.SetLogLevel(level)
	volops.SetLogLevel(level)
}

func loadConfig() (*config.Config, error) {
	conf, err := config.ReadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	level, err := utils.ParseLogLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	setLogLevel(level)

	return conf, nil
}

func newSession() (*session, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, err
	}

	exec, err := conf.NewExecutor()
	if err != nil {
		return nil, err
	}
	store, err := conf.NewStore()
	if err != nil {
		return nil, err
	}

	s := &session{
		conf:  conf,
		exec:  exec,
		store: store,
		node:  node,
	}
	if s.node == "" {
		s.node = conf.Servers[0]
	}
	return s, nil
}

func (s *session) Close() {
	s.store.Close()
}

func (s *session) brickOps() *brickops.BrickOps {
	return brickops.NewBrickOps(s.exec, s.store)
}

func (s *session) volOps() *volops.VolOps {
	return volops.NewVolOps(s.exec, s.store)
}

func addTopologyFlags(cmd *cobra.Command) {
	cmd.Flags().Int("dist", 0, "\n\tCurrent distribute count of the volume")
	cmd.Flags().Int("replica", 0, "\n\tCurrent replica count of the volume")
	cmd.Flags().Int("arbiter", 0, "\n\tCurrent arbiter count of the volume")
}

func topologyFromFlags(cmd *cobra.Command) (brickops.VolumeConfig, error) {
	var (
		conf brickops.VolumeConfig
		err  error
	)
	if conf.DistCount, err = cmd.Flags().GetInt("dist"); err != nil {
		return conf, err
	}
	if conf.ReplicaCount, err = cmd.Flags().GetInt("replica"); err != nil {
		return conf, err
	}
	if conf.ArbiterCount, err = cmd.Flags().GetInt("arbiter"); err != nil {
		return conf, err
	}
	return conf, nil
}

func volumeArg(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("Volume name missing")
	}
	return args[0], nil
}

func printJson(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func printList(list []string) error {
	if jsonOutput {
		return printJson(list)
	}
	for _, s := range list {
		fmt.Fprintln(stdout, s)
	}
	return nil
}

// printResult shows the outcome of a gluster command. A command that
// ran and failed is reported as an error.
func printResult(r *rex.Result) error {
	if jsonOutput {
		if err := printJson(r); err != nil {
			return err
		}
	} else if out := r.Output(); out != "" {
		fmt.Fprintln(stdout, out)
	}
	if !r.Ok() {
		return fmt.Errorf("Command failed with exit code %v: %v", r.ErrorCode, r.ErrorMsg)
	}
	return nil
}

func formatBoolYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
