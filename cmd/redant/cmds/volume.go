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
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gluster/redant/pkg/glusterfs/cliout"
)

func init() {
	RootCmd.AddCommand(volumeCommand)
	volumeCommand.AddCommand(volumeCreateCommand)
	volumeCommand.AddCommand(volumeStartCommand)
	volumeCommand.AddCommand(volumeStopCommand)
	volumeCommand.AddCommand(volumeDeleteCommand)
	volumeCommand.AddCommand(volumeCleanupCommand)
	volumeCommand.AddCommand(volumeInfoCommand)
	volumeCommand.AddCommand(volumeStatusCommand)

	addTopologyFlags(volumeCreateCommand)
	volumeCreateCommand.Flags().Bool("force", false, "\n\tForce the creation")
	volumeStartCommand.Flags().Bool("force", false, "\n\tForce the start")
	volumeStopCommand.Flags().Bool("force", false, "\n\tForce the stop")

	volumeCommand.SilenceUsage = true
}

var volumeCommand = &cobra.Command{
	Use:   "volume",
	Short: "Volume life cycle",
	Long:  "Volume life cycle",
}

var volumeCreateCommand = &cobra.Command{
	Use:   "create VOLUME",
	Short: "Create a volume",
	Long: "Create a volume with the given topology, its bricks laid out\n" +
		"round-robin over the servers of the configuration",
	Example: "  $ redant volume create vol1 --replica 3 --dist 2",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		conf, err := topologyFromFlags(cmd)
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, _, err := s.volOps().VolumeCreate(s.node, volname, conf,
			s.conf.Servers, s.conf.BrickRoots, force)
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var volumeStartCommand = &cobra.Command{
	Use:     "start VOLUME",
	Short:   "Start a volume",
	Long:    "Start a volume",
	Example: "  $ redant volume start vol1",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.volOps().VolumeStart(s.node, volname, force)
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var volumeStopCommand = &cobra.Command{
	Use:     "stop VOLUME",
	Short:   "Stop a volume",
	Long:    "Stop a volume",
	Example: "  $ redant volume stop vol1 --force",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.volOps().VolumeStop(s.node, volname, force)
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var volumeDeleteCommand = &cobra.Command{
	Use:     "delete VOLUME",
	Short:   "Delete a volume",
	Long:    "Delete a volume. Its brick directories are left for cleanup",
	Example: "  $ redant volume delete vol1",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.volOps().VolumeDelete(s.node, volname)
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var volumeCleanupCommand = &cobra.Command{
	Use:     "cleanup",
	Short:   "Remove the brick directories left on the servers",
	Long:    "Remove the brick directories left on the servers",
	Example: "  $ redant volume cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.volOps().CleanupBrickDirs()
		fmt.Fprintf(stdout, "Removed %v brick directories\n", removed)
		return err
	},
}

var volumeInfoCommand = &cobra.Command{
	Use:   "info VOLUME",
	Short: "Show the information gluster has on a volume",
	Long: "Show the information gluster has on a volume. With --json the\n" +
		"whole volume info output is printed as JSON",
	Example: "  $ redant volume info vol1 --json",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.volOps().VolumeInfo(s.node, volname)
		if err != nil {
			return err
		}
		if !r.Ok() {
			return r.Err()
		}

		if jsonOutput {
			data, err := cliout.ToJson(r.Output())
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, string(data))
			return nil
		}

		out, err := cliout.Parse(r.Output())
		if err != nil {
			return err
		}
		for _, vol := range out.VolInfo.Volumes.VolumeList {
			fmt.Fprintf(stdout, "Name: %v\n"+
				"Type: %v\n"+
				"Status: %v\n"+
				"Number of Bricks: %v\n",
				vol.Name,
				vol.TypeStr,
				vol.StatusStr,
				vol.BrickCount)
			table := tablewriter.NewWriter(stdout)
			table.SetHeader([]string{"Brick", "Arbiter"})
			for _, b := range vol.Bricks.BrickList {
				table.Append([]string{b.Name, formatBoolYesNo(b.IsArbiter == 1)})
			}
			table.Render()
		}
		return nil
	},
}

var volumeStatusCommand = &cobra.Command{
	Use:     "status VOLUME",
	Short:   "Show the processes serving a volume",
	Long:    "Show the brick and daemon processes serving a volume",
	Example: "  $ redant volume status vol1",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		status, err := s.brickOps().VolumeStatus(s.node, volname)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJson(status)
		}

		table := tablewriter.NewWriter(stdout)
		table.SetHeader([]string{"Process", "Port", "Online", "Pid"})
		for _, n := range status.Nodes {
			name := n.Path + " on " + n.Hostname
			if n.IsBrick() {
				name = n.BrickId()
			}
			table.Append([]string{name, n.Port, formatBoolYesNo(n.Online()), n.Pid})
		}
		table.Render()
		return nil
	},
}
