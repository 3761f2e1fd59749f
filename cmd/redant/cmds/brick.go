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

	"github.com/spf13/cobra"

	"github.com/gluster/redant/brickops"
)

func init() {
	RootCmd.AddCommand(brickCommand)
	brickCommand.AddCommand(brickAddCommand)
	brickCommand.AddCommand(brickRemoveCommand)
	brickCommand.AddCommand(brickReplaceCommand)
	brickCommand.AddCommand(brickResetCommand)
	brickCommand.AddCommand(brickFormCommand)
	brickCommand.AddCommand(brickStatusCommand)
	brickCommand.AddCommand(brickOfflineCommand)
	brickCommand.AddCommand(brickChangedCommand)

	addTopologyFlags(brickAddCommand)
	brickAddCommand.Flags().Bool("force", false, "\n\tForce the add-brick")

	addTopologyFlags(brickRemoveCommand)
	brickRemoveCommand.Flags().String("option", "start",
		"\n\tPhase of the remove-brick: start, stop, status, commit or force")

	brickResetCommand.Flags().String("option", "start",
		"\n\tPhase of the reset-brick: start or commit")
	brickResetCommand.Flags().String("dst", "",
		"\n\tBrick replacing the reset one on commit."+
			"\n\tDefaults to the reset brick itself")
	brickResetCommand.Flags().Bool("force", false, "\n\tForce the commit")

	brickFormCommand.Flags().Int("count", 0, "\n\tNumber of bricks to lay out")

	brickStatusCommand.Flags().String("state", "all",
		"\n\tBricks to list: all, online or offline")

	brickOfflineCommand.Flags().Bool("strict", false,
		"\n\tReport every brick which is still online")

	brickCommand.SilenceUsage = true
}

var brickCommand = &cobra.Command{
	Use:   "brick",
	Short: "Brick operations on a volume",
	Long:  "Brick operations on a volume",
}

var brickAddCommand = &cobra.Command{
	Use:   "add VOLUME",
	Short: "Grow a volume by one step of its shape",
	Long: "Grow a volume by one step of its shape. The topology flags give\n" +
		"the current counts of the volume.",
	Example: "  $ redant brick add vol1 --replica 3 --dist 2",
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

		r, plan, err := s.brickOps().AddBrick(s.node, volname, conf,
			s.conf.Servers, s.conf.BrickRoots, force)
		if err != nil {
			return err
		}
		if err := printResult(r); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Fprintf(stdout, "Volume %v is now %+v\n", volname, plan.Config)
		}
		return nil
	},
}

var brickRemoveCommand = &cobra.Command{
	Use:     "remove VOLUME",
	Short:   "Shrink a volume by one step of its shape",
	Long:    "Shrink a volume by one step of its shape",
	Example: "  $ redant brick remove vol1 --replica 3 --option start",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		conf, err := topologyFromFlags(cmd)
		if err != nil {
			return err
		}
		o, err := cmd.Flags().GetString("option")
		if err != nil {
			return err
		}
		option, err := brickops.ParseRemoveOption(o)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, plan, err := s.brickOps().RemoveBrick(s.node, volname, conf,
			s.conf.Servers, s.conf.BrickRoots, option)
		if err != nil {
			return err
		}
		if err := printResult(r); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Fprintf(stdout, "Volume %v is now %+v\n", volname, plan.Config)
		}
		return nil
	},
}

var brickReplaceCommand = &cobra.Command{
	Use:     "replace VOLUME SRC DST",
	Short:   "Replace a brick of a volume",
	Long:    "Replace a brick of a volume. Bricks are given as server:path",
	Example: "  $ redant brick replace vol1 s1:/bricks/vol1-0 s4:/bricks/vol1-0",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 3 {
			return fmt.Errorf("Expected volume, source and destination bricks")
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.brickOps().ReplaceBrick(s.node, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var brickResetCommand = &cobra.Command{
	Use:   "reset VOLUME BRICK",
	Short: "Run one phase of a reset-brick",
	Long:  "Run one phase of a reset-brick",
	Example: "  $ redant brick reset vol1 s1:/bricks/vol1-0 --option start\n" +
		"  $ redant brick reset vol1 s1:/bricks/vol1-0 --option commit --force",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("Expected volume and brick")
		}
		o, err := cmd.Flags().GetString("option")
		if err != nil {
			return err
		}
		option, err := brickops.ParseResetOption(o)
		if err != nil {
			return err
		}
		dst, err := cmd.Flags().GetString("dst")
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

		r, err := s.brickOps().ResetBrick(s.node, args[0], args[1], option, dst, force)
		if err != nil {
			return err
		}
		return printResult(r)
	},
}

var brickFormCommand = &cobra.Command{
	Use:     "form VOLUME",
	Short:   "Print the bricks of a new volume",
	Long:    "Print the bricks a volume of --count bricks is created with",
	Example: "  $ redant brick form vol1 --count 6",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		count, err := cmd.Flags().GetInt("count")
		if err != nil {
			return err
		}
		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		conf, err := loadConfig()
		if err != nil {
			return err
		}

		bricks, brickCmd := brickops.FormBrickCmd(conf.Servers, conf.BrickRoots,
			volname, count)
		if jsonOutput {
			return printJson(bricks)
		}
		fmt.Fprintln(stdout, brickCmd)
		return nil
	},
}

var brickStatusCommand = &cobra.Command{
	Use:     "status VOLUME",
	Short:   "List the bricks of a volume",
	Long:    "List the bricks of a volume, optionally only the online or offline ones",
	Example: "  $ redant brick status vol1 --state offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		volname, err := volumeArg(args)
		if err != nil {
			return err
		}
		state, err := cmd.Flags().GetString("state")
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		b := s.brickOps()
		var bricks []string
		switch state {
		case "all":
			bricks, err = b.GetAllBricks(s.node, volname)
		case "online":
			bricks, err = b.GetOnlineBricks(s.node, volname)
		case "offline":
			bricks, err = b.GetOfflineBricks(s.node, volname)
		default:
			return fmt.Errorf("Unknown brick state %v", state)
		}
		if err != nil {
			return err
		}
		return printList(bricks)
	},
}

var brickOfflineCommand = &cobra.Command{
	Use:     "offline VOLUME BRICK...",
	Short:   "Check that bricks are offline",
	Long:    "Check that bricks are offline. Bricks still online are listed",
	Example: "  $ redant brick offline vol1 s1:/bricks/vol1-0 s2:/bricks/vol1-1 --strict",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return fmt.Errorf("Expected volume and at least one brick")
		}
		strict, err := cmd.Flags().GetBool("strict")
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		offline, online, err := s.brickOps().AreBricksOffline(s.node, args[0],
			args[1:], strict)
		if err != nil {
			return err
		}
		if err := printList(online); err != nil {
			return err
		}
		if !offline {
			return fmt.Errorf("Bricks of volume %v are online", args[0])
		}
		return nil
	},
}

var brickChangedCommand = &cobra.Command{
	Use:     "changed VOLUME BRICK...",
	Short:   "Check if the bricks of a volume differ from a list",
	Long:    "Check if the bricks of a volume differ from a list",
	Example: "  $ redant brick changed vol1 s1:/bricks/vol1-0 s2:/bricks/vol1-1",
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

		changed, err := s.brickOps().CheckIfBricksListChanged(s.node, volname, args[1:])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJson(changed)
		}
		fmt.Fprintln(stdout, changed)
		return nil
	},
}
