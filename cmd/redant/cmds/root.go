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
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	node       string
	jsonOutput bool
	version    string

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var RootCmd = &cobra.Command{
	Use:   "redant",
	Short: "Brick operations on a GlusterFS cluster under test",
	Long: "Plans and runs add-brick, remove-brick, replace-brick and reset-brick\n" +
		"on a GlusterFS cluster, keeps track of the bricks of every volume and\n" +
		"answers questions about their state.",
	Example: `  * Grow a replica 2 volume to replica 3:
      $ redant --config redant.json brick add vol1 --replica 2

  * List the offline bricks of a volume:
      $ redant brick status vol1 --state offline`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Fprintf(stdout, "redant %v\n", version)
		} else {
			cmd.Usage()
		}
	},
}

func init() {
	defaultConfig := os.Getenv("REDANT_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "redant.json"
	}

	RootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfig,
		"\n\tConfiguration file. Can also be set using the"+
			"\n\tenvironment variable REDANT_CONFIG")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"\n\tLog level (none, critical, error, warning, info, debug)."+
			"\n\tOverrides the configuration file")
	RootCmd.PersistentFlags().StringVar(&node, "node", "",
		"\n\tServer the gluster commands are run on."+
			"\n\tDefaults to the first server of the configuration")
	RootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"\n\tPrint results as JSON")
	RootCmd.Flags().Bool("version", false, "\n\tPrint version")
}

// NewRedantCli returns the root command writing to out and errOut.
func NewRedantCli(redantVersion string, out io.Writer, errOut io.Writer) *cobra.Command {
	version = redantVersion
	stdout = out
	stderr = errOut
	RootCmd.SetOut(out)
	RootCmd.SetErr(errOut)
	return RootCmd
}
