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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gluster/redant/server"
)

func init() {
	RootCmd.AddCommand(serveCommand)
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve the brick bookkeeping over HTTP",
	Long: "Serve the bricks of every volume, the directories waiting to be\n" +
		"cleaned and the metrics over HTTP",
	Example: "  $ redant --config redant.json serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		app := server.NewApp(s.store, s.volOps(), s.conf.AdminKey)
		srv := &http.Server{
			Addr:    s.conf.Listen,
			Handler: app.Handler(),
		}

		done := make(chan error, 1)
		go func() {
			done <- srv.ListenAndServe()
		}()
		fmt.Fprintf(stdout, "Listening on %v\n", s.conf.Listen)

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signals)

		select {
		case err := <-done:
			return err
		case <-signals:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
