/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Seednode/scorebox/scoreboard"
	"github.com/Seednode/scorebox/tui"
)

func newPlayCmd(cfg *Config) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Keep score in the terminal instead of the browser.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = io.Discard
			if cfg.verbose {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()

				w = f
			}

			logger := newLogger(cfg, w)

			store, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger.Info("START: Storage ready", "backend", cfg.storage, "path", cfg.storagePath(), "key", cfg.storageKey)

			ctx := cmd.Context()

			board := scoreboard.Open(ctx, scoreboard.NewPersister(store, cfg.storageKey, logger))

			return tui.Run(ctx, board)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalize)

	fs.StringVar(&logFile, "log-file", "scorebox.log", "file to write logs to when --verbose is set (env: SCOREBOX_LOG_FILE)")

	return cmd
}
