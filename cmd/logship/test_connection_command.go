package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"logship/internal/buildlog"
	"logship/internal/transport"
)

func newTestConnectionCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Probe the configured log transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			factory := transport.NewFactory(cfg, logger)
			writer, diagnostic := factory(cmd.Context(), &buildlog.Build{ID: "probe"})
			if diagnostic != "" {
				fmt.Fprintln(cmd.OutOrStdout(), diagnostic)
			}
			if writer.ConnectionBroken() {
				return errors.New("log transport is unreachable")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Transport %s reachable at %s\n",
				cfg.Transport.Kind, cfg.Transport.Endpoint)
			return nil
		},
	}
}
