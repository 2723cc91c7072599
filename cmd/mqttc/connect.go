package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func connectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect, report the result, and disconnect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.session(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected as %s\n", c.ClientID())
			return finish(ctx, c, nil)
		},
	}
}
