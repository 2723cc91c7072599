package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func pingCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Measure PINGREQ round trips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.session(ctx, nil)
			if err != nil {
				return err
			}

			for i := 0; i < count; i++ {
				start := time.Now()
				if err := c.Ping(ctx); err != nil {
					return finish(ctx, c, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pong %d: %v\n", i+1, time.Since(start).Round(time.Microsecond))
			}
			return finish(ctx, c, nil)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 1, "Number of pings")

	return cmd
}
