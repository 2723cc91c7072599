package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bromq-dev/mqttc/pkg/packet"
	"github.com/bromq-dev/mqttc/pkg/topic"
)

func publishCmd(opts *options) *cobra.Command {
	var (
		name    string
		message string
		stdin   bool
		qos     uint8
		retain  bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish one message",
		Long: `Publish one message and disconnect. The payload is taken from
--message, or from standard input with --stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--topic is required")
			}
			if err := topic.ValidateName(name); err != nil {
				return fmt.Errorf("--topic: %w", err)
			}
			if !packet.QoS(qos).Valid() {
				return packet.ErrInvalidQoS
			}

			payload := []byte(message)
			if stdin {
				var err error
				if payload, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			c, err := opts.session(ctx, nil)
			if err != nil {
				return err
			}
			err = c.PublishMessage(ctx, &packet.Publish{
				Topic:   name,
				QoS:     packet.QoS(qos),
				Retain:  retain,
				Payload: payload,
			})
			return finish(ctx, c, err)
		},
	}

	cmd.Flags().StringVarP(&name, "topic", "t", "", "Topic to publish to")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message payload")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read the payload from standard input")
	cmd.Flags().Uint8VarP(&qos, "qos", "q", 0, "Quality of service (0, 1 or 2)")
	cmd.Flags().BoolVarP(&retain, "retain", "r", false, "Ask the server to retain the message")

	return cmd
}
