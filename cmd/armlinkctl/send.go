package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robokit/armlink/internal/config"
	"github.com/robokit/armlink/internal/link"
)

func sendCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "send <command>",
		Short: "Send one named command to the controller",
		Long: `Send one named command to the controller and disconnect.

Commands that move the arm accept --data with a JSON payload: a joint
6-tuple like "[90,0,-45,0,0,0]" (degrees) or a pose object like
'{"pose":{"x":150,"y":0,"z":250,"roll":0,"pitch":90,"yaw":0}}'
(millimeters and degrees).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadApp(cmd)
			if err != nil {
				return err
			}
			name := args[0]

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := link.NewClient(logger, link.NewZMQTransport())
			defer client.Close()

			switch name {
			case link.CmdConnect, link.CmdDisconnect, link.CmdReconnect:
				// Lifecycle commands manage the link themselves.
			case link.CmdEmergencyStop:
				// Best effort: the stop is attempted even if the
				// handshake fails.
				if err := client.Connect(ctx, config.LinkConfig(cfg)); err != nil {
					logger.Warn().Err(err).Msg("connect failed, attempting emergency stop anyway")
				}
			default:
				if err := client.Connect(ctx, config.LinkConfig(cfg)); err != nil {
					return err
				}
			}

			payload := json.RawMessage(data)
			if name == link.CmdConnect && data == "" {
				payload, _ = json.Marshal(map[string]any{
					"ipAddress": cfg.Controller.Host,
					"port":      cfg.Controller.Port,
				})
			}

			if err := client.Execute(ctx, name, payload); err != nil {
				return err
			}
			logger.Info().Str("command", name).Msg("command dispatched")
			client.Disconnect()
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload for the command")
	return cmd
}
