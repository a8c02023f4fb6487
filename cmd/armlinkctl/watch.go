package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robokit/armlink/internal/config"
	"github.com/robokit/armlink/internal/link"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Connect to the controller and stream state updates until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := link.NewClient(logger, link.NewZMQTransport())
			defer client.Close()
			events := client.Subscribe(64)

			if err := client.Connect(ctx, config.LinkConfig(cfg)); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					client.Disconnect()
					return nil
				case ev := <-events:
					switch ev.Kind {
					case link.EventStateUpdate:
						st := ev.State
						logger.Info().
							Bool("enabled", st.Enabled).
							Bool("moving", st.Moving).
							Float64("x", st.Pose.X).
							Float64("y", st.Pose.Y).
							Float64("z", st.Pose.Z).
							Floats64("joints", st.JointPositions[:]).
							Msg("state")
					case link.EventStatusChanged:
						logger.Info().Str("status", string(ev.Status)).Str("reason", ev.Err).Msg("status changed")
						if ev.Status == link.StatusError {
							return errors.New(ev.Err)
						}
					case link.EventError:
						logger.Error().Str("reason", ev.Err).Msg("link error")
					case link.EventConnected:
						logger.Info().Msg("link up")
					case link.EventDisconnected:
						logger.Info().Msg("link down")
					}
				}
			}
		},
	}
}
