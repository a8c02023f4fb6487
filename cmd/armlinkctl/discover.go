package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robokit/armlink/internal/config"
	"github.com/robokit/armlink/internal/link"
)

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Resolve the controller's dealer and telemetry endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			lc := config.LinkConfig(cfg)
			rendezvous := fmt.Sprintf("tcp://%s:%d", lc.Host, lc.Port)

			dealer, sub, err := link.Discover(context.Background(), link.NewZMQTransport(), rendezvous, lc.MessageTimeout)
			if err != nil {
				return err
			}
			fmt.Printf("rendezvous: %s\n", rendezvous)
			fmt.Printf("dealer:     %s\n", dealer.Addr())
			fmt.Printf("telemetry:  %s\n", sub.Addr())
			return nil
		},
	}
}
