// Command armlinkctl connects to a robot arm controller over its
// message-bus link: discover endpoints, stream telemetry, send commands.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robokit/armlink/internal/config"
	"github.com/robokit/armlink/internal/observability"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "armlinkctl",
		Short:         "Control and observe a robot arm over its message-bus link",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "armlink.toml", "path to the TOML config file")

	rootCmd.AddCommand(
		watchCmd(),
		sendCmd(),
		discoverCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func loadApp(cmd *cobra.Command) (config.AppConfig, zerolog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.AppConfig{}, zerolog.Logger{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.AppConfig{}, zerolog.Logger{}, err
	}
	logger := observability.InitLogger("armlinkctl", cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Metrics.Addr != "" {
		serveMetrics(logger, cfg.Metrics.Addr)
	}
	return cfg, logger, nil
}

func serveMetrics(logger zerolog.Logger, addr string) {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
}
