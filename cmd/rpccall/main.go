// rpccall is a small command line front end for the failover JSON-RPC
// client: it issues a single call or fans a batch of parameter sets
// out over the configured nodes.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rpcfailover/client"
	"rpcfailover/internal/config"
)

var (
	flagConfig    string
	flagEndpoints []string
	flagLogLevel  string
	flagTimeout   time.Duration

	rootCmd = &cobra.Command{
		Use:   "rpccall",
		Short: "failover JSON-RPC client",
		Long: `rpccall issues JSON-RPC calls against a list of redundant nodes,
rotating to the next node on failure and retrying up to a bounded
budget.`,
		SilenceUsage: true,
	}
)

func main() {
	// A .env file may carry RPCCALL_ENDPOINTS for local setups.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringArrayVarP(&flagEndpoints, "endpoint", "e", nil, "node URL (repeatable, overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "per-request timeout (overrides config)")

	rootCmd.AddCommand(callCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient assembles a client from the config file, environment, and
// flags, flags winning.
func newClient() (*client.Client, zerolog.Logger, error) {
	cfg := &config.Config{}
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		cfg = loaded
	}

	if env := os.Getenv("RPCCALL_ENDPOINTS"); env != "" && len(cfg.Endpoints) == 0 {
		cfg.Endpoints = strings.Split(env, ",")
	}
	if len(flagEndpoints) > 0 {
		cfg.Endpoints = flagEndpoints
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := setupLogger(cfg.LogLevel)

	clientCfg := cfg.ToClientConfig(logger)
	if flagTimeout > 0 {
		clientCfg.Timeout = flagTimeout
	}

	c, err := client.New(clientCfg)
	if err != nil {
		return nil, logger, err
	}
	return c, logger, nil
}

// setupLogger configures the zerolog logger.
func setupLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
}
