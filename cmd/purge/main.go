package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	configPath string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "site-purge",
		Short:         "Bulk purge of the back office collections",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(config.ResolvePath(configPath))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newCollectionsCmd(),
	)
	return rootCmd
}

// Load the configuration and initialize the logger.
func setup(path string) error {

	config.Current = config.NewConfig()
	if err := config.Current.LoadConfig(path); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Logger initiatilization
	level := log.FromString(config.Current.Logging.Level)
	log.SetLogLevel(level)
	if config.Current.Logging.Format == "json" {
		log.SetLogFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetLogFormatter(&logrus.TextFormatter{
			FullTimestamp: false,
			DisableColors: false,
		})
	}
	log.SetOutput(os.Stderr)
	log.Debug(fmt.Sprintf("log level: %s (%s)", log.GetLogLevel(), config.Current.Logging.Level))

	config.Current.LogConfig()
	return nil
}
