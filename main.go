package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"thoughtforest/internal/app"
	"thoughtforest/internal/config"
	"thoughtforest/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "thoughtforest",
		Short:         "Voice journal backend with weekly summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file to load before the environment")

	load := func(service string) (*app.Container, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		logger.Init(service, cfg.IsDev(), cfg.LogLevel)
		return app.Open(cfg)
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newSummarizeWeeklyCmd(load),
		newWorkerCmd(load),
		newCreateStaffCmd(load),
	)
	return rootCmd
}

type loader func(service string) (*app.Container, error)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func closeContainer(c *app.Container) {
	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
