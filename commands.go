package main

import (
	"errors"
	"fmt"
	"time"

	"thoughtforest/internal/models"
	"thoughtforest/internal/scheduler"
	"thoughtforest/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, and the weekly scheduler when enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load("api")
			if err != nil {
				return err
			}
			defer closeContainer(c)

			ctx, stop := signalContext()
			defer stop()

			if c.Config.SchedulerEnabled {
				s, err := scheduler.New(c.Config.WeeklySchedule, c.Trigger)
				if err != nil {
					return err
				}
				s.Start(ctx)
				defer s.Stop()
			}

			fiberApp := c.NewFiberApp()
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", c.Config.Port).Msg("starting server")
				errCh <- fiberApp.Listen(c.Config.Port)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down server")
			if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
				log.Error().Err(err).Msg("error during fiber shutdown")
			}
			log.Info().Msg("server gracefully stopped")
			return nil
		},
	}
}

func newSummarizeWeeklyCmd(load loader) *cobra.Command {
	var date string
	var force bool

	cmd := &cobra.Command{
		Use:   "summarize-weekly",
		Short: "Run one tick of the weekly trigger and print its status line",
		Long: "Summarizes each user's journal for the current week when run on a Monday, " +
			"and does nothing on other days unless --force is given. Always exits 0 once started; " +
			"per-user failures are reported in the status line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now().UTC()
			if date != "" {
				d, err := models.ParseDate(date)
				if err != nil {
					return err
				}
				at = d.Time
			}

			c, err := load("summarize-weekly")
			if err != nil {
				return err
			}
			defer closeContainer(c)

			ctx, stop := signalContext()
			defer stop()

			res := c.Trigger.TickAt(ctx, at, force)
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference date as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&force, "force", false, "run even when the date is not a Monday")
	return cmd
}

func newWorkerCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued summary jobs and outgoing mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load("worker")
			if err != nil {
				return err
			}
			defer closeContainer(c)

			if c.Broker == nil {
				return errors.New("worker needs RABBITMQ_URL")
			}

			ctx, stop := signalContext()
			defer stop()

			w := worker.New(c.Broker, c.Aggregator, c.Transport, c.Config.Summary.Concurrency)
			return w.Run(ctx)
		},
	}
}

func newCreateStaffCmd(load loader) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a verified staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load("create-staff")
			if err != nil {
				return err
			}
			defer closeContainer(c)

			user, err := c.Auth.CreateStaff(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created staff user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
