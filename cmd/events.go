/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pomotrack/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd tails completion events from the configured broker.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Log pomodoro completion events from the message broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(cfg.MQ.Backend) == "" {
			return errors.New("MQ_BACKEND is not configured")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Connect(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer func() {
			_ = queue.Close()
		}()

		logger.Info("consuming completion events", "operation", "events_consume", "channel", cfg.MQ.Channel)
		err = queue.ConsumeCompletions(ctx, func(ctx context.Context, event mq.CompletionEvent) error {
			logger.InfoContext(ctx, "pomodoro completed",
				"operation", "events_consume",
				"record_id", event.RecordID,
				"user_id", event.UserID,
				"created_at", event.CreatedAt,
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
