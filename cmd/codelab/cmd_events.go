package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/codelab/internal/queue"
	"github.com/spf13/cobra"
)

var tailJSON bool

func init() {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Work with published run events",
	}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Consume run events from the queue and print them",
		Long: `tail consumes the run event queue until interrupted. Consumed events are
acknowledged and removed from the queue.`,
		RunE: runEventsTail,
	}
	tailCmd.Flags().BoolVar(&tailJSON, "json", false, "print raw JSON events")
	eventsCmd.AddCommand(tailCmd)

	rootCmd.AddCommand(eventsCmd)
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	conn, err := queue.NewConnection(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	consumer := queue.NewConsumer(conn, func(ctx context.Context, ev queue.RunEvent) error {
		return printEvent(out, ev, tailJSON)
	}, logger)

	ctx := cmd.Context()
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	defer consumer.Stop()

	<-ctx.Done()
	return nil
}

func printEvent(w io.Writer, ev queue.RunEvent, raw bool) error {
	if raw {
		return json.NewEncoder(w).Encode(ev)
	}

	status := "fail"
	if ev.Success {
		status = "pass"
	}
	line := fmt.Sprintf("%s  %-18s %-8s %s  %s",
		ev.OccurredAt.Format("15:04:05"), ev.Type, ev.SessionID.String()[:8], ev.ExerciseID, status)
	if ev.Failure != "" {
		line += " (" + ev.Failure + ")"
	}
	if ev.Total > 0 {
		line += fmt.Sprintf("  %d/%d", ev.Completed, ev.Total)
	}
	if !ev.Current {
		line += "  [stale]"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
