package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/felixgeelhaar/codelab/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	homeDir  string
	logLevel string
	rootCmd  = &cobra.Command{
		Use:   "codelab",
		Short: "CodeLab - interactive coding exercises",
		Long: `CodeLab lets you pick a coding exercise, edit a solution and run it
against a mock evaluator while tracking which exercises you have completed.

Start the browser UI with 'codelab daemon start', or work in the terminal
with 'codelab tui'.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "codelab directory (default ~/.codelab or $CODELAB_HOME)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for commands that log to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codelab %s\n", Version)
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// codelabDir resolves --home before falling back to the default location
func codelabDir() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	return config.CodelabDir()
}

// loadConfig reads and validates the local configuration
func loadConfig() (*config.LocalConfig, error) {
	dir, err := codelabDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadLocalConfigFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns a stderr text logger, or a silent one for full-screen commands
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
