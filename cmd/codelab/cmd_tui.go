package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/codelab/internal/app"
	"github.com/felixgeelhaar/codelab/internal/tui"
	"github.com/spf13/cobra"
)

var (
	tuiExercise string
	tuiStyle    string
)

func init() {
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Work through exercises in the terminal",
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&tuiExercise, "exercise", "", "exercise to select first")
	tuiCmd.Flags().StringVar(&tuiStyle, "style", "dark", "description style (dark, light, notty)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// The alt screen owns the terminal, so nothing may log to stderr
	a, err := app.New(ctx, cfg, app.Options{Logger: newLogger(io.Discard)})
	if err != nil {
		return err
	}
	defer a.Close()

	model, err := tui.NewModel(ctx, a.Sessions, tui.Config{
		ExerciseID: tuiExercise,
		Style:      tuiStyle,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		st := m.State()
		fmt.Fprintf(cmd.OutOrStdout(), "Completed %d/%d exercises (%d%%)\n",
			st.Progress.Completed, st.Progress.Total, st.Percent())
	}
	return nil
}
