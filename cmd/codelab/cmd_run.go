package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/codelab/internal/app"
	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/spf13/cobra"
)

var runStarter bool

func init() {
	runCmd := &cobra.Command{
		Use:   "run EXERCISE [FILE]",
		Short: "Run a solution once and print the result",
		Long: `Run submits FILE (or stdin when FILE is "-" or omitted) as the solution
to EXERCISE and prints the evaluator's verdict.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runRun,
	}
	runCmd.Flags().BoolVar(&runStarter, "starter", false, "submit the exercise's starter code")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, app.Options{Logger: newLogger(cmd.ErrOrStderr()), PublishEvents: true})
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.Sessions.Create(ctx, session.CreateRequest{ExerciseID: args[0]})
	if err != nil {
		return err
	}

	code := st.Editor.Code
	if !runStarter {
		file := "-"
		if len(args) == 2 {
			file = args[1]
		}
		if code, err = readSolution(file, cmd.InOrStdin()); err != nil {
			return err
		}
	}

	st, err = a.Sessions.Run(ctx, st.ID, code)
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), st)
	if st.Result != nil && !st.Result.Success {
		return fmt.Errorf("run failed")
	}
	return nil
}

func readSolution(file string, stdin io.Reader) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read solution: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, st session.State) {
	if st.Selected != nil {
		fmt.Fprintf(w, "Exercise: %s (%s)\n\n", st.Selected.Title, st.Selected.ID)
	}

	r := st.Result
	if r == nil {
		fmt.Fprintln(w, "No result")
		return
	}

	verdict := "✗ Failed"
	if r.Success {
		verdict = "✓ Passed"
	}
	fmt.Fprint(w, verdict)
	if r.HasExecutionTime() {
		fmt.Fprintf(w, " in %dms", r.ExecutionTimeMS)
	}
	fmt.Fprintln(w)

	output := r.Output
	if output == "" {
		output = "No output"
	}
	fmt.Fprintf(w, "\nOutput:\n%s\n", indent(output))
	if r.HasError() {
		fmt.Fprintf(w, "\nError:\n%s\n", indent(r.Error))
	}
	if r.HasSuggestion() {
		fmt.Fprintf(w, "\nSuggestion: %s\n", r.Suggestion)
	}
	if r.Failure == domain.FailureEvaluator {
		fmt.Fprintln(w, "\nThe evaluator could not grade this run.")
	}

	fmt.Fprintf(w, "\nProgress: %d/%d %s %d%%\n",
		st.Progress.Completed, st.Progress.Total, renderProgressBar(st.Percent(), 20), st.Percent())
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
