package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/stepwise/internal/logger"
	tuiwizard "github.com/mark3labs/stepwise/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wizard in the terminal",
	Long: `Run the configured page flow as a full-screen wizard.

When the run finishes or is cancelled, the matching hooks from the hooks file
run and a record of the run is written under the data directory.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	orch, err := startOrchestrator(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := orch.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	ctx := cmd.Context()
	w, err := orch.NewRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	var opts []tuiwizard.Option
	if root, ok := orch.CancelDialog(ctx); ok {
		opts = append(opts, tuiwizard.WithCancelDialog(root))
	}
	if err := tuiwizard.Run(w, opts...); err != nil {
		logger.Error("Wizard TUI failed: %v", err)
		return err
	}

	rec, path, err := orch.Complete(ctx, w)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s %s on step %d of %d.\n", rec.RunID, rec.State, rec.Step, rec.Steps)
	if rec.HookOutput != "" {
		fmt.Printf("\n%s\n", rec.HookOutput)
	}
	fmt.Printf("Record written to: %s\n", path)
	return nil
}
