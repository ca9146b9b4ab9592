package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/mcpserver"
	"github.com/mark3labs/stepwise/internal/wizard"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard as MCP tools",
	Long: `Serve the configured page flow over MCP (streamable HTTP).

Clients read the current page with wizard_state, fill fields with
wizard_set_field and navigate with wizard_next, wizard_previous and
wizard_cancel. wizard_restart begins a fresh run. Finished and cancelled runs
run hooks and are recorded like terminal runs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "a", "127.0.0.1:7331", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	orch, err := startOrchestrator(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := orch.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpserver.New(orch.NewRun,
		mcpserver.WithAddr(serveFlags.addr),
		mcpserver.WithTerminalHook(func(w *wizard.Wizard) {
			if _, _, err := orch.Complete(context.Background(), w); err != nil {
				logger.Error("Recording run %s failed: %v", w.RunID(), err)
			}
		}),
	)
	if _, err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Serving MCP at %s\n", srv.URL())

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	return srv.Stop()
}
