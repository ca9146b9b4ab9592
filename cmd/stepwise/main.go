package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/stepwise/internal/config"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/orchestrator"
	"github.com/mark3labs/stepwise/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ ▀█▀ █▀▀ █▀█ █ █ █ █ █▀▀ █▀▀"
	logoText2 = "▄▄█  █  ██▄ █▀▀ ▀▄▀▄▀ █ ▄▄█ ██▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Multi-page setup wizards with validation, hooks and an MCP surface",
}

// Flags shared by every command that builds runs. Set flags win over
// environment and config files.
var rootFlags struct {
	pagesDir string
	flow     []string
	cache    string
	dataDir  string
	watch    bool
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

stepwise drives multi-page setup wizards. Pages are YAML descriptors with a
markdown body, bound to built-in controllers that validate input before the
wizard moves forward. Runs are presented in a full-screen TUI or served as
MCP tools, and finished or cancelled runs are recorded and can trigger
shell hooks.`

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.pagesDir, "pages-dir", "", "Directory of page descriptors (default: built-in pages)")
	pf.StringSliceVar(&rootFlags.flow, "flow", nil, "Page order, e.g. welcome,login,finish")
	pf.StringVar(&rootFlags.cache, "cache", "", "Content cache: memory or nats")
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for run records and NATS storage")
	pf.BoolVar(&rootFlags.watch, "watch", false, "Reload page descriptors when they change on disk")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig merges flags over the loaded configuration and configures
// logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("pages-dir") {
		cfg.PagesDir = rootFlags.pagesDir
	}
	if flags.Changed("flow") {
		cfg.Flow = rootFlags.flow
	}
	if flags.Changed("cache") {
		cfg.Cache = rootFlags.cache
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = rootFlags.dataDir
	}
	if flags.Changed("watch") {
		cfg.Watch = rootFlags.watch
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, cfg.Validate()
}

// startOrchestrator loads configuration and starts an orchestrator. Callers
// own the Stop.
func startOrchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	orch, err := orchestrator.New(orchestrator.Config{Config: *cfg})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	if err := orch.Start(); err != nil {
		return nil, fmt.Errorf("failed to start orchestrator: %w", err)
	}
	return orch, nil
}
