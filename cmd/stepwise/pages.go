package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Inspect and edit page descriptors",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List page and dialog descriptors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		descs, err := orch.Source().List(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTYLE\tCONTROLLER\tTITLE")
		for _, d := range descs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Style, d.Controller, d.Title)
		}
		return tw.Flush()
	},
}

var pagesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a page or dialog the way the wizard shows it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		ctx := cmd.Context()
		id := page.ID(args[0])
		d, err := orch.Source().Load(ctx, id)
		if err != nil {
			return err
		}
		kind := page.KindPage
		if d.Style == page.StyleDialog {
			kind = page.KindDialog
		}
		r, err := orch.Resolver().Resolve(ctx, kind, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n%s\n", r.Root.Title, r.Root.Body)
		return nil
	},
}

var pagesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve every descriptor and the configured flow",
	Long: `Resolve every descriptor and build a run over the configured flow.

Reports descriptors whose controller is unknown and flow entries that are
missing or are not pages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		ctx := cmd.Context()
		descs, err := orch.Source().List(ctx)
		if err != nil {
			return err
		}

		var errs []error
		for _, d := range descs {
			kind := page.KindPage
			if d.Style == page.StyleDialog {
				kind = page.KindDialog
			}
			if _, err := orch.Resolver().Resolve(ctx, kind, d.ID); err != nil {
				fmt.Printf("✗ %s: %v\n", d.ID, err)
				errs = append(errs, err)
				continue
			}
			fmt.Printf("✓ %s\n", d.ID)
		}

		if _, err := orch.NewRun(ctx); err != nil {
			fmt.Printf("✗ flow: %v\n", err)
			errs = append(errs, err)
		} else {
			fmt.Println("✓ flow")
		}
		return errors.Join(errs...)
	},
}

var pagesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Open a page descriptor in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		src := orch.Source()
		if src.Dir() == "" {
			return errors.New("built-in pages cannot be edited; set pages_dir to a directory of descriptors")
		}
		d, err := src.Load(cmd.Context(), page.ID(args[0]))
		if err != nil {
			return err
		}

		ed, err := editor.Command("stepwise", src.Path(d))
		if err != nil {
			return fmt.Errorf("finding editor: %w", err)
		}
		ed.Stdin = os.Stdin
		ed.Stdout = os.Stdout
		ed.Stderr = os.Stderr
		return ed.Run()
	},
}

func init() {
	pagesCmd.AddCommand(pagesListCmd)
	pagesCmd.AddCommand(pagesShowCmd)
	pagesCmd.AddCommand(pagesCheckCmd)
	pagesCmd.AddCommand(pagesEditCmd)
}
