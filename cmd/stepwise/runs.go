package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		recs, err := orch.Runs()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTATE\tPAGE\tSTEP\tENDED")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", r.RunID, r.State, r.Page, r.Step, r.Steps, r.EndedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run record and, with the nats cache, its event history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := startOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Stop() }()

		rec, err := orch.Run(args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Print(string(out))

		journal := orch.Journal()
		if journal == nil {
			return nil
		}
		events, err := journal.History(cmd.Context(), rec.RunID)
		if err != nil {
			return err
		}
		fmt.Printf("\nevents (%d):\n", len(events))
		for _, ev := range events {
			line := fmt.Sprintf("  %-18s %s (%d/%d) %s", ev.Type, ev.Page, ev.To+1, ev.Length, ev.Actions.Labels())
			if ev.Message != "" {
				line += ": " + ev.Message
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
