package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scenekit/scenesync/internal/recon"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded reconcile pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if p.Journal == "" {
				return fmt.Errorf("project has no journal configured")
			}

			journal := recon.NewJournal(p.Journal)
			if err := journal.Open(); err != nil {
				return err
			}
			defer journal.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			count, err := journal.Count(ctx)
			if err != nil {
				return err
			}
			last, err := journal.Last(ctx)
			if err != nil {
				return err
			}
			if last == nil {
				fmt.Fprintln(out, "no reconcile passes recorded")
				return nil
			}

			fmt.Fprintf(out, "%s passes recorded: %d\n", cyan("journal"), count)
			fmt.Fprintf(out, "last pass #%d at %s (%s)\n",
				last.ID,
				last.FinishedAt.Local().Format(time.RFC3339),
				last.FinishedAt.Sub(last.StartedAt).Round(time.Millisecond))
			fmt.Fprintf(out, "  %s %d  %s %d  %s %d  renames %d\n",
				green("create"), last.Creates,
				cyan("update"), last.Updates,
				red("delete"), last.Deletes,
				last.Renames)
			for _, rename := range last.Summary.Renames {
				fmt.Fprintf(out, "  rename %s -> %s\n", rename.FromPath, rename.ToPath)
			}
			return nil
		},
	}
}
