package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scenekit/scenesync/internal/project"
	"github.com/scenekit/scenesync/internal/recon"
)

func init() {
	rootCmd.AddCommand(newReconcileCmd())
}

func newReconcileCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "reconcile <incoming-dir>",
		Short: "Compute the edits that turn the workspace tree into an incoming snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			p, err := loadProject(cmd)
			if err != nil {
				return err
			}

			live, err := p.Snapshot()
			if err != nil {
				return err
			}
			incomingProject := &project.Project{
				Name:      p.Name,
				RootClass: p.RootClass,
				Workspace: args[0],
			}
			if err := incomingProject.Validate(); err != nil {
				return err
			}
			incoming, err := incomingProject.Snapshot()
			if err != nil {
				return err
			}

			ignore, err := recon.NewIgnoreList(p.Ignore)
			if err != nil {
				return fmt.Errorf("project ignore patterns: %w", err)
			}

			cfg := recon.DriverConfig{Workspace: p.Workspace, Ignore: ignore}
			if p.Journal != "" {
				journal := recon.NewJournal(p.Journal)
				if err := journal.Open(); err != nil {
					return err
				}
				defer journal.Close()
				cfg.Journal = journal
			}

			driver := recon.NewDriver(live, cfg)
			edits, err := driver.Reconcile(cmd.Context(), incoming)
			if err != nil {
				return err
			}

			creates, updates, deletes := edits.Counts()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d  %s %d  %s %d  renames %d\n",
				green("create"), creates,
				cyan("update"), updates,
				red("delete"), deletes,
				len(edits.Renames))
			for _, rename := range edits.Renames {
				fmt.Fprintf(out, "  rename %s -> %s\n", rename.FromPath, rename.ToPath)
			}

			if edits.Empty() {
				fmt.Fprintln(out, "workspace is up to date")
				return nil
			}
			if !apply {
				slog.Info("dry run, pass --apply to record the pass")
				return nil
			}
			return driver.Apply(cmd.Context(), edits)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "apply the computed edits and journal the pass")
	return cmd
}
