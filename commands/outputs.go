package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"aigen/media"
)

func newOutputsCmd(app *App) *cobra.Command {
	c := &cobra.Command{
		Use:   "outputs",
		Short: "Manage generated artifacts",
	}
	c.AddCommand(newOutputsListCmd(app), newOutputsClearCmd(app))
	return c
}

func newOutputsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generated artifacts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifacts, err := media.ListArtifacts(app.Config.OutputDir)
			if err != nil {
				return fmt.Errorf("list artifacts: %w", err)
			}
			if len(artifacts) == 0 {
				cmd.Println("no artifacts in", app.Config.OutputDir)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSIZE\tMODIFIED")
			for _, a := range artifacts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					a.Name, a.Kind, formatSize(a.Size), a.ModTime.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newOutputsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all generated artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := media.ClearArtifacts(app.Config.OutputDir)
			if err != nil {
				return fmt.Errorf("clear artifacts: %w", err)
			}
			cmd.Println(color.GreenString("removed %d artifact(s)", removed))
			return nil
		},
	}
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
