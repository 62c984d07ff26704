package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/orchfleet/orchd/internal/client"
	"github.com/spf13/cobra"
)

// NewJobsCmd creates the 'jobs' command for listing live jobs.
func NewJobsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs the daemon currently has live",
		Long: `List every job orchd currently has live, running or waiting.

Finished jobs are removed from the daemon's queue as soon as they
complete, so this only ever shows work still in flight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.SocketPath())
			if err != nil {
				return err
			}
			defer c.Close()

			jobs, err := c.ListJobs(cmd.Context())
			if err != nil {
				return err
			}

			displayJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}

	return cmd
}

// displayJobs renders jobs as a simple aligned table.
func displayJobs(w io.Writer, jobs []client.JobSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", j.ID, j.Type, j.State)
	}
	tw.Flush()
}
