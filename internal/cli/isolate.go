package cli

import (
	"fmt"

	"github.com/orchfleet/orchd/internal/client"
	"github.com/spf13/cobra"
)

// NewIsolateCmd creates the 'isolate' command, which fans out an
// Isolate(target) call to every connected node and prints the new
// job's id.
func NewIsolateCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isolate <target>",
		Short: "Isolate target on every connected node",
		Long: `Enqueue a fleet-wide isolate job: every currently connected node,
registered or not, receives an Isolate(target) call, and the job
finishes once all nodes have replied or timed out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.SocketPath())
			if err != nil {
				return err
			}
			defer c.Close()

			id, err := c.IsolateAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d\n", id)
			return nil
		},
	}

	return cmd
}

// NewDrainCmd creates the 'drain' command, the graceful counterpart
// of isolate: nodes are given graceSeconds on top of the daemon's
// per-call timeout before being treated as unresponsive.
func NewDrainCmd(a *App) *cobra.Command {
	var graceSeconds int

	cmd := &cobra.Command{
		Use:   "drain <target>",
		Short: "Drain target on every connected node",
		Long: `Enqueue a fleet-wide drain job: every currently connected node,
registered or not, receives a Drain(target) call whose reply deadline
is the grace period plus the daemon's per-call timeout, and the job
finishes once all nodes have replied or timed out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.SocketPath())
			if err != nil {
				return err
			}
			defer c.Close()

			id, err := c.DrainAll(cmd.Context(), args[0], graceSeconds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d\n", id)
			return nil
		},
	}
	cmd.Flags().IntVar(&graceSeconds, "grace", 0,
		"Grace period in seconds, added to the per-call timeout, before a node is treated as unresponsive (0 uses the daemon default)")

	return cmd
}
