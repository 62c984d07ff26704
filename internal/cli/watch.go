package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/orchfleet/orchd/internal/client"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the 'watch' command for following a job's
// state until it finishes and is removed.
func NewWatchCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Watch a job's state until it finishes",
		Long: `Watch a job's state transitions in real time until the job
finishes and the daemon removes it from its queue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			return watchJob(cmd.Context(), a.SocketPath(), uint32(id))
		},
	}

	return cmd
}

// watchJob connects to the daemon and prints state transitions for id
// until it is removed or ctx is cancelled.
func watchJob(ctx context.Context, socketPath string, id uint32) error {
	c, err := client.New(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.WatchJob(ctx, id, displaySnapshot)
}

func displaySnapshot(s client.JobSnapshot) {
	if s.Result != nil {
		fmt.Printf("job %d: %s (%s)\n", s.ID, s.State, *s.Result)
		return
	}
	fmt.Printf("job %d: %s\n", s.ID, s.State)
}
