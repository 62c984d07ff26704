package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/orchfleet/orchd/internal/client"
	"github.com/spf13/cobra"
)

// NewStopJobCmd creates the 'cancel' command for cancelling a waiting
// or running job.
func NewStopJobCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a waiting or running job",
		Long: `Cancel a job managed by the daemon, whether it is still
waiting in the queue or currently running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			return cancelJob(cmd.Context(), a.SocketPath(), uint32(id))
		},
	}

	return cmd
}

// cancelJob connects to the daemon and cancels the specified job.
func cancelJob(ctx context.Context, socketPath string, id uint32) error {
	c, err := client.New(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.CancelJob(ctx, id); err != nil {
		return err
	}

	fmt.Printf("job %d cancelled\n", id)
	return nil
}
