package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/orchfleet/orchd/internal/cli/tui"
	"github.com/orchfleet/orchd/internal/client"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewDashboardCmd creates the 'dashboard' command: a live full-screen
// view of every node and job the daemon currently knows about.
// Falls back to a line-oriented watch loop when stdout isn't a TTY,
// mirroring the teacher's run command's TUI/no-TUI split.
func NewDashboardCmd(a *App) *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show a live view of the fleet's nodes and jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			useTUI := !noTUI && term.IsTerminal(int(os.Stdout.Fd()))
			if useTUI {
				return runDashboardTUI(cmd.Context(), a.SocketPath())
			}
			return runDashboardPlain(cmd.Context(), a.SocketPath())
		},
	}
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the full-screen dashboard even on a TTY")

	return cmd
}

// runDashboardTUI drives a bubbletea program fed by the daemon's
// JobNew/State/JobRemoved signals and a periodic Health poll for
// fleet size.
func runDashboardTUI(ctx context.Context, socketPath string) error {
	c, err := client.New(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()

	model := tui.NewModel()
	model.Connected = true
	program := tea.NewProgram(model, tea.WithAltScreen())
	logWriter := tui.NewLogWriter(program)
	defer logWriter.Close()

	c.SubscribeJobs(
		func(s client.JobSnapshot) {
			fmt.Fprintf(logWriter, "job %d: new (%s)\n", s.ID, s.Type)
			program.Send(tui.JobNewMsg{ID: s.ID, Type: s.Type})
		},
		func(s client.JobSnapshot) {
			fmt.Fprintf(logWriter, "job %d: %s\n", s.ID, s.State)
			program.Send(tui.JobStateMsg{ID: s.ID, State: s.State})
		},
		func(s client.JobSnapshot) {
			result := "done"
			if s.Result != nil {
				result = *s.Result
			}
			fmt.Fprintf(logWriter, "job %d: removed (%s)\n", s.ID, result)
			program.Send(tui.JobRemovedMsg{ID: s.ID, Result: result})
		},
	)

	if jobs, err := c.ListJobs(ctx); err == nil {
		for _, j := range jobs {
			program.Send(tui.JobNewMsg{ID: j.ID, Type: j.Type})
			program.Send(tui.JobStateMsg{ID: j.ID, State: j.State})
		}
	}

	stopPoll := make(chan struct{})
	go pollFleetSize(ctx, c, program, stopPoll)
	go func() {
		select {
		case <-c.Closed():
			program.Send(tui.DoneMsg{})
		case <-stopPoll:
		}
	}()
	defer close(stopPoll)

	_, err = program.Run()
	return err
}

func pollFleetSize(ctx context.Context, c *client.Client, program *tea.Program, stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		if info, err := c.Health(ctx); err == nil {
			program.Send(tui.FleetMsg{TotalNodes: info.TotalNodes, NamedNodes: info.NamedNodes})
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// runDashboardPlain prints job transitions as plain log lines, for
// non-TTY stdout (piped output, CI logs).
func runDashboardPlain(ctx context.Context, socketPath string) error {
	c, err := client.New(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()

	info, err := c.Health(ctx)
	if err == nil {
		fmt.Printf("fleet: %d nodes (%d named)\n", info.TotalNodes, info.NamedNodes)
	}

	c.SubscribeJobs(
		func(s client.JobSnapshot) { fmt.Printf("job %d: new (%s)\n", s.ID, s.Type) },
		func(s client.JobSnapshot) { fmt.Printf("job %d: %s\n", s.ID, s.State) },
		func(s client.JobSnapshot) {
			result := "done"
			if s.Result != nil {
				result = *s.Result
			}
			fmt.Printf("job %d: removed (%s)\n", s.ID, result)
		},
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.Closed():
		return fmt.Errorf("connection to orchd closed")
	}
}
