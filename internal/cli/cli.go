package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// versionInfo holds build-time version metadata, wired in via
// SetVersion from ldflags in cmd/orchctl/main.go.
type versionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the orchctl CLI application with all wired dependencies.
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Path to the orchd client bus socket; defaults via defaultSocketPath.
	socketPath string

	// Runtime state
	verbose bool

	versionInfo versionInfo
}

// New creates a new CLI application.
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application under a context that a SignalHandler
// cancels on SIGINT/SIGTERM. Long-running subcommands (watch, dashboard)
// read this from cmd.Context() to unwind and close their client
// connection instead of being killed mid-stream; quick one-shot
// subcommands simply ignore it.
func (a *App) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	handler := NewSignalHandler(cancel)
	handler.OnShutdown(func() {
		fmt.Fprintln(os.Stderr, "\norchctl: interrupted, closing connection to orchd...")
	})
	handler.Start()
	defer handler.Stop()

	return a.rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version info for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = versionInfo{Version: version, Commit: commit, Date: date}
}

// SocketPath returns the bus socket to dial, falling back to
// defaultSocketPath if --socket was never set.
func (a *App) SocketPath() string {
	if a.socketPath == "" {
		return defaultSocketPath()
	}
	return a.socketPath
}

// setupRootCmd configures the root Cobra command.
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "orchctl",
		Short: "Control client for the orchfleet node orchestrator",
		Long: `orchctl talks to a running orchd daemon over its bus socket,
dispatching fleet-wide isolate and drain jobs and inspecting their progress.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().StringVar(&a.socketPath, "socket", defaultSocketPath(),
		"Path to the orchd client bus socket")
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")

	a.rootCmd.AddCommand(
		NewIsolateCmd(a),
		NewDrainCmd(a),
		NewJobsCmd(a),
		NewNodesCmd(a),
		NewWatchCmd(a),
		NewStopJobCmd(a),
		NewDashboardCmd(a),
		NewVersionCmd(a),
	)
}
