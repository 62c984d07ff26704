package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orchfleet/orchd/internal/cli/tui"
	"github.com/orchfleet/orchd/internal/config"
	"github.com/orchfleet/orchd/internal/daemon"
	tea "github.com/charmbracelet/bubbletea"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "/etc/orchd/config.yaml", "Path to orchd's YAML config file")
	printVersion := flag.Bool("version", false, "Print version and exit")
	runTUI := flag.Bool("tui", false, "Run a foreground dashboard fed directly by the daemon's event bus")
	flag.Parse()

	if *printVersion {
		fmt.Printf("orchd version %s (%s)\n", version, commit)
		return
	}

	if err := run(*configPath, *runTUI); err != nil {
		fmt.Fprintf(os.Stderr, "orchd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, runTUI bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d := daemon.New(cfg)

	if !runTUI {
		return d.Run(ctx)
	}
	return runWithTUI(ctx, d)
}

// runWithTUI runs the daemon and a local bubbletea dashboard in the
// same process, the bridge subscribed directly to the daemon's event
// bus rather than going through the client-bus transport (contrast
// with orchctl's "dashboard" command, which is a separate process).
func runWithTUI(ctx context.Context, d *daemon.Daemon) error {
	model := tui.NewModel()
	model.Connected = true
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge := tui.NewBridge(program)
	d.Events().Subscribe(bridge.Handler())

	go pollOrchdFleetSize(ctx, d, program)

	daemonErr := make(chan error, 1)
	go func() {
		err := d.Run(ctx)
		bridge.SendDone()
		daemonErr <- err
	}()

	_, progErr := program.Run()

	select {
	case err := <-daemonErr:
		if progErr != nil {
			return progErr
		}
		return err
	case <-time.After(5 * time.Second):
		return progErr
	}
}

func pollOrchdFleetSize(ctx context.Context, d *daemon.Daemon, program *tea.Program) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		total, named := d.Orchestrator().NodeCount()
		program.Send(tui.FleetMsg{TotalNodes: total, NamedNodes: named})
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
