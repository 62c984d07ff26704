// Package daemon wires the orchestrator's network listeners, PID-file
// single-instance enforcement, and graceful shutdown into one
// runnable process (SPEC_FULL.md §2 ambient stack).
package daemon

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/orchfleet/orchd/internal/busproto"
	"github.com/orchfleet/orchd/internal/config"
	"github.com/orchfleet/orchd/internal/events"
	"github.com/orchfleet/orchd/internal/orchestrator"
)

// Daemon owns the orchestrator engine and the two listeners that feed
// it: the node listener (spec.md §6, TCP) and the client bus listener
// (Unix domain socket).
type Daemon struct {
	cfg  *config.Config
	bus  *events.Bus
	orch *orchestrator.Orchestrator

	pidFile      *PIDFile
	nodeAcceptor *busproto.Acceptor
	busAcceptor  *busproto.Acceptor
}

// New builds a Daemon from cfg. Run starts it.
func New(cfg *config.Config) *Daemon {
	bus := events.NewBus()
	bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr}))

	callTimeout, err := time.ParseDuration(cfg.CallTimeout)
	if err != nil {
		// validateConfig already rejected an unparsable CallTimeout
		// before Load returned, so this can't happen in practice.
		callTimeout = 0
	}
	orch := orchestrator.New(orchestrator.Config{
		DefaultDrainGraceSeconds: cfg.DefaultDrainGraceSeconds,
		CallTimeout:              callTimeout,
	}, orchestrator.Dependencies{Bus: bus})

	return &Daemon{
		cfg:     cfg,
		bus:     bus,
		orch:    orch,
		pidFile: NewPIDFile(cfg.PIDFile),
	}
}

// Run acquires the PID file, opens both listeners, and blocks running
// the orchestrator's command loop until ctx is cancelled. On return,
// both listeners and the PID file are released.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.pidFile.Acquire(); err != nil {
		return fmt.Errorf("acquiring pid file: %w", err)
	}
	defer d.pidFile.Release()

	nodeAcceptor, err := busproto.Listen("tcp", d.cfg.NodeListenAddr, d.orch.AcceptNode)
	if err != nil {
		return fmt.Errorf("listening for nodes on %s: %w", d.cfg.NodeListenAddr, err)
	}
	d.nodeAcceptor = nodeAcceptor
	defer nodeAcceptor.Close()

	os.Remove(d.cfg.ClientSocketPath)
	busAcceptor, err := busproto.Listen("unix", d.cfg.ClientSocketPath, d.orch.AcceptClient)
	if err != nil {
		return fmt.Errorf("listening for clients on %s: %w", d.cfg.ClientSocketPath, err)
	}
	d.busAcceptor = busAcceptor
	defer busAcceptor.Close()

	d.bus.Emit(events.NewEvent(events.DaemonStarted))
	log.Printf("orchd listening: nodes=%s bus=%s", d.cfg.NodeListenAddr, d.cfg.ClientSocketPath)

	err = d.orch.Run(ctx)

	d.bus.Emit(events.NewEvent(events.DaemonStopped))

	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// Orchestrator exposes the running orchestrator, e.g. for tests that
// want to drive it directly without going through the bus.
func (d *Daemon) Orchestrator() *orchestrator.Orchestrator { return d.orch }

// Events exposes the daemon's event bus so a foreground TUI can
// subscribe directly, in the same process, without a client-bus round
// trip (see cmd/orchd's --tui flag).
func (d *Daemon) Events() *events.Bus { return d.bus }

// NodeAddr returns the address the node listener is bound to, once
// Run has started it. Useful in tests that bind NodeListenAddr to
// port 0 and need to dial the actual port afterward.
func (d *Daemon) NodeAddr() net.Addr {
	if d.nodeAcceptor == nil {
		return nil
	}
	return d.nodeAcceptor.Addr()
}
