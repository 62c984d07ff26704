package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchCmd_RequiresJobID(t *testing.T) {
	app := New()
	cmd := NewWatchCmd(app)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Error("Expected error when job-id not provided, got nil")
	}
}

func TestWatchCmd_Structure(t *testing.T) {
	app := New()
	cmd := NewWatchCmd(app)

	if cmd.Use != "watch <job-id>" {
		t.Errorf("Expected Use to be 'watch <job-id>', got: %s", cmd.Use)
	}

	if cmd.Args == nil {
		t.Error("Expected Args validator to be set")
	}

	if cmd.RunE == nil {
		t.Error("Expected RunE to be set")
	}

	if cmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
}

func TestWatchJob_NoDaemonReturnsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	socketPath := filepath.Join(t.TempDir(), "missing.sock")
	err := watchJob(ctx, socketPath, 1)
	if err == nil {
		t.Error("Expected error when connecting to a non-existent daemon socket")
	}
}
