package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orchfleet/orchd/internal/client"
)

func TestJobsCmd_Structure(t *testing.T) {
	app := New()
	cmd := NewJobsCmd(app)

	if cmd.Use != "jobs" {
		t.Errorf("Expected Use to be 'jobs', got: %s", cmd.Use)
	}

	if cmd.RunE == nil {
		t.Error("Expected RunE to be set")
	}

	if cmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
}

func TestDisplayJobsRendersEachRow(t *testing.T) {
	result := "done"
	jobs := []client.JobSnapshot{
		{ID: 1, Type: "IsolateAll", State: "running"},
		{ID: 2, Type: "DrainAll", State: "waiting", Result: &result},
	}

	buf := new(bytes.Buffer)
	displayJobs(buf, jobs)
	out := buf.String()

	if !strings.Contains(out, "IsolateAll") || !strings.Contains(out, "DrainAll") {
		t.Errorf("expected both job types in output, got: %s", out)
	}
	if !strings.Contains(out, "running") || !strings.Contains(out, "waiting") {
		t.Errorf("expected both states in output, got: %s", out)
	}
}

func TestDisplayJobsEmptyStillPrintsHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	displayJobs(buf, nil)

	if !strings.Contains(buf.String(), "ID") {
		t.Error("expected header row even with no jobs")
	}
}
