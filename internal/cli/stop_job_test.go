package cli

import (
	"testing"
)

func TestStopJobCmd_RequiresJobID(t *testing.T) {
	app := New()
	cmd := NewStopJobCmd(app)

	err := cmd.Args(cmd, []string{})
	if err == nil {
		t.Error("Expected error when no job-id provided")
	}
}

func TestStopJobCmd_AcceptsJobID(t *testing.T) {
	app := New()
	cmd := NewStopJobCmd(app)

	err := cmd.Args(cmd, []string{"123"})
	if err != nil {
		t.Errorf("Expected no error with job-id, got: %v", err)
	}

	err = cmd.Args(cmd, []string{"123", "extra"})
	if err == nil {
		t.Error("Expected error when multiple arguments provided")
	}
}

func TestStopJobCmd_Structure(t *testing.T) {
	app := New()
	cmd := NewStopJobCmd(app)

	if cmd.Use != "cancel <job-id>" {
		t.Errorf("Expected Use to be 'cancel <job-id>', got: %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if cmd.RunE == nil {
		t.Error("Expected RunE to be set")
	}
}

func TestStopJobCmd_RejectsNonNumericID(t *testing.T) {
	app := New()
	cmd := NewStopJobCmd(app)
	cmd.SetArgs([]string{"not-a-number"})

	err := cmd.Execute()
	if err == nil {
		t.Error("Expected error for a non-numeric job id")
	}
}
