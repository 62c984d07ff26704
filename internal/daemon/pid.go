package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile enforces single-instance operation for one orchd daemon
// config: a file on disk recording the PID of whichever process
// currently owns the listen sockets.
type PIDFile struct {
	path string
}

// NewPIDFile returns a PIDFile manager for path; nothing is written
// until Acquire succeeds.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file path this PIDFile manages.
func (p *PIDFile) Path() string { return p.path }

// Acquire claims the PID file for the current process. A file left
// behind by a process that is no longer alive is treated as stale and
// silently reclaimed; one owned by a live process fails the acquire.
func (p *PIDFile) Acquire() error {
	existing, err := ReadPID(p.path)
	switch {
	case err == nil:
		if IsProcessRunning(existing) {
			return fmt.Errorf("orchd already running with pid %d (%s)", existing, p.path)
		}
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale pid file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// nothing to reclaim
	default:
		return fmt.Errorf("reading pid file: %w", err)
	}

	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return nil
}

// Release removes the PID file. Safe to call even if Acquire was
// never called or already failed.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsProcessRunning reports whether pid names a live process, probed
// with the null signal: delivery fails with ESRCH once the process is
// gone, and succeeds (without actually signalling anything) while it
// is still alive.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

// ReadPID reads and parses the PID recorded at path, propagating the
// underlying os.ErrNotExist unwrapped so callers can distinguish
// "no file yet" from "file exists but unreadable".
func ReadPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	text := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid pid in %s: %q", path, text)
	}
	return pid, nil
}
