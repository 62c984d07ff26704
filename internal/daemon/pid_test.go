package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileAcquireWritesCurrentPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")

	pf := NewPIDFile(pidPath)
	require.NoError(t, pf.Acquire())
	defer pf.Release()

	content, err := os.ReadFile(pidPath)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.Equal(t, pidPath, pf.Path())
}

func TestPIDFileAcquireFailsAgainstLiveOwner(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")

	owner := NewPIDFile(pidPath)
	require.NoError(t, owner.Acquire())
	defer owner.Release()

	contender := NewPIDFile(pidPath)
	err := contender.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orchd already running")
	assert.Contains(t, err.Error(), strconv.Itoa(os.Getpid()))
}

func TestPIDFileAcquireReclaimsStaleOwner(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")

	require.NoError(t, os.WriteFile(pidPath, []byte("999999"), 0644))

	pf := NewPIDFile(pidPath)
	require.NoError(t, pf.Acquire(), "a pid file naming a dead process must be reclaimed")
	defer pf.Release()
}

func TestPIDFileReleaseRemovesFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")

	pf := NewPIDFile(pidPath)
	require.NoError(t, pf.Acquire())
	require.NoError(t, pf.Release())

	_, err := os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFileReleaseWithoutAcquireIsNoop(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "never-acquired.pid"))
	require.NoError(t, pf.Release())
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(999999))
	assert.False(t, IsProcessRunning(0))
}

func TestReadPIDRoundTrip(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")
	require.NoError(t, os.WriteFile(pidPath, []byte(strconv.Itoa(12345)), 0644))

	pid, err := ReadPID(pidPath)
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "orchd.pid")
	require.NoError(t, os.WriteFile(pidPath, []byte("not-a-number"), 0644))

	pid, err := ReadPID(pidPath)
	require.Error(t, err)
	assert.Equal(t, 0, pid)
	assert.Contains(t, err.Error(), "invalid pid")
}

func TestReadPIDMissingFile(t *testing.T) {
	pid, err := ReadPID(filepath.Join(t.TempDir(), "nonexistent.pid"))
	require.Error(t, err)
	assert.Equal(t, 0, pid)
	assert.True(t, os.IsNotExist(err))
}
