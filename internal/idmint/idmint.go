// Package idmint allocates monotonically increasing job identifiers and
// derives the bus object paths the orchestrator exposes them under.
package idmint

import (
	"fmt"
	"sync/atomic"
)

// Minter hands out unique, monotonically increasing job IDs, the Go
// analogue of orch.c's "++orch->next_job_id".
type Minter struct {
	next atomic.Uint32
}

// New returns a Minter whose first allocated ID is 1 (0 is reserved
// as the zero value / "no job" sentinel).
func New() *Minter {
	return &Minter{}
}

// Next allocates and returns the next job ID.
func (m *Minter) Next() uint32 {
	return m.next.Add(1)
}

// JobBasePath is the bus path prefix every job is published under.
const JobBasePath = "/org/orchfleet/Orchestrator/Job"

// ObjectPath returns the bus object path for the given job ID, e.g.
// "/org/orchfleet/Orchestrator/Job/7".
func ObjectPath(id uint32) string {
	return fmt.Sprintf("%s/%d", JobBasePath, id)
}
