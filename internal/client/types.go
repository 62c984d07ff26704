package client

// JobSnapshot is the wire-format view of a job, mirroring
// orchestrator.JobSnapshot. Defined independently here, the way the
// teacher's own client/types.go defines JobSummary/JobStatus/HealthInfo
// rather than importing the daemon's internal types directly.
type JobSnapshot struct {
	ID     uint32  `json:"id"`
	Type   string  `json:"type"`
	State  string  `json:"state"`
	Result *string `json:"result,omitempty"`
}

// NodeSnapshot is the wire-format view of one fleet connection,
// mirroring orchestrator.NodeSnapshot.
type NodeSnapshot struct {
	Token      string `json:"token"`
	Name       string `json:"name,omitempty"`
	Registered bool   `json:"registered"`
}

// HealthInfo reports basic daemon liveness and fleet size.
type HealthInfo struct {
	Healthy    bool `json:"healthy"`
	TotalNodes int  `json:"total_nodes"`
	NamedNodes int  `json:"named_nodes"`
}
