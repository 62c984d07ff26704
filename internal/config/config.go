// Package config loads and validates orchd's daemon configuration:
// where to listen for nodes and clients, how long to wait on a node
// call, and how verbosely to log (SPEC_FULL.md §2 ambient stack).
package config

// Config is the orchestrator daemon's full runtime configuration,
// loaded from YAML with environment variable overrides layered on
// top.
type Config struct {
	// NodeListenAddr is the TCP address the node listener binds
	// (spec.md §6), e.g. "0.0.0.0:1999".
	NodeListenAddr string `yaml:"node_listen_addr"`

	// ClientSocketPath is the Unix domain socket path the client bus
	// listens on, e.g. "/run/orchd/bus.sock".
	ClientSocketPath string `yaml:"client_socket_path"`

	// CallTimeout bounds a single node RPC as a Go duration string
	// (spec.md §4.6 default is 30s; overridable for testing or slower
	// fleets).
	CallTimeout string `yaml:"call_timeout"`

	// DefaultDrainGraceSeconds is used by DrainAll when a client
	// doesn't specify its own grace period.
	DefaultDrainGraceSeconds int `yaml:"default_drain_grace_seconds"`

	// PIDFile is where the daemon records its own process ID for
	// single-instance enforcement.
	PIDFile string `yaml:"pid_file"`

	// LogLevel is one of: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}
