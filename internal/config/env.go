package config

import "os"

// envOverrides maps environment variables to config field setters,
// applied after loading YAML so the environment always wins.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "ORCHD_NODE_LISTEN_ADDR",
		apply:  func(c *Config, v string) { c.NodeListenAddr = v },
	},
	{
		envVar: "ORCHD_CLIENT_SOCKET_PATH",
		apply:  func(c *Config, v string) { c.ClientSocketPath = v },
	},
	{
		envVar: "ORCHD_CALL_TIMEOUT",
		apply:  func(c *Config, v string) { c.CallTimeout = v },
	},
	{
		envVar: "ORCHD_PID_FILE",
		apply:  func(c *Config, v string) { c.PIDFile = v },
	},
	{
		envVar: "ORCHD_LOG_LEVEL",
		apply:  func(c *Config, v string) { c.LogLevel = v },
	},
}

// applyEnvOverrides modifies cfg in place with any set environment
// variables.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
