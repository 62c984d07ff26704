package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks every field and returns all failures joined
// together, rather than stopping at the first one.
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.NodeListenAddr == "" {
		errs = append(errs, &ValidationError{
			Field:   "node_listen_addr",
			Value:   cfg.NodeListenAddr,
			Message: "must not be empty",
		})
	}

	if cfg.ClientSocketPath == "" {
		errs = append(errs, &ValidationError{
			Field:   "client_socket_path",
			Value:   cfg.ClientSocketPath,
			Message: "must not be empty",
		})
	}

	if _, err := time.ParseDuration(cfg.CallTimeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "call_timeout",
			Value:   cfg.CallTimeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	if cfg.DefaultDrainGraceSeconds < 0 {
		errs = append(errs, &ValidationError{
			Field:   "default_drain_grace_seconds",
			Value:   cfg.DefaultDrainGraceSeconds,
			Message: "must be non-negative",
		})
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
