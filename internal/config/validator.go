package config

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "server.port")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
// An unconfigured server is not an error here; transfers report it when attempted.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateIdentity()...)
	errors = append(errors, c.validateWorkspace()...)
	errors = append(errors, c.validateCheckout()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Type != "" && !slices.Contains(ValidTransports(), c.Server.Type) {
		errors = append(errors, ValidationError{
			Field:   "server.type",
			Value:   c.Server.Type,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTransports(), ", ")),
		})
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: "must be between 0 and 65535",
		})
	}

	if c.Server.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.timeout_seconds",
			Value:   c.Server.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	if c.Server.Type == TransportFTP && (c.Server.PrivateKey != "" || c.Server.KnownHosts != "") {
		errors = append(errors, ValidationError{
			Field:   "server.private_key",
			Value:   c.Server.PrivateKey,
			Message: "private_key and known_hosts are only used with sftp",
		})
	}

	return errors
}

func (c *Config) validateIdentity() []ValidationError {
	var errors []ValidationError

	if strings.Contains(c.Identity.Username, "||") {
		errors = append(errors, ValidationError{
			Field:   "identity.username",
			Value:   c.Identity.Username,
			Message: `must not contain "||"`,
		})
	}

	if strings.Contains(c.Identity.EmailDomain, "@") {
		errors = append(errors, ValidationError{
			Field:   "identity.email_domain",
			Value:   c.Identity.EmailDomain,
			Message: `must be a bare domain without "@"`,
		})
	}

	return errors
}

func (c *Config) validateWorkspace() []ValidationError {
	var errors []ValidationError

	if c.Workspace.ResolveWorkers < 0 {
		errors = append(errors, ValidationError{
			Field:   "workspace.resolve_workers",
			Value:   c.Workspace.ResolveWorkers,
			Message: "must be non-negative",
		})
	}

	const maxResolveWorkers = 256
	if c.Workspace.ResolveWorkers > maxResolveWorkers {
		errors = append(errors, ValidationError{
			Field:   "workspace.resolve_workers",
			Value:   c.Workspace.ResolveWorkers,
			Message: fmt.Sprintf("exceeds maximum of %d", maxResolveWorkers),
		})
	}

	for _, pattern := range c.Workspace.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			errors = append(errors, ValidationError{
				Field:   "workspace.exclude",
				Value:   pattern,
				Message: "invalid glob pattern",
			})
		}
	}

	return errors
}

func (c *Config) validateCheckout() []ValidationError {
	if c.Checkout.Pull == "" || slices.Contains(ValidPullPolicies(), c.Checkout.Pull) {
		return nil
	}
	return []ValidationError{{
		Field:   "checkout.pull",
		Value:   c.Checkout.Pull,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidPullPolicies(), ", ")),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
