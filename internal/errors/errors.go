// Package errors provides centralized error definitions and error handling utilities
// for dwcheck. It defines the sentinel errors used across the checkout workflow,
// domain error types with context wrapping, and classification helpers used at the
// command boundary to turn any failure into a user-visible message.
//
// # Error Types
//
// Domain-specific errors represent failures from a specific subsystem:
//   - ConfigError: missing or invalid remote server configuration
//   - SentinelError: creating or deleting a .LCK sentinel file failed
//   - TransferError: an FTP/SFTP get or put failed
//   - BlockedError: an operation was refused by the ownership policy
//
// # Usage
//
//	err := errors.NewSentinelError("create", path, cause)
//
//	if errors.Is(err, errors.ErrSentinelNotFound) { ... }
//
//	var blocked *errors.BlockedError
//	if errors.As(err, &blocked) { ... blocked.Owner ... }
//
// # Reporting
//
// The command layer shows every failure to the user exactly once. Errors that
// have already been shown are wrapped with [MarkReported] so that the process
// exit path does not print them again.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational conditions such as a no-op request.
	SeverityInfo
	// SeverityWarning is for errors that do not stop the operation.
	SeverityWarning
	// SeverityError is for errors that end the operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration sentinel errors
var (
	// ErrNoServerConfig indicates that no remote server is configured.
	ErrNoServerConfig = New("no remote server configured")
	// ErrNoTransport indicates that the server type (ftp or sftp) is not set or unknown.
	ErrNoTransport = New("no transport type configured")
	// ErrNoIdentity indicates that no username could be determined.
	ErrNoIdentity = New("no username configured")
)

// Workspace sentinel errors
var (
	// ErrNoFile indicates that no target file was given.
	ErrNoFile = New("no file specified")
	// ErrIsDirectory indicates that a directory was given where a file is required.
	ErrIsDirectory = New("directories have no status")
	// ErrNotInWorkspace indicates that a path lies outside the workspace root.
	ErrNotInWorkspace = New("path is outside the workspace")
	// ErrFileNotFound indicates that the target file does not exist locally.
	ErrFileNotFound = New("file not found")
)

// Lock sentinel errors
var (
	// ErrSentinelNotFound indicates that a .LCK file was expected but is absent.
	ErrSentinelNotFound = New("lock file not found")
	// ErrCheckedOutByOther indicates that another user holds the checkout.
	ErrCheckedOutByOther = New("file is checked out by another user")
	// ErrLocked indicates that the file is checked in and read-only.
	ErrLocked = New("file is locked")
	// ErrCanceled indicates that the user declined a confirmation.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// CheckError is the base interface for all dwcheck domain errors.
type CheckError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// formatWithContext renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) formatWithContext(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError represents a missing or invalid configuration value.
//
// Example:
//
//	err := errors.NewConfigError("server.host is empty", errors.ErrNoServerConfig).WithKey("server.host")
type ConfigError struct {
	baseError
	Key string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithKey adds the offending configuration key.
func (e *ConfigError) WithKey(key string) *ConfigError {
	e.Key = key
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	return e.formatWithContext("config error", parts)
}

// SentinelError represents a failure to create or delete a .LCK file.
type SentinelError struct {
	baseError
	Op   string // "create" or "delete"
	Path string // path of the tracked file, not the sentinel
}

// NewSentinelError creates a new SentinelError for the given operation and file.
func NewSentinelError(op, path string, cause error) *SentinelError {
	return &SentinelError{
		baseError: baseError{
			message:    fmt.Sprintf("failed to %s lock file", op),
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Op:   op,
		Path: path,
	}
}

// WithSeverity sets the error severity.
func (e *SentinelError) WithSeverity(s Severity) *SentinelError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SentinelError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.formatWithContext("lock file error", parts)
}

// TransferError represents a failed remote get or put. The cause carries the
// message reported by the transport.
type TransferError struct {
	baseError
	Op         string // "get" or "put"
	LocalPath  string
	RemotePath string
}

// NewTransferError creates a new TransferError.
func NewTransferError(op, localPath, remotePath string, cause error) *TransferError {
	return &TransferError{
		baseError: baseError{
			message:    fmt.Sprintf("%s failed", op),
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Op:         op,
		LocalPath:  localPath,
		RemotePath: remotePath,
	}
}

// Error returns the formatted error message.
func (e *TransferError) Error() string {
	var parts []string
	if e.RemotePath != "" {
		parts = append(parts, fmt.Sprintf("remote=%s", e.RemotePath))
	}
	return e.formatWithContext("transfer error", parts)
}

// BlockedError is returned when the ownership policy refuses an operation.
//
// Example:
//
//	err := errors.NewBlockedError("push", path, errors.ErrCheckedOutByOther).WithOwner("alice")
type BlockedError struct {
	baseError
	Op    string
	Path  string
	Owner string
}

// NewBlockedError creates a new BlockedError.
func NewBlockedError(op, path string, cause error) *BlockedError {
	return &BlockedError{
		baseError: baseError{
			message:    fmt.Sprintf("%s refused", op),
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Op:   op,
		Path: path,
	}
}

// WithOwner records the user holding the checkout.
func (e *BlockedError) WithOwner(owner string) *BlockedError {
	e.Owner = owner
	return e
}

// Error returns the formatted error message.
func (e *BlockedError) Error() string {
	var parts []string
	if e.Owner != "" {
		parts = append(parts, fmt.Sprintf("owner=%s", e.Owner))
	}
	return e.formatWithContext("blocked", parts)
}

// -----------------------------------------------------------------------------
// Error Classification
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
// Domain errors decide for themselves; the package sentinels are always user-facing.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var checkErr CheckError
	if As(err, &checkErr) {
		return checkErr.IsUserFacing()
	}

	for _, sentinel := range userSentinels {
		if Is(err, sentinel) {
			return true
		}
	}
	return false
}

var userSentinels = []error{
	ErrNoServerConfig, ErrNoTransport, ErrNoIdentity,
	ErrNoFile, ErrIsDirectory, ErrNotInWorkspace, ErrFileNotFound,
	ErrSentinelNotFound, ErrCheckedOutByOther, ErrLocked, ErrCanceled,
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement CheckError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var checkErr CheckError
	if As(err, &checkErr) {
		return checkErr.Severity()
	}

	switch {
	case Is(err, ErrNoFile), Is(err, ErrCanceled):
		return SeverityInfo
	case Is(err, ErrIsDirectory), Is(err, ErrSentinelNotFound):
		return SeverityWarning
	}
	return SeverityError
}

// UserMessage returns the text shown to the user for err. Internal errors are
// replaced by a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	return "an internal error occurred: " + err.Error()
}

// -----------------------------------------------------------------------------
// Reporting
// -----------------------------------------------------------------------------

// reportedError marks an error that has already been shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// MarkReported wraps err so that IsReported returns true for it.
func MarkReported(err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	return &reportedError{err: err}
}

// IsReported returns true if err was wrapped with MarkReported.
func IsReported(err error) bool {
	var r *reportedError
	return As(err, &r)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
