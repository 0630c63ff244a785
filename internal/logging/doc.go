// Package logging provides structured logging for dwcheck.
//
// This package wraps Go's log/slog to write JSON-formatted logs with persistent
// attributes. Every checkout, checkin, push and pull runs with an operation ID
// and the target path attached, so a single workflow can be followed through
// the resolver, the state machine and the transfer gateway.
//
// # Output
//
// Logs are written to {workspace}/.dwcheck/logs/dwcheck.log and rotated by
// lumberjack once the file exceeds the configured size. Rotated files may be
// gzip-compressed. When no directory is given the logger writes to stderr.
//
// # Thread Safety
//
// [Logger] is safe for concurrent use. Child loggers created via With* methods
// share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(logging.Options{Dir: dir, Level: "INFO"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	opLogger := logger.WithOperation("checkout").WithPath(path)
//	opLogger.Info("lock file created", "owner", owner)
package logging
