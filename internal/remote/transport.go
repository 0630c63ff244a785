package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/logging"
)

// Transport is one open connection to the remote server.
type Transport interface {
	// Retrieve opens remotePath for reading. The caller closes the reader.
	Retrieve(ctx context.Context, remotePath string) (io.ReadCloser, error)
	// Store writes r to remotePath, replacing it.
	Store(ctx context.Context, remotePath string, r io.Reader) error
	// Close ends the session.
	Close() error
}

// DirMaker is implemented by transports that can create remote directories.
type DirMaker interface {
	MakeDirAll(ctx context.Context, dir string) error
}

// Dialer opens a Transport.
type Dialer func(ctx context.Context) (Transport, error)

// NewDialer returns a Dialer for cfg.Type.
func NewDialer(cfg config.ServerConfig, logger *logging.Logger) (Dialer, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	switch cfg.Type {
	case config.TransportFTP:
		return func(ctx context.Context) (Transport, error) {
			return dialFTP(ctx, cfg)
		}, nil
	case config.TransportSFTP:
		return func(ctx context.Context) (Transport, error) {
			return dialSFTP(ctx, cfg, logger)
		}, nil
	case "":
		return nil, errors.NewConfigError("server.type is not set", errors.ErrNoTransport).WithKey("server.type")
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported transport %q", cfg.Type), errors.ErrNoTransport).
			WithKey("server.type")
	}
}
