package remote

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/event"
	"github.com/Iron-Ham/dwcheck/internal/logging"
)

// Transfer operations
const (
	OpGet = "get"
	OpPut = "put"
)

// defaultFileMode is used for files pulled without a local copy.
const defaultFileMode fs.FileMode = 0644

// Gateway performs file transfers for one workspace.
type Gateway struct {
	server config.ServerConfig
	root   string
	dial   Dialer
	bus    *event.Bus
	logger *logging.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithDialer replaces the dialer derived from the server config.
func WithDialer(d Dialer) GatewayOption {
	return func(g *Gateway) { g.dial = d }
}

// WithBus sets the bus transfer events are published on.
func WithBus(bus *event.Bus) GatewayOption {
	return func(g *Gateway) { g.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway creates a Gateway mapping root onto server.Dir.
func NewGateway(server config.ServerConfig, root string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		server: server,
		root:   filepath.Clean(root),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.NopLogger()
	}
	return g
}

// Check reports whether transfers can be attempted at all.
func (g *Gateway) Check() error {
	if !g.server.Configured() {
		return errors.NewConfigError("server.host is not set", errors.ErrNoServerConfig).WithKey("server.host")
	}
	if g.dial != nil {
		return nil
	}
	_, err := NewDialer(g.server, g.logger)
	return err
}

// RemotePath maps a local workspace path to its path on the server. The result
// always uses forward slashes.
func (g *Gateway) RemotePath(local string) (string, error) {
	abs, err := filepath.Abs(local)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrNotInWorkspace, "%s", local)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	if g.server.Dir == "" {
		return rel, nil
	}
	return path.Join(g.server.Dir, rel), nil
}

// Get downloads the remote copy of local, replacing the local file atomically
// and keeping its permission bits.
func (g *Gateway) Get(ctx context.Context, local string) error {
	remotePath, err := g.RemotePath(local)
	if err != nil {
		return err
	}
	logger := g.logger.With("op", OpGet, "path", local, "remote", remotePath)

	n, err := g.transfer(ctx, func(ctx context.Context, t Transport) (int64, error) {
		rc, err := t.Retrieve(ctx, remotePath)
		if err != nil {
			return 0, err
		}
		defer rc.Close()

		mode := defaultFileMode
		if info, statErr := os.Stat(local); statErr == nil {
			mode = info.Mode().Perm()
		}
		counter := &countingReader{r: rc}
		if err := atomic.WriteFile(local, counter); err != nil {
			return counter.n, err
		}
		err = os.Chmod(local, mode)
		return counter.n, err
	})
	return g.finish(logger, OpGet, local, remotePath, n, err)
}

// Put uploads local to the server, creating missing remote directories on a
// best-effort basis.
func (g *Gateway) Put(ctx context.Context, local string) error {
	remotePath, err := g.RemotePath(local)
	if err != nil {
		return err
	}
	logger := g.logger.With("op", OpPut, "path", local, "remote", remotePath)

	n, err := g.transfer(ctx, func(ctx context.Context, t Transport) (int64, error) {
		f, err := os.Open(local)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		if mk, ok := t.(DirMaker); ok {
			if dir := path.Dir(remotePath); dir != "." && dir != "/" {
				if err := mk.MakeDirAll(ctx, dir); err != nil {
					logger.Debug("remote mkdir failed", "dir", dir, "error", err.Error())
				}
			}
		}
		counter := &countingReader{r: f}
		err = t.Store(ctx, remotePath, counter)
		return counter.n, err
	})
	return g.finish(logger, OpPut, local, remotePath, n, err)
}

// transfer dials, runs fn and closes the connection, all bounded by the
// configured timeout.
func (g *Gateway) transfer(ctx context.Context, fn func(context.Context, Transport) (int64, error)) (int64, error) {
	if err := g.Check(); err != nil {
		return 0, err
	}
	dial := g.dial
	if dial == nil {
		d, err := NewDialer(g.server, g.logger)
		if err != nil {
			return 0, err
		}
		dial = d
	}

	if timeout := g.server.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t, err := dial(ctx)
	if err != nil {
		return 0, err
	}
	n, err := fn(ctx, t)
	if closeErr := t.Close(); err == nil && closeErr != nil {
		g.logger.Debug("closing transport failed", "error", closeErr.Error())
	}
	if err != nil && ctx.Err() != nil {
		err = errors.Join(ctx.Err(), err)
	}
	return n, err
}

func (g *Gateway) finish(logger *logging.Logger, op, local, remotePath string, n int64, err error) error {
	var cfgErr *errors.ConfigError
	if err != nil && !errors.As(err, &cfgErr) {
		err = errors.NewTransferError(op, local, remotePath, err)
	}
	if g.bus != nil {
		g.bus.Publish(event.NewTransferEvent(op, local, remotePath, n, err))
	}
	if err != nil {
		logger.Error("transfer failed", "error", err.Error())
		return err
	}
	logger.Info("transfer complete", "bytes", n)
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
