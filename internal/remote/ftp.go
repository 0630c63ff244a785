package remote

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/jlaffaye/ftp"

	"github.com/Iron-Ham/dwcheck/internal/config"
)

type ftpTransport struct {
	conn *ftp.ServerConn
	once sync.Once
}

func dialFTP(ctx context.Context, cfg config.ServerConfig) (Transport, error) {
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if timeout := cfg.Timeout(); timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(timeout))
	}

	conn, err := ftp.Dial(cfg.Address(), opts...)
	if err != nil {
		return nil, err
	}

	user := cfg.User
	if user == "" {
		user = "anonymous"
	}
	if err := conn.Login(user, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, err
	}
	return &ftpTransport{conn: conn}, nil
}

// watch aborts the connection when ctx ends mid-transfer. The returned
// function stops watching.
func (t *ftpTransport) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() { _ = t.Close() })
}

func (t *ftpTransport) Retrieve(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	stop := t.watch(ctx)
	resp, err := t.conn.Retr(remotePath)
	if err != nil {
		stop()
		return nil, err
	}
	return &ftpReader{Response: resp, stop: stop}, nil
}

type ftpReader struct {
	*ftp.Response
	stop func() bool
}

func (r *ftpReader) Close() error {
	r.stop()
	return r.Response.Close()
}

func (t *ftpTransport) Store(ctx context.Context, remotePath string, r io.Reader) error {
	stop := t.watch(ctx)
	defer stop()
	return t.conn.Stor(remotePath, r)
}

// MakeDirAll creates each missing component of dir. FTP has no "mkdir -p" and
// no portable "exists" check, so failures on existing directories are ignored.
func (t *ftpTransport) MakeDirAll(ctx context.Context, dir string) error {
	stop := t.watch(ctx)
	defer stop()

	current := ""
	if strings.HasPrefix(dir, "/") {
		current = "/"
	}
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part == "" {
			continue
		}
		current = path.Join(current, part)
		_ = t.conn.MakeDir(current)
	}
	return ctx.Err()
}

func (t *ftpTransport) Close() error {
	var err error
	t.once.Do(func() { err = t.conn.Quit() })
	return err
}
