package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/logging"
)

type sftpTransport struct {
	ssh    *ssh.Client
	client *sftp.Client
	once   sync.Once
	err    error
}

func dialSFTP(ctx context.Context, cfg config.ServerConfig, logger *logging.Logger) (Transport, error) {
	clientConfig, err := sshConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	addr := cfg.Address()
	dialer := net.Dialer{Timeout: cfg.Timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("failed to start sftp subsystem: %w", err)
	}
	return &sftpTransport{ssh: sshClient, client: client}, nil
}

// sshConfig builds the client configuration: key auth when private_key is set,
// password auth when password is set, host key checked against known_hosts.
func sshConfig(cfg config.ServerConfig, logger *logging.Logger) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.PrivateKey != "" {
		pem, err := os.ReadFile(expandHome(cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		var signer ssh.Signer
		if cfg.Password != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(cfg.Password))
		} else {
			signer, err = ssh.ParsePrivateKey(pem)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	} else if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(expandHome(cfg.KnownHosts))
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
		hostKey = cb
	} else {
		logger.Warn("sftp host key is not verified; set server.known_hosts", "host", cfg.Host)
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         cfg.Timeout(),
	}, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (t *sftpTransport) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() { _ = t.Close() })
}

func (t *sftpTransport) Retrieve(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	stop := t.watch(ctx)
	f, err := t.client.Open(remotePath)
	if err != nil {
		stop()
		return nil, err
	}
	return &sftpReader{File: f, stop: stop}, nil
}

type sftpReader struct {
	*sftp.File
	stop func() bool
}

func (r *sftpReader) Close() error {
	r.stop()
	return r.File.Close()
}

func (t *sftpTransport) Store(ctx context.Context, remotePath string, r io.Reader) error {
	stop := t.watch(ctx)
	defer stop()

	f, err := t.client.Create(remotePath)
	if err != nil {
		return err
	}
	if _, err := f.ReadFrom(r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (t *sftpTransport) MakeDirAll(ctx context.Context, dir string) error {
	stop := t.watch(ctx)
	defer stop()
	return t.client.MkdirAll(dir)
}

func (t *sftpTransport) Close() error {
	t.once.Do(func() {
		t.err = t.client.Close()
		if sshErr := t.ssh.Close(); t.err == nil {
			t.err = sshErr
		}
	})
	return t.err
}
