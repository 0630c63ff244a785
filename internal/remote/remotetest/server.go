// Package remotetest provides an in-memory remote server for tests.
package remotetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"

	"github.com/Iron-Ham/dwcheck/internal/remote"
)

// Server is an in-memory stand-in for an FTP or SFTP server.
type Server struct {
	mu      sync.Mutex
	files   map[string][]byte
	dirs    map[string]bool
	dials   int
	closed  int
	GetErr  error // returned by every Retrieve when set
	PutErr  error // returned by every Store when set
	DialErr error // returned by the dialer when set
}

// NewServer creates an empty Server.
func NewServer() *Server {
	return &Server{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

// Dialer returns a remote.Dialer connected to s.
func (s *Server) Dialer() remote.Dialer {
	return func(ctx context.Context) (remote.Transport, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.dials++
		if s.DialErr != nil {
			return nil, s.DialErr
		}
		return &transport{s: s}, nil
	}
}

// SetFile stores content at remotePath.
func (s *Server) SetFile(remotePath, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[remotePath] = []byte(content)
}

// File returns the content at remotePath.
func (s *Server) File(remotePath string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[remotePath]
	return string(b), ok
}

// Files returns every stored path in lexical order.
func (s *Server) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasDir reports whether dir was created.
func (s *Server) HasDir(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[dir]
}

// Dials returns the number of connections opened.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Closed returns the number of connections closed.
func (s *Server) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type transport struct {
	s *Server
}

func (t *transport) Retrieve(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.GetErr != nil {
		return nil, t.s.GetErr
	}
	b, ok := t.s.files[remotePath]
	if !ok {
		return nil, fmt.Errorf("550 %s: No such file or directory", remotePath)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(b))), nil
}

func (t *transport) Store(ctx context.Context, remotePath string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.PutErr != nil {
		return t.s.PutErr
	}
	t.s.files[remotePath] = data
	return nil
}

func (t *transport) MakeDirAll(ctx context.Context, dir string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for d := dir; d != "/" && d != "."; d = path.Dir(d) {
		t.s.dirs[d] = true
	}
	return nil
}

func (t *transport) Close() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.closed++
	return nil
}
