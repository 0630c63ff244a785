// Package sentinel reads and writes the ".LCK" files that record who has a
// file checked out.
//
// A sentinel lives next to the file it guards (index.html → index.html.LCK) and
// holds "<owner>||<contact>" with no trailing newline. It is created whole and
// removed whole; nothing ever edits one in place. Its presence is what makes a
// file "checked out", regardless of the file's permission bits.
package sentinel

import (
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/dwcheck/internal/errors"
	"github.com/Iron-Ham/dwcheck/internal/logging"
)

// Suffix is appended to a file path to form its sentinel path.
const Suffix = ".LCK"

// Delimiter separates the owner from the contact in sentinel content.
const Delimiter = "||"

// FileMode is the permission used when creating a sentinel.
const FileMode fs.FileMode = 0644

// Sentinel is the parsed content of a .LCK file.
type Sentinel struct {
	Owner   string
	Contact string
}

// Path returns the sentinel path for file.
func Path(file string) string {
	return file + Suffix
}

// IsSentinel reports whether path names a sentinel file.
func IsSentinel(path string) bool {
	return strings.HasSuffix(path, Suffix)
}

// Format renders the on-disk content for owner and contact.
func Format(owner, contact string) string {
	return owner + Delimiter + contact
}

// Parse splits sentinel content on the first delimiter. Content without a
// delimiter is treated as an owner with no contact.
func Parse(content string) Sentinel {
	owner, contact, _ := strings.Cut(content, Delimiter)
	return Sentinel{
		Owner:   strings.TrimSpace(owner),
		Contact: strings.TrimSpace(contact),
	}
}

// Store performs sentinel I/O against a filesystem.
type Store struct {
	fs     afero.Fs
	logger *logging.Logger
}

// NewStore creates a Store on fsys. The logger may be nil.
func NewStore(fsys afero.Fs, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{fs: fsys, logger: logger}
}

// Read returns the sentinel for file. The boolean is false when no sentinel
// exists or it cannot be read; a missing sentinel is never an error.
func (s *Store) Read(file string) (Sentinel, bool) {
	data, err := afero.ReadFile(s.fs, Path(file))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unreadable lock file treated as absent",
				"path", file,
				"error", err.Error(),
			)
		}
		return Sentinel{}, false
	}
	return Parse(string(data)), true
}

// Exists reports whether file has a sentinel.
func (s *Store) Exists(file string) bool {
	ok, err := afero.Exists(s.fs, Path(file))
	return err == nil && ok
}

// Create writes a sentinel for file, replacing any existing one.
func (s *Store) Create(file, owner, contact string) error {
	if err := afero.WriteFile(s.fs, Path(file), []byte(Format(owner, contact)), FileMode); err != nil {
		s.logger.Error("failed to create lock file",
			"path", file,
			"owner", owner,
			"error", err.Error(),
		)
		return errors.NewSentinelError("create", file, err)
	}
	s.logger.Debug("lock file created", "path", file, "owner", owner)
	return nil
}

// Delete removes the sentinel for file. A missing sentinel yields an error
// matching errors.ErrSentinelNotFound with warning severity.
func (s *Store) Delete(file string) error {
	err := s.fs.Remove(Path(file))
	switch {
	case err == nil:
		s.logger.Debug("lock file deleted", "path", file)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return errors.NewSentinelError("delete", file, errors.ErrSentinelNotFound).
			WithSeverity(errors.SeverityWarning)
	default:
		s.logger.Error("failed to delete lock file",
			"path", file,
			"error", err.Error(),
		)
		return errors.NewSentinelError("delete", file, err)
	}
}
