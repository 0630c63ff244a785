// Package attr toggles the local read-only state that marks a file as
// checked in.
package attr

import (
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// WriteBits are the owner, group and other write permission bits.
const WriteBits fs.FileMode = 0o222

// Guard reads and changes write permission bits. It never touches sentinels.
type Guard struct {
	fs afero.Fs
}

// NewGuard creates a Guard on fsys.
func NewGuard(fsys afero.Fs) *Guard {
	return &Guard{fs: fsys}
}

// IsReadOnly reports whether path has no write bits set.
func (g *Guard) IsReadOnly(path string) (bool, error) {
	mode, err := g.perm(path)
	if err != nil {
		return false, err
	}
	return mode&WriteBits == 0, nil
}

// SetReadOnly clears every write bit. Files that are already read-only are
// left untouched.
func (g *Guard) SetReadOnly(path string) error {
	mode, err := g.perm(path)
	if err != nil {
		return err
	}
	if mode&WriteBits == 0 {
		return nil
	}
	if err := g.fs.Chmod(path, mode&^WriteBits); err != nil {
		return fmt.Errorf("failed to set read-only on %s: %w", path, err)
	}
	return nil
}

// ClearReadOnly sets every write bit, but only when all of them are clear.
// A partially writable file is left as it is.
func (g *Guard) ClearReadOnly(path string) error {
	mode, err := g.perm(path)
	if err != nil {
		return err
	}
	if mode&WriteBits != 0 {
		return nil
	}
	if err := g.fs.Chmod(path, mode|WriteBits); err != nil {
		return fmt.Errorf("failed to clear read-only on %s: %w", path, err)
	}
	return nil
}

func (g *Guard) perm(path string) (fs.FileMode, error) {
	info, err := g.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Mode().Perm(), nil
}
