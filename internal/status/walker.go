package status

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/dwcheck/internal/sentinel"
)

// Names that are never tracked, wherever they appear.
var (
	metaFiles = []string{"dwsync.xml"}
	metaDirs  = []string{"_notes", ".git", ".svn", ".hg", ".bzr", "CVS", ".dwcheck"}
)

// Walker enumerates the trackable files of a workspace.
type Walker struct {
	fs      afero.Fs
	root    string
	exclude []string
}

// NewWalker creates a Walker rooted at root. Exclude patterns use path.Match
// syntax and are tested against every path component and the slash-separated
// path relative to root.
func NewWalker(fsys afero.Fs, root string, exclude []string) *Walker {
	return &Walker{
		fs:      fsys,
		root:    filepath.Clean(root),
		exclude: slices.Clone(exclude),
	}
}

// Root returns the workspace root.
func (w *Walker) Root() string { return w.root }

// Walk returns the absolute paths of every trackable regular file under the
// root, in lexical order. Unreadable subdirectories are skipped.
func (w *Walker) Walk(ctx context.Context) ([]string, error) {
	var files []string
	err := afero.Walk(w.fs, w.root, func(p string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == w.root {
				return err
			}
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == w.root {
			return nil
		}
		if w.Excluded(p, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Excluded reports whether p is hidden from status tracking. Paths outside the
// root are always excluded.
func (w *Walker) Excluded(p string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	base := parts[len(parts)-1]

	if !isDir && (sentinel.IsSentinel(base) || slices.Contains(metaFiles, base)) {
		return true
	}
	for _, part := range parts {
		if slices.Contains(metaDirs, part) {
			return true
		}
	}
	for _, pattern := range w.exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := path.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}
