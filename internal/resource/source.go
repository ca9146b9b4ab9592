package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/mark3labs/stepwise/internal/page"
)

// Source provides page descriptors.
type Source interface {
	Load(ctx context.Context, id page.ID) (*Descriptor, error)
	List(ctx context.Context) ([]*Descriptor, error)
}

// FSSource reads *.yaml and *.yml descriptors from the root of a file system.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource creates a source over fsys. dir is the directory fsys is
// rooted at, used to build on-disk paths; it may be empty for embedded
// content.
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	return &FSSource{fsys: fsys, dir: dir}
}

// DirSource creates a source over a directory on disk.
func DirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir), dir)
}

// Dir returns the on-disk directory, or "" for embedded content.
func (s *FSSource) Dir() string {
	return s.dir
}

// Path returns the on-disk path of a descriptor, or "" for embedded content.
func (s *FSSource) Path(d *Descriptor) string {
	if s.dir == "" {
		return ""
	}
	return path.Join(s.dir, d.File)
}

// Load returns the descriptor with the given ID. A file named after the ID
// is tried first; otherwise every descriptor is scanned.
func (s *FSSource) Load(ctx context.Context, id page.ID) (*Descriptor, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		name := string(id) + ext
		data, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		d, err := ParseDescriptor(name, data)
		if err != nil {
			return nil, err
		}
		if d.ID == id {
			return d, nil
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range all {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", page.ErrPageNotFound, id)
}

// List returns every descriptor sorted by ID. Unparseable files fail the
// whole listing.
func (s *FSSource) List(ctx context.Context) ([]*Descriptor, error) {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(s.fsys, pattern)
		if err != nil {
			return nil, err
		}
		names = append(names, matches...)
	}

	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		d, err := ParseDescriptor(name, data)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
