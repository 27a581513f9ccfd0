package view

import (
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strings"
)

// MemRenderer parses every view once and renders them from memory.
type MemRenderer struct {
	views map[string]*View
}

// NewMemRenderer parses all the views in the root of viewFS.
func NewMemRenderer(viewFS fs.FS) (*MemRenderer, error) {
	files, err := fs.Glob(viewFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for views: %w", err)
	}

	views := make(map[string]*View, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(file, ".html")
		v, err := Parse(viewFS, name)
		if err != nil {
			return nil, err
		}

		views[name] = v
	}

	return &MemRenderer{
		views: views,
	}, nil
}

// Names returns the names of the parsed views, sorted.
func (r *MemRenderer) Names() []string {
	return slices.Sorted(maps.Keys(r.views))
}

func (r *MemRenderer) Has(name string) bool {
	_, ok := r.views[name]
	return ok
}

func (r *MemRenderer) Render(w io.Writer, name string, data any) error {
	v, ok := r.views[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, name)
	}

	return v.Render(w, data)
}
