package view

import (
	"fmt"
	"io"
	"io/fs"
)

// FSRenderer parses views on every render, so that template changes on
// disk show up without restarting the server.
type FSRenderer struct {
	fs fs.FS
}

// NewFSRenderer returns a new FSRenderer.
func NewFSRenderer(viewFS fs.FS) *FSRenderer {
	return &FSRenderer{fs: viewFS}
}

func (r *FSRenderer) Has(name string) bool {
	if validateName(name) != nil {
		return false
	}

	_, err := fs.Stat(r.fs, filename(name))
	return err == nil
}

func (r *FSRenderer) Render(w io.Writer, name string, data any) error {
	if !r.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownView, name)
	}

	v, err := Parse(r.fs, name)
	if err != nil {
		return err
	}

	return v.Render(w, data)
}
