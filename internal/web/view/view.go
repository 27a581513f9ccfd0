package view

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

const baseFilename = "base.html"

var (
	// ErrInvalidName indicates a view name contains disallowed characters.
	ErrInvalidName = errors.New("invalid view name")
	// ErrUnknownView indicates a renderer has no view by the requested name.
	ErrUnknownView = errors.New("unknown view")
)

// funcs are available in every template.
var funcs = template.FuncMap{
	"noticeRole": noticeRole,
}

// View is a page template. Every view has an unique name.
//
// A view combines the following templates to render a HTML page:
// - base.html (required)
// - {name}.html (optional)
// - partials/*.html (optional)
type View struct {
	name     string
	template *template.Template
}

// Parse parses the file system and returns a view for the given name.
func Parse(viewFS fs.FS, name string) (*View, error) {
	// Names are hardcoded by the controller, but should one ever come from
	// user input it may not be used to reach other files.
	if err := validateName(name); err != nil {
		return nil, err
	}

	files := []string{baseFilename}
	if fn := filename(name); fn != baseFilename {
		files = append(files, fn)
	}

	partials, err := fs.Glob(viewFS, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for partials: %w", err)
	}

	files = append(files, partials...)

	t, err := template.New(baseFilename).Funcs(funcs).ParseFS(viewFS, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view %q: %w", name, err)
	}

	return &View{
		name:     name,
		template: t,
	}, nil
}

// Name returns the name the view was parsed with.
func (v *View) Name() string {
	return v.name
}

// Render renders data using the view and writes the result to w.
func (v *View) Render(w io.Writer, data any) error {
	return v.template.Execute(w, data)
}

// Checker reports whether a view can be rendered.
type Checker interface {
	Has(name string) bool
}

// Require returns an error for every name c can't render.
func Require(c Checker, names ...string) error {
	var errs []error
	for _, name := range names {
		if !c.Has(name) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownView, name))
		}
	}
	return errors.Join(errs...)
}

// filename maps a view name to its template file. The empty name and
// "base" both refer to the base template.
func filename(name string) string {
	if name == "" || name == "base" {
		return baseFilename
	}
	return name + ".html"
}

// validateName checks if all characters are alphanumeric, dashes or underscores.
func validateName(name string) error {
	for _, c := range name {
		if !validViewRune(c) {
			return fmt.Errorf("%w: character %q in %q", ErrInvalidName, c, name)
		}
	}
	return nil
}

func validViewRune(r rune) bool {
	return r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// noticeRole returns the ARIA role for a notice level. Warnings and
// errors interrupt the user, other notices are announced politely.
func noticeRole(level any) string {
	switch fmt.Sprint(level) {
	case "warning", "danger":
		return "alert"
	default:
		return "status"
	}
}
