package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var templateFS embed.FS

// TemplateFS contains the view templates, base.html is at the root.
var TemplateFS fs.FS

func init() {
	var err error

	TemplateFS, err = fs.Sub(templateFS, "templates")
	if err != nil {
		panic("failed to subtree template FS " + err.Error())
	}
}
