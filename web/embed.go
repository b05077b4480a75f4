// Package web embeds the dashboard page template and its static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}

// StaticFS returns the asset tree rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
