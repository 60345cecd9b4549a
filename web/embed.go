// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other static assets.
func StaticFS() fs.FS {
	return mustSub("static")
}

// TemplatesFS returns the HTML templates.
func TemplatesFS() fs.FS {
	return mustSub("templates")
}

// mustSub panics only if the embed directive and dir disagree.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return sub
}
