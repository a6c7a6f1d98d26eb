//go:build !dev
// +build !dev

package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates static
var embeddedFiles embed.FS

// Templates returns the HTML template files as a file system
func Templates() fs.FS {
	fsys, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Static returns the static assets as an http.FileSystem
func Static() http.FileSystem {
	fsys, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}
