//go:build dev
// +build dev

package web

import (
	"io/fs"
	"net/http"
	"os"
)

// Templates returns the HTML template files as a file system.
// In development mode, templates are read from disk on every request.
func Templates() fs.FS {
	return os.DirFS("web/templates")
}

// Static returns the static assets as an http.FileSystem
func Static() http.FileSystem {
	return http.Dir("web/static")
}
