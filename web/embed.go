package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Templates returns the embedded HTML page templates rooted at templates/.
func Templates() fs.FS {
	return templateFS
}

// Static returns the embedded stylesheet and script files with the static/
// prefix stripped so they can be mounted directly under /static.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
