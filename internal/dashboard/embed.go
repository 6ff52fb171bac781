package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var embeddedFS embed.FS

var staticFS fs.FS = embeddedFS
