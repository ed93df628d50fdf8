package catalog

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Defaults returns a fetcher over the catalogs shipped with the binary.
func Defaults() Fetcher {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(err) // the embedded directory always exists
	}
	return FSFetcher{FS: sub}
}
