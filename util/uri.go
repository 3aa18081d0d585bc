// Package util holds filesystem and URI helpers shared by the crawler,
// store, and server packages.
package util

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/carn181/mlsp/logging"
)

type Path = string
type URI = string

// Handle pairs a document's URI with its decoded filesystem path, the
// two forms every document identity carries through the system.
type Handle struct {
	URI  URI
	Path Path
}

func FromPath(path string) Handle {
	return Handle{URI: Path2URI(path), Path: path}
}

func FromURI(uri string) (Handle, error) {
	path, err := URI2path(uri)
	return Handle{URI: uri, Path: path}, err
}

func URI2path(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if IsWindowsDriveURIPath(u.Path) {
		u.Path = strings.ToUpper(string(u.Path[1])) + u.Path[2:]
	}
	return filepath.FromSlash(u.Path), nil
}

func Path2URI(path string) URI {
	scheme := "file://"
	if runtime.GOOS == "windows" {
		path = "/" + strings.Replace(path, "\\", "/", -1)
	}
	return scheme + path
}

func IsWindowsDriveURIPath(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func IsWindowsDrivePath(path string) bool {
	if len(path) < 3 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

// IsValidPath reports whether path exists on disk.
func IsValidPath(path Path) bool {
	_, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Logger.Warn("stat failed", "path", path, "err", err)
		}
		return false
	}
	return true
}
