package diagnostic

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileURI converts an absolute filesystem path to a file:// URI.
func FileURI(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// windows drive paths
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// URIPath converts a file:// URI to a filesystem path. Anything that is not a
// file URI is returned unchanged.
func URIPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
