package storage

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// URI names an object of an Engine.  Local paths are held as file URIs with
// slash-separated absolute paths.
type URI url.URL

// ParseURI parses s as a URI when it has a scheme an Engine serves and
// otherwise as a local path, made absolute.
func ParseURI(s string) (*URI, error) {
	if u, err := url.Parse(s); err == nil && knownScheme(Scheme(u.Scheme)) {
		return (*URI)(u), nil
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		// Drive letter.
		abs = "/" + abs
	}
	return &URI{Scheme: string(FileScheme), Path: abs}, nil
}

func MustParseURI(s string) *URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URI) String() string {
	return (*url.URL)(&u).String()
}

func (u *URI) HasScheme(s Scheme) bool {
	return Scheme(u.Scheme) == s
}

// Base returns the last element of the URI's path.
func (u *URI) Base() string {
	return path.Base(u.Path)
}

// Filepath returns the local path of a file URI.
func (u URI) Filepath() string {
	p := u.Path
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
