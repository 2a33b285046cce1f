package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// CamelotFS is an Afero FS with added functionality
// to replicate OS filesystems in testing
type CamelotFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type camelotOSFS struct {
	afero.Fs
}

func NewCamelotOSFS() CamelotFS {
	return &camelotOSFS{
		afero.NewOsFs(),
	}
}

func (g *camelotOSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (g *camelotOSFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type camelotMemFS struct {
	afero.Fs
}

func NewCamelotMemFS() CamelotFS {
	return &camelotMemFS{
		afero.NewMemMapFs(),
	}
}

func (g *camelotMemFS) Abs(path string) (string, error) {
	return path, nil
}

func (g *camelotMemFS) HomeDir() (string, error) {
	return "/", nil
}

// ResolvePath expands a leading ~ and makes path absolute.
func ResolvePath(fs CamelotFS, path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := fs.HomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return fs.Abs(path)
}
