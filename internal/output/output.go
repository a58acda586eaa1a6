// Package output prepares and lists the directory receiving yearly rasters.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
)

var (
	// ErrNotDirectory is returned when the output path exists but is not a
	// directory.
	ErrNotDirectory = errors.New("output path exists and is not a directory")
	// ErrNoOutputDir is returned by List when the directory does not exist.
	ErrNoOutputDir = errors.New("output directory not found")
)

// EnsureDir creates dir and its parents unless it already exists.
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err == nil && !fi.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// List returns the sorted names of the regular files in dir ending in ext.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoOutputDir, dir)
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
