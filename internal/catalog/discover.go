package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
)

var (
	// ErrNoSources is returned when no input file matches.
	ErrNoSources = errors.New("no input files found")
	// ErrDuplicateVariable is returned when two files map to one variable.
	ErrDuplicateVariable = errors.New("variable provided by more than one file")
)

// Source is one input file and the variable it is expected to hold.
type Source struct {
	Name  string
	Index int
	Path  string
}

// Naming describes how input file names map to variable names.
type Naming struct {
	// Pattern is a filepath.Match pattern relative to the input directory.
	Pattern string
	// Token precedes the variable index in file names ("BIO").
	Token string
	// Prefix precedes the index in variable names ("bio").
	Prefix string
}

// Discover lists the files of dir matching the naming pattern, in path order.
// Files whose names carry no index are logged and skipped.
func Discover(dir string, n Naming, logger *slog.Logger) ([]Source, error) {
	paths, err := filepath.Glob(filepath.Join(dir, n.Pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", n.Pattern, err)
	}
	slices.Sort(paths)

	seen := make(map[string]string, len(paths))
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		idx, err := ParseIndex(path, n.Token)
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			continue
		}
		name := VarName(n.Prefix, idx)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateVariable, name, prev, path)
		}
		seen[name] = path
		sources = append(sources, Source{Name: name, Index: idx, Path: path})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, filepath.Join(dir, n.Pattern))
	}
	logger.Info("found input files", "count", len(sources), "dir", dir)
	return sources, nil
}
