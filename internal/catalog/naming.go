package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ErrBadName is returned for a file name that does not follow
// <prefix>_<token><index>.<ext>.
var ErrBadName = errors.New("file name does not carry a variable index")

// ParseIndex extracts the variable index from a file name such as
// IPEDClim_BIO012.nc (token "BIO", index 12).
func ParseIndex(filename, token string) (int, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	marker := "_" + token
	i := strings.LastIndex(base, marker)
	if token == "" || i < 0 {
		return 0, fmt.Errorf("%w: %q has no %q", ErrBadName, filename, marker)
	}
	digits := base[i+len(marker):]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", ErrBadName, filename)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadName, filename, err)
	}
	return n, nil
}

// VarName returns the variable name for an index, e.g. bio12.
func VarName(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// SortNames returns names ordered by their trailing numeric index, so bio2
// precedes bio12. Names without an index come last in string order.
func SortNames(names []string) []string {
	out := slices.Clone(names)
	slices.SortFunc(out, func(a, b string) int {
		ia, oka := nameIndex(a)
		ib, okb := nameIndex(b)
		switch {
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		case oka && okb && ia != ib:
			if ia < ib {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

func nameIndex(name string) (int, bool) {
	digits := name[len(strings.TrimRight(name, "0123456789")):]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
