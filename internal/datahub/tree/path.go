package tree

import (
	"strings"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
)

const (
	maxSegmentBytes = 47
	maxPathBytes    = 511
)

// ObsNamespace is the reserved namespace that every Observation lives
// under (spec.md §3, §4.4).
const ObsNamespace = "/obs"

// splitPath validates path against the grammar of spec.md §3
// ("/([^/]+)(/[^/]+)*", each segment at most 47 bytes, the whole path
// at most 511 bytes, no "." or ".." segments) and returns its segments.
func splitPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, dherrors.ErrBadParameter
	}
	if len(path) > maxPathBytes {
		return nil, dherrors.ErrBadParameter
	}
	if path == "/" {
		return nil, nil
	}
	parts := strings.Split(path[1:], "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return nil, dherrors.ErrBadParameter
		}
		if len(p) > maxSegmentBytes {
			return nil, dherrors.ErrBadParameter
		}
	}
	return parts, nil
}

// ValidatePath reports whether path conforms to the resource-path
// grammar, without touching the tree. Used by the config loader's
// validate phase (spec.md §4.6) to check syntax ahead of any mutation.
func ValidatePath(path string) error {
	_, err := splitPath(path)
	return err
}

// NormalizeObsPath prefixes a bare observation name with the reserved
// /obs namespace, as a convenience for admin callers that pass names
// relative to it (spec.md §4.4). A path already rooted anywhere is left
// untouched.
func NormalizeObsPath(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return ObsNamespace + "/" + name
}

// Join appends name to base, producing an absolute path. base must
// already be absolute ("" is treated as "/").
func Join(base, name string) string {
	if base == "" || base == "/" {
		return "/" + name
	}
	return base + "/" + name
}
