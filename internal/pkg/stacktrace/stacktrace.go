// Package stacktrace trims debug.Stack output down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" entries for every
// frame of the raw stack that lives under an internal/ directory.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ".go:") {
			continue
		}

		_, rest, found := strings.Cut(line, "/internal/")
		if !found {
			continue
		}
		if end := strings.IndexByte(rest, ' '); end != -1 {
			rest = rest[:end]
		}
		paths = append(paths, "internal/"+rest)
	}
	return paths
}
