// Package pathutil builds the dotted/indexed issue paths used across
// validation output, e.g. children[1].config.items[0].label.
package pathutil

import (
	"strconv"
	"strings"
)

// Join appends a key segment to a parent path.
func Join(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// Index appends an indexed segment: items -> items[2].
func Index(parent string, idx int) string {
	return parent + "[" + strconv.Itoa(idx) + "]"
}

// Prefix re-roots a child path under prefix, which already carries its index
// (children[1]). Empty child paths collapse to the prefix.
func Prefix(prefix, path string) string {
	if path == "" {
		return prefix
	}
	if strings.HasPrefix(path, "[") {
		return prefix + path
	}
	return prefix + "." + path
}

// FromPointer converts a JSON pointer instance location (/items/0/label) into
// dotted notation rooted at root (config.items[0].label).
func FromPointer(root, pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return root
	}
	return FromSegments(root, strings.Split(trimmed, "/"))
}

// FromSegments joins already-split pointer segments. Numeric segments become
// indexes.
func FromSegments(root string, segments []string) string {
	path := root
	for _, raw := range segments {
		segment := strings.ReplaceAll(raw, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 {
			path = Index(path, idx)
			continue
		}
		path = Join(path, segment)
	}
	return path
}
