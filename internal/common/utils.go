// Package common provides utility functions used across wfmigrate.
package common

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/otiai10/copy"
)

// Characters JCR node names and plain paths may not carry.
var (
	jcrIllegalName = regexp.MustCompile(`[/:\[\]|* ."']`)
	jcrUnsafePath  = regexp.MustCompile(`[:\[\]|* ."']`)
)

// SanitizeName sanitizes a string for use in file/directory names.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	// Keep only alphanumeric characters, hyphens, and underscores
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// JcrSafeNodeName replaces characters that are illegal in JCR node names with underscores and lowercases the result.
func JcrSafeNodeName(name string) string {
	return strings.ToLower(jcrIllegalName.ReplaceAllString(name, "_"))
}

// IsJcrSafePath reports whether path is a plain JCR path rather than a pattern.
func IsJcrSafePath(path string) bool {
	return !jcrUnsafePath.MatchString(path)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	return nil
}

// RemoveBrackets strips one leading "[" and one trailing "]" when present.
func RemoveBrackets(s string) string {
	s = strings.TrimPrefix(s, "[")
	return strings.TrimSuffix(s, "]")
}

// ParseList parses a JCR multi-value string such as "[a, b]" or "a,b" into trimmed, non-empty items.
func ParseList(s string) []string {
	s = RemoveBrackets(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FormatList serializes items as a JCR multi-value string.
func FormatList(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

// JoinCSV joins items with commas and no spaces.
func JoinCSV(items []string) string {
	return strings.Join(items, ",")
}

// AppendUnique appends the items of add that dst does not already contain, preserving order.
func AppendUnique(dst []string, add ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(add))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

// CopyTree copies the directory tree at src to dst, overwriting existing files.
func CopyTree(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source directory not accessible: %w", err)
	}
	opts := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Shallow },
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			return info.IsDir() && (info.Name() == ".git" || info.Name() == "target"), nil
		},
	}
	if err := copy.Copy(src, dst, opts); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// ListFiles returns the slash-separated paths, relative to root, of every regular file below root.
func ListFiles(root string) ([]string, error) {
	files, err := doublestar.Glob(os.DirFS(root), "**", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", root, err)
	}
	return files, nil
}
