package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFilenameLength is the maximum length for a filename
const MaxFilenameLength = 200

// invalidCharsRegex matches invalid filename characters
var invalidCharsRegex = regexp.MustCompile(`[<>:"|?*\\]`)

// SanitizeFilename sanitizes a single path segment for use as a filename
func SanitizeFilename(name string) string {
	name = invalidCharsRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "- ")

	if len(name) > MaxFilenameLength {
		ext := filepath.Ext(name)
		name = name[:MaxFilenameLength-len(ext)] + ext
	}

	if name == "" {
		name = "untitled"
	}

	return name
}

// RepoPathToLocal converts a slash-separated repository path to a local
// filesystem path under baseDir. With flat set, path separators collapse
// into dashes so everything lands in one directory.
func RepoPathToLocal(baseDir, repoPath string, flat bool) string {
	repoPath = strings.Trim(repoPath, "/")
	if repoPath == "" {
		repoPath = "untitled"
	}

	if flat {
		name := SanitizeFilename(strings.ReplaceAll(repoPath, "/", "-"))
		return filepath.Join(baseDir, name)
	}

	parts := strings.Split(repoPath, "/")
	for i, part := range parts {
		parts[i] = SanitizeFilename(part)
	}
	return filepath.Join(baseDir, filepath.Join(parts...))
}

// EnsureDir ensures the parent directory of path exists
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}
