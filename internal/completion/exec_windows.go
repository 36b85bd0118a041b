//go:build windows
// +build windows

package completion

import (
	"os"
	"path/filepath"
	"strings"
)

func pathExts() []string {
	exts := os.Getenv("PATHEXT")
	if exts == "" {
		return []string{".com", ".exe", ".bat", ".cmd"}
	}
	return strings.Split(strings.ToLower(exts), ";")
}

// isExecutable reports whether path has one of the $PATHEXT extensions.
func isExecutable(path string) bool {
	info, err := osStat(path)
	if err != nil || info.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range pathExts() {
		if e != "" && ext == e {
			return true
		}
	}
	return false
}

// commandName strips the executable extension so `git.exe` completes as `git`.
func commandName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
