//go:build !windows
// +build !windows

package completion

import (
	"golang.org/x/sys/unix"
)

// isExecutable reports whether the current user may execute path.
func isExecutable(path string) bool {
	info, err := osStat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

func commandName(fileName string) string {
	return fileName
}
