package completion

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Function variables for mocking in tests
var osReadDir = os.ReadDir
var osStat = os.Stat

// FileSystemAction lists the directory named by the word being completed
// (the current directory when it has no slash).
type FileSystemAction struct {
	DirsOnly bool
	ExecOnly bool
	// AddSlash appends a slash to directory names.
	AddSlash bool
}

func (a *FileSystemAction) Kind() ActionKind { return FileSystemKind }

func (a *FileSystemAction) Matches(_ context.Context, req *Request) ([]string, error) {
	toComplete := req.ToComplete
	dirPart, base := "", toComplete
	if i := strings.LastIndex(toComplete, "/"); i >= 0 {
		dirPart, base = toComplete[:i+1], toComplete[i+1:]
	}

	listDir := dirPart
	if listDir == "" {
		listDir = "."
	}
	if !filepath.IsAbs(listDir) && req.Dir != "" {
		listDir = filepath.Join(req.Dir, listDir)
	}

	entries, err := osReadDir(listDir)
	if err != nil {
		// An unreadable or missing directory has no completions.
		return nil, nil
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}

		full := filepath.Join(listDir, name)
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := osStat(full); err == nil {
				isDir = info.IsDir()
			}
		}

		if a.DirsOnly && !isDir {
			continue
		}
		if a.ExecOnly && (isDir || !isExecutable(full)) {
			continue
		}

		path := dirPart + name
		if isDir && a.AddSlash {
			path += "/"
		}
		matches = append(matches, path)
	}
	return matches, nil
}

func (*FileSystemAction) isAction() {}

// ExternalCommandAction yields executables found on $PATH, directory by
// directory in $PATH order.
type ExternalCommandAction struct{}

func (ExternalCommandAction) Kind() ActionKind { return ExternalCommandKind }

func (ExternalCommandAction) Matches(_ context.Context, req *Request) ([]string, error) {
	path := req.environ().Get("PATH").String()

	var matches []string
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		entries, err := osReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, req.ToComplete) || entry.IsDir() {
				continue
			}
			if isExecutable(filepath.Join(dir, name)) {
				matches = append(matches, commandName(name))
			}
		}
	}
	return matches, nil
}

func (ExternalCommandAction) isAction() {}
