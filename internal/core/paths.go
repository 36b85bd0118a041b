package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Paths struct {
	HomeDir   string
	ConfigDir string
	DataDir   string
	LogFile   string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		configDir := filepath.Join(homeDir, ".config", "bish")
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "bish")
		}

		defaultPaths = &Paths{
			HomeDir:   homeDir,
			ConfigDir: configDir,
			DataDir:   filepath.Join(homeDir, ".local", "share", "bish"),
			LogFile:   filepath.Join(homeDir, ".local", "share", "bish", "bish.zst"),
		}

		if err := os.MkdirAll(defaultPaths.DataDir, 0755); err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

// UserCompletionConfigPaths returns the user completion files to try, in
// order of preference.
func UserCompletionConfigPaths() []string {
	ensureDefaultPaths()
	return []string{
		filepath.Join(defaultPaths.ConfigDir, "completions.yaml"),
		filepath.Join(defaultPaths.ConfigDir, "completions.json"),
		filepath.Join(defaultPaths.HomeDir, ".bish_completions.yaml"),
		filepath.Join(defaultPaths.HomeDir, ".bish_completions.json"),
	}
}

// CompletionsDir is the directory of drop-in completion files.
func CompletionsDir() string {
	ensureDefaultPaths()
	return filepath.Join(defaultPaths.ConfigDir, "completions.d")
}

// RotateLogFiles keeps the newest maxLogFiles files named bish.*.zst in dir.
func RotateLogFiles(dir string, maxLogFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var logFiles []logFileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, "bish.") || !strings.HasSuffix(name, ".zst") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logFiles = append(logFiles, logFileInfo{
			path:    filepath.Join(dir, name),
			modTime: info.ModTime(),
		})
	}

	if len(logFiles) <= maxLogFiles {
		return nil
	}

	// newest first
	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.After(logFiles[j].modTime)
	})

	for _, f := range logFiles[maxLogFiles:] {
		if err := os.Remove(f.path); err != nil {
			return err
		}
	}
	return nil
}

type logFileInfo struct {
	path    string
	modTime time.Time
}
