package completion

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpecDirLoader registers word-list specs from every YAML file of a
// directory tree, e.g. ~/.config/bish/completions.d.
type SpecDirLoader struct {
	fs fs.FS
}

func NewSpecDirLoader(fsys fs.FS) *SpecDirLoader {
	return &SpecDirLoader{fs: fsys}
}

// Files lists the YAML files in walk order.
func (l *SpecDirLoader) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(l.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list completion files: %w", err)
	}
	return files, nil
}

// Load reads every file into one command table. A command defined in
// several files keeps the entries of the last one.
func (l *SpecDirLoader) Load() (map[string][]UserCompletion, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	completions := make(map[string][]UserCompletion)
	for _, path := range files {
		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var config UserCompletionConfig
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for command, entries := range config.Commands {
			completions[command] = entries
		}
	}
	return completions, nil
}

// Register loads the directory and installs the result in registry. It
// returns the number of commands registered.
func (l *SpecDirLoader) Register(registry *Registry) (int, error) {
	commands, err := l.Load()
	if err != nil {
		return 0, err
	}
	return registerUserCompletions(registry, &UserCompletionConfig{Commands: commands})
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
