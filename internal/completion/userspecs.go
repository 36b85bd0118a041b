package completion

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// UserCompletionConfig represents user-defined completion configuration
type UserCompletionConfig struct {
	Commands map[string][]UserCompletion `yaml:"commands" json:"commands"`
}

// UserCompletion represents a single user-defined completion entry
type UserCompletion struct {
	Value       string `yaml:"value" json:"value"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// LoadUserSpecs registers a word-list spec for every command in the first
// of paths that exists. It returns the path loaded, or "" when none exists.
func LoadUserSpecs(registry *Registry, paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := readUserCompletionConfig(path)
		if err != nil {
			return path, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if _, err := registerUserCompletions(registry, config); err != nil {
			return path, err
		}
		return path, nil
	}
	return "", nil
}

// readUserCompletionConfig loads completions from a YAML or JSON file
func readUserCompletionConfig(path string) (*UserCompletionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config UserCompletionConfig

	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		// YAML is a superset of JSON
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// registerUserCompletions returns the number of commands registered;
// commands without any value are skipped.
func registerUserCompletions(registry *Registry, config *UserCompletionConfig) (int, error) {
	registered := 0
	for command, entries := range config.Commands {
		words := lo.FilterMap(entries, func(e UserCompletion, _ int) (string, bool) {
			return e.Value, e.Value != ""
		})
		if len(words) == 0 {
			continue
		}
		chain, err := NewChain(
			[]Action{NewWordsAction(words)},
			WithSpec("-W "+quote(strings.Join(words, " "))),
		)
		if err != nil {
			return registered, err
		}
		registry.RegisterName(command, chain)
		registered++
	}
	return registered, nil
}
