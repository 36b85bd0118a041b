package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCompletionConfigPaths(t *testing.T) {
	oldDefaultPaths := defaultPaths
	defer func() {
		defaultPaths = oldDefaultPaths
	}()

	defaultPaths = &Paths{
		HomeDir:   "/home/u",
		ConfigDir: "/home/u/.config/bish",
	}

	assert.Equal(t, []string{
		"/home/u/.config/bish/completions.yaml",
		"/home/u/.config/bish/completions.json",
		"/home/u/.bish_completions.yaml",
		"/home/u/.bish_completions.json",
	}, UserCompletionConfigPaths())
	assert.Equal(t, filepath.Join("/home/u/.config/bish", "completions.d"), CompletionsDir())
}

func TestRotateLogFiles(t *testing.T) {
	t.Run("Keeps the most recent files", func(t *testing.T) {
		tmpDir := t.TempDir()

		now := time.Now()
		for i := 0; i < 5; i++ {
			path := filepath.Join(tmpDir, fmt.Sprintf("bish.%d.zst", i))
			require.NoError(t, os.WriteFile(path, []byte("log"), 0644))
			modTime := now.Add(time.Duration(i) * time.Minute)
			require.NoError(t, os.Chtimes(path, modTime, modTime))
		}
		other := filepath.Join(tmpDir, "other.log")
		require.NoError(t, os.WriteFile(other, []byte("other"), 0644))

		require.NoError(t, RotateLogFiles(tmpDir, 3))

		for i := 0; i < 5; i++ {
			_, err := os.Stat(filepath.Join(tmpDir, fmt.Sprintf("bish.%d.zst", i)))
			if i < 2 {
				assert.True(t, os.IsNotExist(err), "bish.%d.zst should be removed", i)
			} else {
				assert.NoError(t, err, "bish.%d.zst should be kept", i)
			}
		}
		_, err := os.Stat(other)
		assert.NoError(t, err, "Other file should not be removed")
	})

	t.Run("Handles empty directory", func(t *testing.T) {
		assert.NoError(t, RotateLogFiles(t.TempDir(), 3))
	})

	t.Run("Missing directory is an error", func(t *testing.T) {
		assert.Error(t, RotateLogFiles(filepath.Join(t.TempDir(), "missing"), 3))
	})
}
