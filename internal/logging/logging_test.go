package logging

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sinkURL(t *testing.T, path string) *url.URL {
	u, err := url.Parse(SinkScheme + "://" + filepath.ToSlash(path))
	require.NoError(t, err)
	return u
}

func readZstd(t *testing.T, path string) string {
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	dec, err := zstd.NewReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer dec.Close()

	result, err := io.ReadAll(dec)
	require.NoError(t, err)
	return string(result)
}

func createValidZstdFrame(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	require.NoError(t, err)
	_, err = encoder.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, encoder.Close())
	return buf.Bytes()
}

func TestIsValidZstdFile(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		create   bool
		expected bool
	}{
		{name: "Non-existent file returns false", create: false, expected: false},
		{name: "Empty file returns false", create: true, content: []byte{}, expected: false},
		{name: "Invalid header returns false", create: true, content: []byte{0, 0, 0, 0}, expected: false},
		{name: "Plain text returns false", create: true, content: []byte("plain text log"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.zst")
			if tt.create {
				require.NoError(t, os.WriteFile(path, tt.content, 0644))
			}
			assert.Equal(t, tt.expected, isValidZstdFile(path))
		})
	}

	t.Run("Valid zstd frame returns true", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.zst")
		require.NoError(t, os.WriteFile(path, createValidZstdFrame(t, "entry"), 0644))
		assert.True(t, isValidZstdFile(path))
	})
}

func TestCompressedSink(t *testing.T) {
	t.Run("Appends to an existing zstd file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bish.zst")
		require.NoError(t, os.WriteFile(path, createValidZstdFrame(t, "initial log\n"), 0644))

		sink, err := newCompressedSink(sinkURL(t, path))
		require.NoError(t, err)
		_, err = sink.Write([]byte("second entry\n"))
		require.NoError(t, err)
		require.NoError(t, sink.Close())

		result := readZstd(t, path)
		assert.Contains(t, result, "initial log")
		assert.Contains(t, result, "second entry")
	})

	t.Run("Truncates a corrupted file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bish.zst")
		require.NoError(t, os.WriteFile(path, []byte("corrupted data"), 0644))

		sink, err := newCompressedSink(sinkURL(t, path))
		require.NoError(t, err)
		_, err = sink.Write([]byte("fresh entry"))
		require.NoError(t, err)
		require.NoError(t, sink.Close())

		result := readZstd(t, path)
		assert.Contains(t, result, "fresh entry")
		assert.NotContains(t, result, "corrupted data")
	})

	t.Run("Write returns input byte count", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bish.zst")
		sink, err := newCompressedSink(sinkURL(t, path))
		require.NoError(t, err)
		defer func() {
			_ = sink.Close()
		}()

		data := []byte("test message that will be compressed")
		n, err := sink.Write(data)
		assert.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.NoError(t, sink.Sync())
	})
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bish.zst")

	logger, err := NewLogger(zap.NewAtomicLevelAt(zap.InfoLevel), path)
	require.NoError(t, err)

	logger.Info("registered completion", zap.String("command", "git"))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	assert.True(t, isValidZstdFile(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(len(zstdMagic)))
}
