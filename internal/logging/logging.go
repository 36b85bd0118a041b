package logging

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/robottwo/bishcomp/internal/core"
	"go.uber.org/zap"
)

// SinkScheme is the zap output-path scheme served by the compressed sink,
// e.g. "zstd:///home/u/.local/share/bish/bish.zst".
const SinkScheme = "zstd"

// maxLogFiles bounds how many bish.*.zst files stay in the log directory.
const maxLogFiles = 10

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func init() {
	if err := zap.RegisterSink(SinkScheme, newCompressedSink); err != nil {
		panic(fmt.Sprintf("failed to register zstd sink: %v", err))
	}
}

// NewLogger builds a production JSON logger writing to logFile through the
// compressed sink.
func NewLogger(level zap.AtomicLevel, logFile string) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = level
	loggerConfig.OutputPaths = []string{
		SinkScheme + "://" + filepath.ToSlash(logFile),
	}
	return loggerConfig.Build()
}

// newCompressedSink opens the file named by the URL path. A file that
// already holds zstd frames is appended to; anything else is truncated.
func newCompressedSink(u *url.URL) (zap.Sink, error) {
	filePath := u.Path

	// Best effort: a failed rotation must not cost us the log.
	_ = core.RotateLogFiles(filepath.Dir(filePath), maxLogFiles)

	flags := os.O_CREATE | os.O_WRONLY
	if info, err := os.Stat(filePath); err == nil && info.Size() > 0 {
		if isValidZstdFile(filePath) {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &compressedSink{file: file, encoder: encoder}, nil
}

// isValidZstdFile reports whether the file starts with the zstd magic number.
func isValidZstdFile(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer func() {
		_ = file.Close()
	}()

	buf := make([]byte, len(zstdMagic))
	if n, err := file.Read(buf); err != nil || n < len(zstdMagic) {
		return false
	}
	for i := range zstdMagic {
		if buf[i] != zstdMagic[i] {
			return false
		}
	}
	return true
}

// compressedSink is a zap.Sink writing one zstd stream per open.
type compressedSink struct {
	file    *os.File
	encoder *zstd.Encoder
}

// Write reports len(p) on success, not the compressed size.
func (s *compressedSink) Write(p []byte) (int, error) {
	if _, err := s.encoder.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *compressedSink) Sync() error {
	if err := s.encoder.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Close always closes the file, even when finishing the frame fails.
func (s *compressedSink) Close() error {
	encErr := s.encoder.Close()
	fileErr := s.file.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}
