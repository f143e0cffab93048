package bundle

import (
	"bytes"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// compressedSizes reports what the bundle costs on the wire when the web
// server compresses it with gzip and brotli.
func compressedSizes(content string) (gz, br int, err error) {
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := zw.Write([]byte(content)); err != nil {
		return 0, 0, fmt.Errorf("failed to gzip bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to gzip bundle: %w", err)
	}
	gz = buf.Len()

	buf.Reset()
	bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := bw.Write([]byte(content)); err != nil {
		return 0, 0, fmt.Errorf("failed to brotli bundle: %w", err)
	}
	if err := bw.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to brotli bundle: %w", err)
	}
	br = buf.Len()

	return gz, br, nil
}
