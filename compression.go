package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionXz   Compression = "xz"
)

func DetectCompression(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(lower, ".xz"):
		return CompressionXz
	}
	return CompressionNone
}

// OpenDataset returns a reader over the decompressed content of the file and a cleanup closing everything it opened.
func OpenDataset(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	var reader io.Reader
	cleanup := func() error { return nil }
	switch DetectCompression(path) {
	case CompressionNone:
		reader = file
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("failed to create gzip reader for %v: %w", path, err)
		}
		reader, cleanup = gz, gz.Close
	case CompressionZstd:
		decoder, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("failed to create zstd reader for %v: %w", path, err)
		}
		reader, cleanup = decoder, func() error { decoder.Close(); return nil }
	case CompressionXz:
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("failed to create xz reader for %v: %w", path, err)
		}
		reader = xzReader
	}
	return reader, func() error { return errors.Join(cleanup(), file.Close()) }, nil
}

// CreateDataset truncates the file and returns a writer compressing by the file extension.
// The cleanup flushes the compressor before syncing and closing the file.
func CreateDataset(path string) (io.Writer, func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	var writer io.Writer
	cleanup := func() error { return nil }
	switch DetectCompression(path) {
	case CompressionNone:
		writer = file
	case CompressionGzip:
		gz := gzip.NewWriter(file)
		writer, cleanup = gz, gz.Close
	case CompressionZstd:
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("failed to create zstd writer for %v: %w", path, err)
		}
		writer, cleanup = encoder, encoder.Close
	case CompressionXz:
		xzWriter, err := xz.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, nil, fmt.Errorf("failed to create xz writer for %v: %w", path, err)
		}
		writer, cleanup = xzWriter, xzWriter.Close
	}
	return writer, func() error {
		if err := cleanup(); err != nil {
			_ = file.Close()
			return err
		}
		return errors.Join(file.Sync(), file.Close())
	}, nil
}
