package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	_ "github.com/marcboeker/go-duckdb"
)

type EngineDuckDB struct {
	Threads int
}

type SessionDuckDB struct {
	*sqlSession
}

func (e *EngineDuckDB) Name() string { return "duckdb" }

// dsn opts out of extension auto-install and auto-load, the only outbound traffic the embedded engine makes on its own.
func (e *EngineDuckDB) dsn(path string) string {
	options := url.Values{}
	options.Set("autoinstall_known_extensions", "false")
	options.Set("autoload_known_extensions", "false")
	if e.Threads > 0 {
		options.Set("threads", fmt.Sprintf("%v", e.Threads))
	}
	return path + "?" + options.Encode()
}

func (e *EngineDuckDB) Open(ctx context.Context, path string) (Session, error) {
	if err := replaceDatabase(path, ".wal"); err != nil {
		return nil, err
	}
	session, err := openSession(ctx, "duckdb", e.dsn(path))
	if err != nil {
		return nil, err
	}
	Logger.Infof("opened duckdb database %v (threads: %v)", path, e.Threads)
	return &SessionDuckDB{sqlSession: session}, nil
}

func (s *SessionDuckDB) CopyFrom(ctx context.Context, table string, path string) (int64, error) {
	source := path
	if compression := DetectCompression(path); compression == CompressionXz || compression == CompressionZstd {
		plain, err := decompressToTemp(path)
		if err != nil {
			return 0, err
		}
		defer os.Remove(plain)
		source = plain
	}
	copySql := fmt.Sprintf("COPY %v FROM %v (FORMAT csv, DELIMITER ',', HEADER true)", quoteIdent(table), quoteLiteral(source))
	var rows int64
	if err := s.conn.QueryRowContext(ctx, copySql).Scan(&rows); err != nil {
		return 0, fmt.Errorf("failed to copy %v into %v: %w", path, table, err)
	}
	return rows, nil
}

// decompressToTemp feeds COPY a plain file for encodings other than gzip.
func decompressToTemp(path string) (string, error) {
	reader, cleanup, err := OpenDataset(path)
	if err != nil {
		return "", err
	}
	defer cleanup()
	file, err := os.CreateTemp("", "benchmark-dataset-*.csv")
	if err != nil {
		return "", err
	}
	_, err = io.Copy(file, reader)
	if err = errors.Join(err, file.Close()); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("failed to decompress %v: %w", path, err)
	}
	Logger.Debugf("decompressed %v into %v", path, file.Name())
	return file.Name(), nil
}
