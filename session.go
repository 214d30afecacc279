package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// sqlSession holds the two scoped resources of a run: the engine handle and the one connection used for every statement.
type sqlSession struct {
	db   *sql.DB
	conn *sql.Conn
}

func openSession(ctx context.Context, driver string, dsn string) (*sqlSession, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v database: %w", driver, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %v database: %w", driver, err)
	}
	return &sqlSession{db: db, conn: conn}, nil
}

// replaceDatabase removes the database file and the side files the engine keeps next to it.
func replaceDatabase(path string, suffixes ...string) error {
	for _, suffix := range append([]string{""}, suffixes...) {
		err := os.Remove(path + suffix)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to replace database %v: %w", path+suffix, err)
		}
	}
	return nil
}

func (s *sqlSession) CreateTable(ctx context.Context, table TableDefinition) error {
	_, err := s.conn.ExecContext(ctx, table.CreateSql())
	if err != nil {
		return fmt.Errorf("failed to create table %v: %w", table.Name, err)
	}
	Logger.Infof("created table %v with %v columns", table.Name, len(table.Columns))
	return nil
}

func (s *sqlSession) Query(ctx context.Context, query string) (int64, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	var drained int64
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return drained, err
		}
		drained++
	}
	return drained, rows.Err()
}

func (s *sqlSession) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (s *sqlSession) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}
