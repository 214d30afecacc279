package main

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// EngineSqlite has no bulk COPY, so the dataset is parsed here and inserted through one prepared statement in one transaction.
type EngineSqlite struct{}

type SessionSqlite struct {
	*sqlSession
	tables map[string]TableDefinition
}

func (e *EngineSqlite) Name() string { return "sqlite" }

func (e *EngineSqlite) Open(ctx context.Context, path string) (Session, error) {
	if err := replaceDatabase(path, "-journal", "-wal", "-shm"); err != nil {
		return nil, err
	}
	session, err := openSession(ctx, "sqlite", path)
	if err != nil {
		return nil, err
	}
	Logger.Infof("opened sqlite database %v (no telemetry to disable)", path)
	return &SessionSqlite{sqlSession: session, tables: make(map[string]TableDefinition)}, nil
}

// CreateTable makes the table STRICT so that non-integer values are rejected like in typed engines.
func (s *SessionSqlite) CreateTable(ctx context.Context, table TableDefinition) error {
	_, err := s.conn.ExecContext(ctx, table.CreateSql()+" STRICT")
	if err != nil {
		return fmt.Errorf("failed to create table %v: %w", table.Name, err)
	}
	s.tables[table.Name] = table
	Logger.Infof("created table %v with %v columns", table.Name, len(table.Columns))
	return nil
}

func (s *SessionSqlite) CopyFrom(ctx context.Context, table string, path string) (int64, error) {
	definition, ok := s.tables[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %v", table)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(definition.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %v VALUES (%v)", quoteIdent(table), placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := make([]any, len(definition.Columns))
	rows, err := ScanDataset(path, len(definition.Columns), func(row []int32) error {
		for i, value := range row {
			args[i] = int64(value)
		}
		_, err := stmt.ExecContext(ctx, args...)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy %v into %v: %w", path, table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rows, nil
}
