package main

import (
	"context"
	"fmt"
	"strings"
)

type Query struct {
	Name  string
	Query string
}

type Column struct {
	Name     string
	Type     string
	Nullable bool
}

type TableDefinition struct {
	Name    string
	Columns []Column
}

// CreateSql renders the definition as a CREATE TABLE statement without keys or indexes.
func (t TableDefinition) CreateSql() string {
	columns := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		nullability := "NOT NULL"
		if column.Nullable {
			nullability = "NULL"
		}
		columns = append(columns, fmt.Sprintf("%v %v %v", quoteIdent(column.Name), column.Type, nullability))
	}
	return fmt.Sprintf("CREATE TABLE %v (%v)", quoteIdent(t.Name), strings.Join(columns, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

type Engine interface {
	Name() string
	// Open replaces whatever database exists at path and returns a session bound to a single connection.
	Open(ctx context.Context, path string) (Session, error)
}

type Session interface {
	CreateTable(ctx context.Context, table TableDefinition) error
	// CopyFrom loads a comma-delimited CSV file with a header row and returns the number of loaded rows.
	CopyFrom(ctx context.Context, table string, path string) (int64, error)
	// Query executes the statement and drains every result row.
	Query(ctx context.Context, query string) (int64, error)
	Count(ctx context.Context, query string) (int64, error)
	Close() error
}

func NewEngine(name string, threads int) (Engine, error) {
	switch name {
	case "duckdb":
		return &EngineDuckDB{Threads: threads}, nil
	case "sqlite":
		return &EngineSqlite{}, nil
	}
	return nil, fmt.Errorf("unknown engine '%v'", name)
}
