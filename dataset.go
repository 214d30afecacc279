package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

const attributesColumns = 10

var tableAttributes = TableDefinition{
	Name:    "Attributes_i32",
	Columns: attributeColumns(attributesColumns),
}

func attributeColumns(n int) []Column {
	columns := make([]Column, 0, n)
	for i := 0; i < n; i++ {
		columns = append(columns, Column{Name: fmt.Sprintf("a%v", i), Type: "INTEGER"})
	}
	return columns
}

var queriesAttributes = []Query{
	{Name: "lt_-2147483647", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < -2147483647`},
	{Name: "lt_-1717986918", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < -1717986918`},
	{Name: "lt_-1288490188", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < -1288490188`},
	{Name: "lt_-858993459", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < -858993459`},
	{Name: "lt_-429496729", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < -429496729`},
	{Name: "lt_0", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 0`},
	{Name: "lt_429496729", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 429496729`},
	{Name: "lt_858993459", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 858993459`},
	{Name: "lt_1288490188", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 1288490188`},
	{Name: "lt_1717986918", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 1717986918`},
	{Name: "lt_2147483647", Query: `SELECT COUNT(*) FROM Attributes_i32 WHERE a0 < 2147483647`},
}

// EnsureDataset generates rows of uniformly distributed int32 values unless the file already exists.
func EnsureDataset(path string, rows int, seed int64) error {
	return ensureDataset(path, rows, func(writer io.Writer) error {
		Logger.Infof("generate dataset %v with %v rows (seed %v)", path, rows, seed)
		return writeDataset(writer, tableAttributes, rows, rand.New(rand.NewSource(seed)))
	})
}

// ensureDataset writes next to the target and renames only a complete file into place,
// so a failed generation never leaves something that a later run would take for the dataset.
func ensureDataset(path string, rows int, generate func(writer io.Writer) error) error {
	if _, err := os.Stat(path); err == nil {
		Logger.Infof("dataset %v already exists, skip generation", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if rows <= 0 {
		return fmt.Errorf("dataset %v does not exist and generation is disabled", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// the base name stays the suffix so the compression is still detected from it
	partial := filepath.Join(filepath.Dir(path), ".partial-"+filepath.Base(path))
	writer, cleanup, err := CreateDataset(partial)
	if err != nil {
		return err
	}
	if err := errors.Join(generate(writer), cleanup()); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("failed to generate dataset %v: %w", path, err)
	}
	return os.Rename(partial, path)
}

func writeDataset(writer io.Writer, table TableDefinition, rows int, random *rand.Rand) error {
	buffered := bufio.NewWriterSize(writer, 1<<16)
	line := make([]byte, 0, 128)
	for i, column := range table.Columns {
		if i > 0 {
			line = append(line, ',')
		}
		line = append(line, column.Name...)
	}
	line = append(line, '\n')
	if _, err := buffered.Write(line); err != nil {
		return err
	}
	for r := 0; r < rows; r++ {
		line = line[:0]
		for i := range table.Columns {
			if i > 0 {
				line = append(line, ',')
			}
			line = strconv.AppendInt(line, int64(int32(random.Uint32())), 10)
		}
		line = append(line, '\n')
		if _, err := buffered.Write(line); err != nil {
			return err
		}
	}
	return buffered.Flush()
}

// ScanDataset streams the data rows of a CSV file with a header row. Every field must be an int32.
func ScanDataset(path string, columns int, fn func(row []int32) error) (int64, error) {
	reader, cleanup, err := OpenDataset(path)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	parser := csv.NewReader(bufio.NewReaderSize(reader, 1<<16))
	parser.Comma = ','
	parser.FieldsPerRecord = columns
	parser.ReuseRecord = true

	if _, err := parser.Read(); err != nil {
		return 0, fmt.Errorf("failed to read header of %v: %w", path, err)
	}
	row := make([]int32, columns)
	var count int64
	for {
		record, err := parser.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read %v: %w", path, err)
		}
		for i, field := range record {
			value, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				line, _ := parser.FieldPos(i)
				return count, fmt.Errorf("invalid integer %q at %v:%v: %w", field, path, line, err)
			}
			row[i] = int32(value)
		}
		if err := fn(row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
