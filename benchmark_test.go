package main

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSession struct {
	Session
	executed []string
	failOn   string
}

func (s *recordingSession) Query(_ context.Context, query string) (int64, error) {
	s.executed = append(s.executed, query)
	if query == s.failOn {
		return 0, errors.New("query failed")
	}
	return 1, nil
}

func TestMeasureOrderAndWarmup(t *testing.T) {
	session := &recordingSession{}
	benchmark := Benchmark{Warmup: 2}
	queries := []Query{{Name: "first", Query: "q1"}, {Name: "second", Query: "q2"}}

	measurements, err := benchmark.Measure(context.Background(), session, queries)
	require.Nil(t, err)
	require.Equal(t, []string{"q1", "q1", "q1", "q2", "q2", "q2"}, session.executed)
	require.Len(t, measurements, 2)
	require.Equal(t, "first", measurements[0].Name)
	require.Equal(t, "second", measurements[1].Name)
	for _, measurement := range measurements {
		require.Equal(t, int64(1), measurement.Rows)
		require.GreaterOrEqual(t, measurement.Elapsed, time.Duration(0))
	}
}

func TestMeasureStopsOnFailure(t *testing.T) {
	session := &recordingSession{failOn: "q2"}
	benchmark := Benchmark{}
	queries := []Query{{Name: "first", Query: "q1"}, {Name: "second", Query: "q2"}, {Name: "third", Query: "q3"}}

	measurements, err := benchmark.Measure(context.Background(), session, queries)
	require.NotNil(t, err)
	require.Nil(t, measurements)
	require.Equal(t, []string{"q1", "q2"}, session.executed)
}

func TestWriteReport(t *testing.T) {
	measurements := []Measurement{
		{Name: "a", Elapsed: 1234567 * time.Nanosecond},
		{Name: "b", Elapsed: 2 * time.Second},
		{Name: "c", Elapsed: 15 * time.Nanosecond},
		{Name: "d", Elapsed: 0},
	}
	var out bytes.Buffer
	require.Nil(t, WriteReport(&out, measurements))
	require.Equal(t, "1.234567\n2000\n0.000015\n0\n", out.String())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, len(measurements))
	for i, line := range lines {
		value, err := strconv.ParseFloat(line, 64)
		require.Nil(t, err)
		require.False(t, math.IsInf(value, 0) || math.IsNaN(value))
		require.GreaterOrEqual(t, value, 0.0)
		require.Equal(t, measurements[i].Milliseconds(), value)
	}
}
