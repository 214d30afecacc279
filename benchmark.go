package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

type Benchmark struct {
	Warmup      int
	ClearCaches bool
}

type Measurement struct {
	Name    string
	Query   string
	Elapsed time.Duration
	Rows    int64
}

func (m Measurement) Milliseconds() float64 {
	return float64(m.Elapsed.Nanoseconds()) / 1e6
}

func clearCaches() error {
	switch runtime.GOOS {
	case "linux":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("sh", "-c", "echo 3 | sudo tee /proc/sys/vm/drop_caches").Run(); err != nil {
			return err
		}
		return nil
	case "darwin":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("purge").Run(); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unable to clear caches for platform '%v'", runtime.GOOS)
}

func (b *Benchmark) clearCachesIfNeeded() error {
	if !b.ClearCaches {
		return nil
	}
	Logger.Debugf("clear caches")
	return clearCaches()
}

func (b *Benchmark) warmupQuery(ctx context.Context, session Session, query Query) error {
	for i := 0; i < b.Warmup; i++ {
		Logger.Debugf("running warmup #%v/%v query %v", i+1, b.Warmup, query.Name)
		if _, err := session.Query(ctx, query.Query); err != nil {
			return fmt.Errorf("warmup #%v failed: %w", i, err)
		}
	}
	return nil
}

// Measure runs every query once, in order. The measured span covers the execution and the full drain of the result rows.
func (b *Benchmark) Measure(ctx context.Context, session Session, queries []Query) ([]Measurement, error) {
	measurements := make([]Measurement, 0, len(queries))
	for _, query := range queries {
		if err := b.warmupQuery(ctx, session, query); err != nil {
			return nil, fmt.Errorf("failed to warmup query %v: %w", query.Name, err)
		}
		if err := b.clearCachesIfNeeded(); err != nil {
			return nil, err
		}

		start := time.Now()
		rows, err := session.Query(ctx, query.Query)
		elapsed := time.Since(start)

		if err != nil {
			return nil, fmt.Errorf("failed to run query %v: %w", query.Name, err)
		}
		Logger.Debugf("query %v drained %v rows in %v", query.Name, rows, elapsed)
		measurements = append(measurements, Measurement{
			Name:    query.Name,
			Query:   query.Query,
			Elapsed: elapsed,
			Rows:    rows,
		})
	}
	return measurements, nil
}
