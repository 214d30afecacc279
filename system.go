package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

type System struct {
	engine       Engine
	benchmark    Benchmark
	table        TableDefinition
	queries      []Query
	database     string
	dataset      string
	generateRows int
	seed         int64
	verifyLoad   bool
	results      string
	out          io.Writer
}

type SysInfo struct {
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	CPUMHz   float64
	RAM      float64
}

func NewSystem(config Config, out io.Writer) (*System, error) {
	engine, err := NewEngine(config.Engine, config.Threads)
	if err != nil {
		return nil, err
	}
	return &System{
		engine:       engine,
		benchmark:    Benchmark{Warmup: config.Warmup, ClearCaches: config.ClearCaches},
		table:        tableAttributes,
		queries:      queriesAttributes,
		database:     config.Database,
		dataset:      config.Dataset,
		generateRows: config.GenerateRows,
		seed:         config.Seed,
		verifyLoad:   config.VerifyLoad,
		results:      config.Results,
		out:          out,
	}, nil
}

func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	info := SysInfo{Arch: runtime.GOARCH, CPUCount: len(cpuStat)}
	if hostStat != nil {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
	}
	if vmStat != nil {
		info.RAM = float64(vmStat.Total) / 1024 / 1024 / 1024
	}
	if len(cpuStat) > 0 {
		totalFreq := 0.0
		for _, cpu := range cpuStat {
			totalFreq += cpu.Mhz
		}
		info.CPUMHz = totalFreq / float64(len(cpuStat))
	}
	return info
}

// Run executes the whole pipeline once. Nothing reaches the output before every query has been measured.
func (s *System) Run(ctx context.Context) error {
	Logger.Infof("start benchmark with engine %v", s.engine.Name())

	info := HostStat()
	Logger.Infof("host stat: %+v", info)

	if s.generateRows > 0 {
		if err := EnsureDataset(s.dataset, s.generateRows, s.seed); err != nil {
			return err
		}
	}

	session, err := s.engine.Open(ctx, s.database)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			Logger.Errorf("failed to close database %v: %v", s.database, err)
		}
	}()

	if err := session.CreateTable(ctx, s.table); err != nil {
		return err
	}

	Logger.Infof("started loading dataset %v into %v", s.dataset, s.table.Name)
	rows, err := session.CopyFrom(ctx, s.table.Name, s.dataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset %v: %w", s.dataset, err)
	}
	Logger.Infof("finished loading dataset %v: %v rows", s.dataset, rows)

	// the check touches the table, so by default the first timed query is the first read
	if s.verifyLoad {
		if err := s.verify(ctx, session, rows); err != nil {
			return err
		}
	}

	measurements, err := s.benchmark.Measure(ctx, session, s.queries)
	if err != nil {
		return err
	}
	if err := WriteReport(s.out, measurements); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if s.results == "" {
		return nil
	}
	return s.store(ctx, info, rows, measurements)
}

func (s *System) verify(ctx context.Context, session Session, rows int64) error {
	total, err := session.Count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %v", quoteIdent(s.table.Name)))
	if err != nil {
		return fmt.Errorf("failed to count rows of %v: %w", s.table.Name, err)
	}
	if total != rows {
		return fmt.Errorf("table %v holds %v rows, but %v were loaded", s.table.Name, total, rows)
	}
	return nil
}

func (s *System) store(ctx context.Context, info SysInfo, rows int64, measurements []Measurement) error {
	storage, err := OpenStorage(ctx, s.results)
	if err != nil {
		return err
	}
	defer storage.Close()

	run := uuid.NewString()
	err = storage.InitResultsDb(ctx, run, map[string]any{
		"engine":   s.engine.Name(),
		"database": s.database,
		"dataset":  s.dataset,
		"rows":     rows,
		"warmup":   s.benchmark.Warmup,
		"verified": s.verifyLoad,
		"arch":     info.Arch,
		"hostname": info.Hostname,
		"platform": info.Platform,
		"ram":      info.RAM,
		"cpu":      info.CPUCount,
		"freq_mhz": info.CPUMHz,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize results db: %w", err)
	}
	err = storage.UpdateBenchmarkDb(ctx, run, s.engine.Name(), s.table.Name, measurements)
	if err != nil {
		return fmt.Errorf("failed to update benchmark results for run %v: %w", run, err)
	}
	written, err := storage.WrittenQueries(ctx, run, s.table.Name)
	if err != nil {
		return fmt.Errorf("failed to fetch written queries for run %v: %w", run, err)
	}
	Logger.Infof("stored %v measurements for run %v", len(written), run)
	return nil
}
