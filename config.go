package main

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Engine       string
	Database     string
	Dataset      string
	GenerateRows int
	Seed         int64
	Warmup       int
	ClearCaches  bool
	VerifyLoad   bool
	Threads      int
	Results      string
	LogLevel     string
}

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func BoolEnv(key string, def bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func LoadConfig(dotenv string) (Config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	config := Config{
		Engine:       StringEnv("BENCHMARK_ENGINE", "duckdb"),
		Database:     StringEnv("BENCHMARK_DATABASE", "benchmark.hyper"),
		Dataset:      StringEnv("BENCHMARK_DATASET", "benchmark/operators/data/Attributes_i32.csv"),
		GenerateRows: IntEnv("BENCHMARK_GENERATE_ROWS", 0),
		Seed:         int64(IntEnv("BENCHMARK_SEED", 1)),
		Warmup:       IntEnv("BENCHMARK_WARMUP", 0),
		ClearCaches:  BoolEnv("BENCHMARK_CLEAR_CACHES", false),
		VerifyLoad:   BoolEnv("BENCHMARK_VERIFY_LOAD", false),
		Threads:      IntEnv("BENCHMARK_THREADS", 0),
		Results:      StringEnv("BENCHMARK_RESULTS", ""),
		LogLevel:     StringEnv("LOG_LEVEL", "INFO"),
	}
	if level, err := zapcore.ParseLevel(config.LogLevel); err == nil {
		AtomicLevel.SetLevel(level)
	}
	return config, nil
}
