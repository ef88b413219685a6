// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package values

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/go-core-stack/capacity/timeval"
)

const (
	// Environment variable name providing the number of workers used
	// while sampling capacity curves
	SampleWorkersEnv = "CAPACITY_SAMPLE_WORKERS"

	// Environment variable name providing the unit in which fit
	// reports express times
	OutputUnitEnv = "CAPACITY_OUTPUT_UNIT"

	// Default value for the report output unit
	DefaultOutputUnit = timeval.Second

	// Environment variable name providing the log level
	LogLevelEnv = "CAPACITY_LOG_LEVEL"

	// Default value for the log level
	DefaultLogLevel = hclog.Warn
)

// Get configured number of sampling workers, defaults to the number
// of CPUs available
func GetSampleWorkers() int {
	val, ok := os.LookupEnv(SampleWorkersEnv)
	if !ok {
		return runtime.NumCPU()
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		// malformed values fall back to the default
		return runtime.NumCPU()
	}
	return n
}

// Get configured output unit for reports
func GetOutputUnit() timeval.Unit {
	val, ok := os.LookupEnv(OutputUnitEnv)
	if !ok {
		return DefaultOutputUnit
	}
	unit, err := timeval.ParseUnit(strings.TrimSpace(val))
	if err != nil {
		return DefaultOutputUnit
	}
	return unit
}

// Get configured log level
func GetLogLevel() hclog.Level {
	val, ok := os.LookupEnv(LogLevelEnv)
	if !ok {
		return DefaultLogLevel
	}
	level := hclog.LevelFromString(val)
	if level == hclog.NoLevel {
		return DefaultLogLevel
	}
	return level
}

// NewLogger builds the root logger at the configured level, named
// sub loggers are derived from it by each package
func NewLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: GetLogLevel(),
	})
}
