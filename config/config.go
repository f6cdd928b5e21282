// Package config reads the small amount of process-level configuration a
// deployment of this engine needs — where data files live, what page size
// to format new files with. The core packages (storage, catalog, execution)
// never read the environment themselves; they take constructor arguments.
// This package exists only for the one collaborator (a future cmd/ binary,
// or a test harness standing in for one) that needs defaults sourced from
// the environment rather than hardcoded, the way the teacher's cmd/seed and
// cmd/inspect_idx each hardcode a baseDir constant.
package config

import (
	"os"
	"strconv"
)

const (
	// DefaultPageSize is used whenever PageSize is unset or invalid.
	DefaultPageSize = 4096

	// DefaultDataDir is used whenever DataDir is unset.
	DefaultDataDir = "./data"

	// DefaultBufferPoolCapacity is used whenever BufferPoolCapacity is unset
	// or invalid.
	DefaultBufferPoolCapacity = 64
)

// Config bundles the environment-sourced settings a process wiring this
// engine together needs before it can construct a Catalog and a
// BufferPool.
type Config struct {
	DataDir            string
	PageSize           int
	BufferPoolCapacity int
}

// FromEnv reads DAEMONDB_DATA_DIR, DAEMONDB_PAGE_SIZE, and
// DAEMONDB_BUFFER_POOL_CAPACITY, substituting package defaults for any
// variable that is unset or fails to parse.
func FromEnv() Config {
	cfg := Config{
		DataDir:            DefaultDataDir,
		PageSize:           DefaultPageSize,
		BufferPoolCapacity: DefaultBufferPoolCapacity,
	}

	if v := os.Getenv("DAEMONDB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DAEMONDB_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("DAEMONDB_BUFFER_POOL_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BufferPoolCapacity = n
		}
	}

	return cfg
}
