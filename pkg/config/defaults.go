package config

import "time"

// Collision search defaults.
const (
	DefaultMaxAttempts   uint64 = 1_000_000
	DefaultTableSize            = 1_000_003
	DefaultMemoryBudget         = "64MB"
	DefaultSeed          uint64 = 0
	DefaultProgressEvery uint64 = 100
	DefaultDelay                = time.Duration(0)
)

// Reverse lookup defaults.
const (
	DefaultMaxLength   = 5
	DefaultLengthLimit = 8
)

// Result store defaults.
const (
	DefaultCapacity    = 100
	DefaultResultsPath = "hash_results.txt"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultMetricsAddr = ""
	DefaultSampleRatio = 0.0
)
