package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
type TimeConfig interface {
	// GetMillisecond reads an integer key as milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads an integer key as seconds.
	// Missing or non-numeric keys yield zero.
	GetSecond(key string) time.Duration

	// GetMinute reads an integer key as minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig defines helpers for retrieving numeric configuration values.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations handle retrieval and type conversion and return zero values for
// missing keys; callers that need a default check IsSet first.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// IsSet reports whether key has a value from any source (file or environment).
	IsSet(key string) bool

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetArray retrieves a list value. Both YAML sequences and comma separated
	// strings (<element1>,<element2>,...) are accepted; blank elements are dropped.
	GetArray(key string) []string
}
