// Package txkv is a single-node in-memory key/value store that accepts exactly
// one read-write transaction at a time.
//
// The package exposes the global logger and the list of Prometheus collectors
// that the other packages append to.
package txkv

import (
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// EnvLogLevel is the name of the environment variable to change the logging
// level.
const EnvLogLevel = "LLVL"

const defaultLevel = zerolog.InfoLevel

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance writing to the standard
// error. By default, it only prints info level logs, but it can be changed through the LLVL environment variable.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(ParseLevel(os.Getenv(EnvLogLevel)))

// PromCollectors exposes the Prometheus collectors created by the packages so
// that a binary can register them.
var PromCollectors []prometheus.Collector

// ParseLevel returns the zerolog level that corresponds to the string. An
// unknown or empty value falls back to the info level.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	case "disabled", "none":
		return zerolog.Disabled
	default:
		return defaultLevel
	}
}
