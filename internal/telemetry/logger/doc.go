// Package logger provides structured logging for tachikv.
//
// It wraps log/slog with JSON output by default and a process-global
// level that can be adjusted at runtime, which is what the config
// watcher uses to change verbosity without a restart.
package logger
