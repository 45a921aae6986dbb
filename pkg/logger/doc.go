// Package logger provides the structured logging interface used across forumdump.
//
// It wraps zerolog behind a small Logger interface with field support, a
// colored console writer for interactive runs, JSON output for machine
// consumption and optional file output.
//
// The crawl trace is indented by traversal depth:
//
//	logger.LogFetched(log, 0, "categories.json")
//	logger.LogSkipped(log, 1, "c/general/1.json")
//	logger.LogDiff(log, 1, false, 2, 3)
//
// Tests use NewTestLogger to capture messages and NewNopLogger to discard them.
package logger
