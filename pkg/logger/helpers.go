package logger

import (
	"fmt"
	"strings"

	"forumdump/pkg/errors"
)

// Indent prefixes msg with depth spaces, mirroring traversal depth in the trace.
func Indent(depth int, msg string) string {
	if depth <= 0 {
		return msg
	}
	return strings.Repeat(" ", depth) + msg
}

// LogSkipped records a resource served from the on-disk cache.
func LogSkipped(l Logger, depth int, resource string) {
	l.WithField("resource", resource).Info(Indent(depth, "[SKIPPED] "+resource))
}

// LogFetched records a resource fetched and persisted.
func LogFetched(l Logger, depth int, resource string) {
	l.WithField("resource", resource).Info(Indent(depth, "[FETCHED] "+resource))
}

// LogFetchError records a resource that could not be obtained.
func LogFetchError(l Logger, depth int, resource string, err error) {
	l.WithFields(map[string]interface{}{
		"resource":   resource,
		"error_type": errors.TypeOf(err),
	}).WithError(err).Error(Indent(depth, "[ERROR FETCHING] "+resource))
}

// LogDiff records the topic count comparison between a category and its subcategories.
func LogDiff(l Logger, depth int, equal bool, subcategoryTopics, categoryTopics int) {
	l.WithFields(map[string]interface{}{
		"equal":              equal,
		"subcategory_topics": subcategoryTopics,
		"category_topics":    categoryTopics,
	}).Info(Indent(depth, fmt.Sprintf("[DIFF] %s, %d, %d", boolString(equal), subcategoryTopics, categoryTopics)))
}

// LogLoners records topics listed by a category but by none of its subcategories.
// It follows the DIFF line whenever loners exist, including when both listings have the same size.
func LogLoners(l Logger, depth int, ids []int64) {
	l.WithField("ids", ids).Info(Indent(depth, fmt.Sprintf("[LONERS] %d", len(ids))))
}

// LogSaved records an image fetched from url and written to path.
func LogSaved(l Logger, depth int, url, path string) {
	l.WithFields(map[string]interface{}{
		"url":  url,
		"path": path,
	}).Info(Indent(depth, "[SAVED] "+url+" "+path))
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// nopLogger discards everything
type nopLogger struct{}

// NewNopLogger returns a Logger that discards all output
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string)                                   {}
func (nopLogger) Info(string)                                    {}
func (nopLogger) Warn(string)                                    {}
func (nopLogger) Error(string)                                   {}
func (n nopLogger) WithField(string, interface{}) Logger         { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger     { return n }
func (n nopLogger) WithError(error) Logger                       { return n }
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) InfoWithFields(string, map[string]interface{})  {}
func (nopLogger) WarnWithFields(string, map[string]interface{})  {}
func (nopLogger) ErrorWithFields(string, map[string]interface{}) {}
