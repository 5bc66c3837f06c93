package main

import (
	"github.com/charmbracelet/log"

	"github.com/scottbass3/reglite/internal/api"
)

// makeRequestLogger feeds the TUI's request pane and mirrors failed calls to
// the log file. Entries are dropped rather than blocking a request when the
// pane falls behind.
func makeRequestLogger(ch chan<- api.RequestLog, logger *log.Logger) api.RequestLogger {
	return func(entry api.RequestLog) {
		if entry.Failed() && logger != nil {
			logger.Warn("backend request failed",
				"id", entry.ID,
				"method", entry.Method,
				"url", entry.URL,
				"status", entry.Status,
				"elapsed", entry.Elapsed,
				"err", entry.Err,
			)
		}
		select {
		case ch <- entry:
		default:
		}
	}
}
