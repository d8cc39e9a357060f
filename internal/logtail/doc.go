// Package logtail reads the end of despensa's log file for the in-app log view.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by N
// however large the file grows. Parse decodes the logfmt records written by
// slog's text handler into level, message and attributes; anything else is
// passed through as a raw line.
package logtail
