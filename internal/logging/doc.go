// Package logging configures the process logger.
//
// Logs are slog text lines mirrored to stderr and a log file. Instead of
// rotating, the log file is trimmed from the top on startup so it stays
// under the configured size while keeping the newest entries.
package logging
