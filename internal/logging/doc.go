// Package logging builds the structured slog loggers shared by the roadmap
// CLI and the progress server, and holds the attribute keys components use
// so log lines can be filtered by roadmap, candidate and event type.
package logging
