// Package logging constructs the application's slog loggers and provides
// typed attribute helpers shared by all components.
package logging
