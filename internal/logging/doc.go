// Package logging provides structured logging utilities for the events API.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// Create a logger with standard attributes:
//
//	logger := logging.WithRoute(slog.Default(), "events")
//	logger.Info("event created",
//	    logging.EventID(id),
//	    logging.Status(logging.StatusSuccess))
//
// Attribute helpers keep key names identical across handlers so log queries
// and dashboards stay stable as handlers evolve.
package logging
