// Package calendar wraps the Google Calendar API for the events proxy.
//
// The Client performs exactly one upstream call per operation and never
// retries; a failed call is mapped to a typed UpstreamError carrying the
// HTTP status and the most specific message the upstream error envelope
// provides, and surfaced directly to the HTTP caller.
package calendar
