// Package server provides the HTTP surface of the events API.
//
// Every route applies the same gatekeeping before any work happens:
// cross-origin headers from a fixed allow-list, method filtering, and
// required-field validation for event creation. Only after all of that
// passes does a handler touch the service-account credential or the
// upstream calendar.
//
// ServerContext manages the upstream Calendar client with lazy
// initialization: a deployment with incomplete credentials still serves
// probes and preflights, and only the routes that need the upstream fail.
package server
