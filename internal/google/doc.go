// Package google builds authenticated Google Calendar API services from the
// configured service-account identity.
package google
