// Package event defines the inbound request types for event creation and
// the normalizer that converts them into the shape the Google Calendar API
// expects.
//
// The frontend has shipped several generations of payloads for the same
// concepts, so the package accepts all of them:
//
//   - dates as an instant string, a date-only string, or a structured
//     {dateTime, timeZone} pair
//   - recurrence as a single RRULE string or an array of them
//   - exception dates as a list of "YYYY-MM-DD" strings
//
// Normalization always produces exactly one canonical representation:
// structured local date-times are passed through verbatim (wall-clock
// semantics survive DST transitions), instants are re-emitted as RFC 3339
// UTC paired with the configured default zone, and recurrence input is
// folded into upper-cased RRULE lines plus at most one EXDATE line.
package event
