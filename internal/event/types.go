package event

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DateKind identifies which of the accepted input shapes a DateSpec carries.
type DateKind int

const (
	// DateKindUnset means the field was absent from the request.
	DateKindUnset DateKind = iota

	// DateKindInstant is a plain date-time string interpreted as an
	// absolute instant, e.g. "2025-09-21T20:00:00.000Z".
	DateKindInstant

	// DateKindAllDay is a date-only string "YYYY-MM-DD".
	DateKindAllDay

	// DateKindLocal is a structured pair carrying a wall-clock local
	// date-time and an optional IANA time zone identifier.
	DateKindLocal
)

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateSpec is a tagged union over the date/time input shapes the frontend
// has sent over time. Exactly one variant is populated after unmarshalling.
type DateSpec struct {
	Kind DateKind

	// Instant holds the raw string for DateKindInstant.
	Instant string

	// Date holds the "YYYY-MM-DD" string for DateKindAllDay.
	Date string

	// DateTime and TimeZone hold the structured pair for DateKindLocal.
	// DateTime is a local wall-clock string "YYYY-MM-DDTHH:mm[:ss]".
	DateTime string
	TimeZone string
}

// IsZero reports whether the field was absent from the request.
func (d DateSpec) IsZero() bool {
	return d.Kind == DateKindUnset
}

// UnmarshalJSON accepts either a JSON string (instant or date-only) or an
// object {"dateTime": ..., "timeZone": ...}. The structured form may also
// carry a "date" key for all-day events, matching the upstream wire shape.
func (d *DateSpec) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = DateSpec{}
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if dateOnlyPattern.MatchString(s) {
			*d = DateSpec{Kind: DateKindAllDay, Date: s}
			return nil
		}
		*d = DateSpec{Kind: DateKindInstant, Instant: s}
		return nil
	}

	var obj struct {
		Date     string `json:"date"`
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("date field must be a string or an object: %w", err)
	}

	switch {
	case obj.Date != "":
		*d = DateSpec{Kind: DateKindAllDay, Date: obj.Date}
	case obj.DateTime != "":
		*d = DateSpec{Kind: DateKindLocal, DateTime: obj.DateTime, TimeZone: obj.TimeZone}
	default:
		*d = DateSpec{}
	}
	return nil
}

// RecurrenceSpec is the list of candidate recurrence lines from the request.
// Older frontend builds sent a single string, newer ones an array.
type RecurrenceSpec []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (r *RecurrenceSpec) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = nil
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RecurrenceSpec{s}
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("recurrence must be a string or an array of strings: %w", err)
	}
	*r = RecurrenceSpec(lines)
	return nil
}

// CreateEventRequest is the parsed body of a POST /events request.
type CreateEventRequest struct {
	Title          string
	Start          DateSpec
	End            DateSpec
	Location       string
	Description    string
	Recurrence     RecurrenceSpec
	ExceptionDates []string
}

// createEventWire mirrors the JSON body, including the legacy key aliases
// ("desc", "exDates") older frontend builds still send.
type createEventWire struct {
	Title          string         `json:"title"`
	Start          DateSpec       `json:"start"`
	End            DateSpec       `json:"end"`
	Location       string         `json:"location"`
	Description    string         `json:"description"`
	Desc           string         `json:"desc"`
	Recurrence     RecurrenceSpec `json:"recurrence"`
	ExceptionDates []string       `json:"exceptionDates"`
	ExDates        []string       `json:"exDates"`
}

// UnmarshalJSON decodes the request body, preferring current key names and
// falling back to the legacy aliases.
func (c *CreateEventRequest) UnmarshalJSON(data []byte) error {
	var wire createEventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Title = wire.Title
	c.Start = wire.Start
	c.End = wire.End
	c.Location = wire.Location
	c.Description = wire.Description
	if c.Description == "" {
		c.Description = wire.Desc
	}
	c.Recurrence = wire.Recurrence
	c.ExceptionDates = wire.ExceptionDates
	if len(c.ExceptionDates) == 0 {
		c.ExceptionDates = wire.ExDates
	}
	return nil
}

// Validate checks the required fields. It must pass before any credential
// or network use.
func (c *CreateEventRequest) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if c.Start.IsZero() {
		return fmt.Errorf("%w: start", ErrMissingField)
	}
	if c.End.IsZero() {
		return fmt.Errorf("%w: end", ErrMissingField)
	}
	return nil
}

// EventDateTime is the canonical date representation sent upstream. Either
// Date is set (all-day) or DateTime+TimeZone are set (timed).
type EventDateTime struct {
	Date     string
	DateTime string
	TimeZone string
}

// AllDay reports whether this is a date-only value.
func (e EventDateTime) AllDay() bool {
	return e.Date != ""
}

// NormalizedEvent is the fully canonical event payload, ready to be mapped
// onto the upstream insert call.
type NormalizedEvent struct {
	Title       string
	Location    string
	Description string
	Start       EventDateTime
	End         EventDateTime

	// Recurrence holds zero or more RRULE lines followed by at most one
	// EXDATE line. Empty means the event does not recur and the upstream
	// recurrence field is omitted entirely.
	Recurrence []string
}
