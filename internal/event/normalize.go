package event

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultTimeZone is the zone paired with instant inputs when the process
// configuration does not name one.
const DefaultTimeZone = "America/Indiana/Indianapolis"

// Validation-class errors. Handlers map these to HTTP 400.
var (
	// ErrMissingField marks a required request field that was absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidTime marks a date string that could not be parsed.
	ErrInvalidTime = errors.New("invalid time value")

	// ErrInvalidRecurrence marks a recurrence line rejected under the
	// strict policy.
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
)

// Policy controls how invalid recurrence lines are treated.
type Policy int

const (
	// PolicyLenient silently drops lines that do not normalize to a valid
	// RRULE. This matches the historical behavior: recurrence is
	// best-effort and a bad rule still produces a non-recurring event.
	PolicyLenient Policy = iota

	// PolicyStrict rejects the request when any recurrence line fails to
	// normalize or parse as an RFC 5545 rule.
	PolicyStrict
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return PolicyLenient, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyLenient, fmt.Errorf("unknown recurrence policy %q (want lenient or strict)", s)
	}
}

// instantLayouts are the accepted formats for plain-string date inputs,
// tried in order.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// NormalizeDate resolves one DateSpec into the canonical EventDateTime.
//
// Instant strings are parsed, re-emitted as RFC 3339 UTC, and paired with
// defaultZone. Structured local date-times are passed through verbatim:
// re-interpreting them as instants would shift the wall-clock time across
// DST transitions stored between creation and occurrence.
func NormalizeDate(spec DateSpec, defaultZone string) (EventDateTime, error) {
	if defaultZone == "" {
		defaultZone = DefaultTimeZone
	}

	switch spec.Kind {
	case DateKindAllDay:
		return EventDateTime{Date: spec.Date}, nil

	case DateKindInstant:
		t, err := parseInstant(spec.Instant)
		if err != nil {
			return EventDateTime{}, err
		}
		return EventDateTime{
			DateTime: t.UTC().Format(time.RFC3339),
			TimeZone: defaultZone,
		}, nil

	case DateKindLocal:
		zone := spec.TimeZone
		if zone == "" {
			zone = defaultZone
		}
		return EventDateTime{
			DateTime: spec.DateTime,
			TimeZone: zone,
		}, nil

	default:
		return EventDateTime{}, fmt.Errorf("%w: date", ErrMissingField)
	}
}

func parseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

const rrulePrefix = "RRULE"

// NormalizeRecurrence folds the candidate lines into canonical RRULE lines.
// Each line must carry the RRULE keyword (case-insensitive); the rule body
// is stripped of whitespace, upper-cased, and must begin with FREQ=. Under
// PolicyStrict the body must additionally parse as an RFC 5545 rule.
func NormalizeRecurrence(lines RecurrenceSpec, policy Policy) ([]string, error) {
	var rules []string
	for _, line := range lines {
		rule, ok := normalizeRule(line)
		if !ok {
			if policy == PolicyStrict {
				return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrence, line)
			}
			continue
		}
		if policy == PolicyStrict {
			body := strings.TrimPrefix(rule, rrulePrefix+":")
			if _, err := rrule.StrToRRule(body); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRecurrence, line, err)
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// normalizeRule converts one candidate line into "RRULE:FREQ=...". It
// reports false for lines that do not look like a rule at all.
func normalizeRule(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(rrulePrefix) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(rrulePrefix)], rrulePrefix) {
		return "", false
	}

	body := trimmed[len(rrulePrefix):]
	body = strings.Join(strings.Fields(body), "")
	body = strings.TrimPrefix(body, ":")
	body = strings.ToUpper(body)
	if !strings.HasPrefix(body, "FREQ=") {
		return "", false
	}
	return rrulePrefix + ":" + body, true
}

var exdateTimePattern = regexp.MustCompile(`T(\d{2}):(\d{2})(?::(\d{2}))?`)

// BuildExceptionDates produces the single EXDATE line for the given
// calendar dates, or ok=false when no valid date remains.
//
// Timed events get a TZID-anchored line stamping every excluded date with
// the start's local time-of-day, so the exclusions line up with the
// occurrences the RRULE generates. All-day events get a floating
// VALUE=DATE line instead.
func BuildExceptionDates(dates []string, start EventDateTime) (string, bool) {
	var kept []string
	for _, d := range dates {
		if dateOnlyPattern.MatchString(strings.TrimSpace(d)) {
			kept = append(kept, strings.TrimSpace(d))
		}
	}
	if len(kept) == 0 {
		return "", false
	}

	if start.AllDay() {
		stamps := make([]string, len(kept))
		for i, d := range kept {
			stamps[i] = compactDate(d)
		}
		return "EXDATE;VALUE=DATE:" + strings.Join(stamps, ","), true
	}

	timeOfDay := startTimeOfDay(start.DateTime)
	stamps := make([]string, len(kept))
	for i, d := range kept {
		stamps[i] = compactDate(d) + "T" + timeOfDay
	}
	return "EXDATE;TZID=" + start.TimeZone + ":" + strings.Join(stamps, ","), true
}

// startTimeOfDay extracts the wall-clock HHMMSS component from the start's
// date-time string, defaulting missing seconds to zero and missing time to
// midnight.
func startTimeOfDay(dateTime string) string {
	m := exdateTimePattern.FindStringSubmatch(dateTime)
	if m == nil {
		return "000000"
	}
	sec := m[3]
	if sec == "" {
		sec = "00"
	}
	return m[1] + m[2] + sec
}

func compactDate(d string) string {
	return strings.ReplaceAll(d, "-", "")
}

// Normalize converts the inbound request into the canonical upstream
// payload. Required-field validation is assumed to have already passed;
// Normalize re-checks it to stay safe when called directly.
func Normalize(req *CreateEventRequest, defaultZone string, policy Policy) (*NormalizedEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, err := NormalizeDate(req.Start, defaultZone)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := NormalizeDate(req.End, defaultZone)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	recurrence, err := NormalizeRecurrence(req.Recurrence, policy)
	if err != nil {
		return nil, err
	}
	if exdate, ok := BuildExceptionDates(req.ExceptionDates, start); ok {
		recurrence = append(recurrence, exdate)
	}

	return &NormalizedEvent{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		Start:       start,
		End:         end,
		Recurrence:  recurrence,
	}, nil
}
