package calendar

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/tantle27/esap-events-api/internal/event"
)

// EventResult is what callers of InsertEvent get back: the created
// resource's identifier and a browsable link, verbatim from the upstream
// response.
type EventResult struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// CalendarInfo is the subset of calendar metadata the diagnostic endpoint
// reports.
type CalendarInfo struct {
	ID       string
	Summary  string
	TimeZone string
}

// toAPIEvent maps a normalized event onto the upstream wire struct.
func toAPIEvent(ev *event.NormalizedEvent) *calendar.Event {
	out := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       toAPIDateTime(ev.Start),
		End:         toAPIDateTime(ev.End),
	}
	if len(ev.Recurrence) > 0 {
		out.Recurrence = ev.Recurrence
	}
	return out
}

func toAPIDateTime(dt event.EventDateTime) *calendar.EventDateTime {
	if dt.AllDay() {
		return &calendar.EventDateTime{Date: dt.Date}
	}
	return &calendar.EventDateTime{
		DateTime: dt.DateTime,
		TimeZone: dt.TimeZone,
	}
}

func toEventResult(created *calendar.Event) *EventResult {
	if created == nil {
		return &EventResult{}
	}
	return &EventResult{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
	}
}

func toCalendarInfo(cal *calendar.Calendar) *CalendarInfo {
	if cal == nil {
		return &CalendarInfo{}
	}
	return &CalendarInfo{
		ID:       cal.Id,
		Summary:  cal.Summary,
		TimeZone: cal.TimeZone,
	}
}
