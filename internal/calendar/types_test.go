package calendar

import (
	"testing"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/tantle27/esap-events-api/internal/event"
)

func TestToAPIEventTimed(t *testing.T) {
	ev := &event.NormalizedEvent{
		Title:       "Youth Group",
		Location:    "Fellowship Hall",
		Description: "Weekly meeting",
		Start:       event.EventDateTime{DateTime: "2025-09-21T16:00:00", TimeZone: "America/Indiana/Indianapolis"},
		End:         event.EventDateTime{DateTime: "2025-09-21T18:00:00", TimeZone: "America/Indiana/Indianapolis"},
		Recurrence: []string{
			"RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=SU",
			"EXDATE;TZID=America/Indiana/Indianapolis:20251005T160000",
		},
	}

	got := toAPIEvent(ev)
	if got.Summary != "Youth Group" || got.Location != "Fellowship Hall" {
		t.Errorf("summary/location: %+v", got)
	}
	if got.Start.DateTime != "2025-09-21T16:00:00" || got.Start.TimeZone != "America/Indiana/Indianapolis" {
		t.Errorf("start: %+v", got.Start)
	}
	if got.Start.Date != "" {
		t.Errorf("timed event must not carry a Date: %+v", got.Start)
	}
	if len(got.Recurrence) != 2 {
		t.Errorf("recurrence: %v", got.Recurrence)
	}
}

func TestToAPIEventAllDay(t *testing.T) {
	ev := &event.NormalizedEvent{
		Title: "Retreat",
		Start: event.EventDateTime{Date: "2025-09-21"},
		End:   event.EventDateTime{Date: "2025-09-22"},
	}

	got := toAPIEvent(ev)
	if got.Start.Date != "2025-09-21" || got.Start.DateTime != "" {
		t.Errorf("start: %+v", got.Start)
	}
	if got.Recurrence != nil {
		t.Errorf("empty recurrence must be omitted, got %v", got.Recurrence)
	}
}

func TestToEventResult(t *testing.T) {
	got := toEventResult(&calendar.Event{Id: "evt1", HtmlLink: "https://calendar.google.com/event?eid=evt1"})
	if got.ID != "evt1" || got.HTMLLink == "" {
		t.Errorf("got %+v", got)
	}

	if nilResult := toEventResult(nil); nilResult.ID != "" {
		t.Errorf("nil event: %+v", nilResult)
	}
}

func TestToCalendarInfo(t *testing.T) {
	got := toCalendarInfo(&calendar.Calendar{Id: "cal", Summary: "ESAP Events", TimeZone: "America/Indiana/Indianapolis"})
	if got.ID != "cal" || got.Summary != "ESAP Events" {
		t.Errorf("got %+v", got)
	}

	if nilInfo := toCalendarInfo(nil); nilInfo.ID != "" {
		t.Errorf("nil calendar: %+v", nilInfo)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(nil, "cal", nil); err == nil {
		t.Error("expected error for nil service")
	}
	if _, err := NewClient(&calendar.Service{}, "", nil); err == nil {
		t.Error("expected error for empty calendar id")
	}
	c, err := NewClient(&calendar.Service{}, "cal", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.CalendarID() != "cal" {
		t.Errorf("CalendarID = %q", c.CalendarID())
	}
}
