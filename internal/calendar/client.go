package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/tantle27/esap-events-api/internal/event"
	"github.com/tantle27/esap-events-api/internal/instrumentation"
)

// Client wraps the Google Calendar service for a single target calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    *instrumentation.Metrics
}

// NewClient creates a Client around an authenticated Calendar service.
// metrics may be nil when instrumentation is disabled.
func NewClient(svc *calendar.Service, calendarID string, metrics *instrumentation.Metrics) (*Client, error) {
	if svc == nil {
		return nil, fmt.Errorf("calendar service cannot be nil")
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id cannot be empty")
	}
	return &Client{svc: svc, calendarID: calendarID, metrics: metrics}, nil
}

// CalendarID returns the target calendar identifier.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// InsertEvent creates a new event in the target calendar.
func (c *Client) InsertEvent(ctx context.Context, ev *event.NormalizedEvent) (*EventResult, error) {
	ctx, span := instrumentation.StartCalendarSpan(ctx, "insert_event")
	defer span.End()

	start := time.Now()
	created, err := c.svc.Events.Insert(c.calendarID, toAPIEvent(ev)).Context(ctx).Do()
	c.record(ctx, "insert_event", err, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	return toEventResult(created), nil
}

// GetCalendar retrieves the target calendar's metadata.
func (c *Client) GetCalendar(ctx context.Context) (*CalendarInfo, error) {
	ctx, span := instrumentation.StartCalendarSpan(ctx, "get_calendar")
	defer span.End()

	start := time.Now()
	cal, err := c.svc.Calendars.Get(c.calendarID).Context(ctx).Do()
	c.record(ctx, "get_calendar", err, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	return toCalendarInfo(cal), nil
}

// CountUpcomingEvents returns how many of the next events are visible in
// the target calendar, up to max. Used by the diagnostic endpoint to prove
// the credential can actually read the calendar.
func (c *Client) CountUpcomingEvents(ctx context.Context, max int64) (int, error) {
	ctx, span := instrumentation.StartCalendarSpan(ctx, "list_events")
	defer span.End()

	start := time.Now()
	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Context(ctx).
		Do()
	c.record(ctx, "list_events", err, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	return len(events.Items), nil
}

func (c *Client) record(ctx context.Context, op string, err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordCalendarOperation(ctx, op, status, d)
}
