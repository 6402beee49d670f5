package server

import (
	"context"
	"fmt"
	"sync"

	calendarv3 "google.golang.org/api/calendar/v3"

	"github.com/tantle27/esap-events-api/internal/calendar"
	"github.com/tantle27/esap-events-api/internal/config"
	"github.com/tantle27/esap-events-api/internal/event"
	"github.com/tantle27/esap-events-api/internal/google"
	"github.com/tantle27/esap-events-api/internal/instrumentation"
)

// CalendarAPI is the upstream surface the handlers depend on. It is
// satisfied by *calendar.Client and by test fakes.
type CalendarAPI interface {
	InsertEvent(ctx context.Context, ev *event.NormalizedEvent) (*calendar.EventResult, error)
	GetCalendar(ctx context.Context) (*calendar.CalendarInfo, error)
	CountUpcomingEvents(ctx context.Context, max int64) (int, error)
	CalendarID() string
}

// ServerContext holds the shared dependencies of the HTTP handlers.
type ServerContext struct {
	cfg     *config.Config
	metrics *instrumentation.Metrics

	mu       sync.RWMutex
	api      CalendarAPI
	shutdown bool
}

// NewServerContext creates a server context. The upstream client is not
// built until a handler first needs it, so credential problems surface as
// request failures rather than process crashes.
func NewServerContext(cfg *config.Config, metrics *instrumentation.Metrics) *ServerContext {
	return &ServerContext{
		cfg:     cfg,
		metrics: metrics,
	}
}

// Calendar returns the upstream client, creating and caching it on first
// use. Missing credentials are reported via config.ErrMissing.
func (sc *ServerContext) Calendar(ctx context.Context) (CalendarAPI, error) {
	sc.mu.RLock()
	api := sc.api
	sc.mu.RUnlock()
	if api != nil {
		return api, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.api != nil {
		return sc.api, nil
	}

	if err := sc.cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	svc, err := sc.newService(ctx)
	if err != nil {
		return nil, err
	}

	client, err := calendar.NewClient(svc, sc.cfg.CalendarID, sc.metrics)
	if err != nil {
		return nil, err
	}

	sc.api = client
	return sc.api, nil
}

func (sc *ServerContext) newService(ctx context.Context) (*calendarv3.Service, error) {
	if sc.cfg.CredentialsFile != "" {
		svc, err := google.NewCalendarServiceFromFile(ctx, sc.cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to build calendar service: %w", err)
		}
		return svc, nil
	}

	key, err := sc.cfg.ResolvePrivateKey()
	if err != nil {
		return nil, err
	}
	svc, err := google.NewCalendarService(ctx, sc.cfg.ClientEmail, key)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}
	return svc, nil
}

// SetCalendar injects an upstream client, replacing lazy construction.
// Used by tests and by callers that already hold an authenticated client.
func (sc *ServerContext) SetCalendar(api CalendarAPI) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.api = api
}

// Config returns the process-wide configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// IsShutdown returns whether the server context has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown marks the context as shut down.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shutdown = true
}
