package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/tantle27/esap-events-api/internal/calendar"
	"github.com/tantle27/esap-events-api/internal/event"
	"github.com/tantle27/esap-events-api/internal/instrumentation"
	"github.com/tantle27/esap-events-api/internal/logging"
)

// Route names, also used as metric and span labels.
const (
	eventsRoute = "events"
	diagRoute   = "events/diag"
)

// eventsRouteVersion identifies the current generation of the events
// handler in the GET status payload, so the frontend can tell which
// deployment it is talking to.
const eventsRouteVersion = 3

// diagSampleSize is how many upcoming events the diagnostic probe lists.
const diagSampleSize = 10

type routeStatus struct {
	OK      bool   `json:"ok"`
	Route   string `json:"route"`
	Version int    `json:"version"`
}

type diagResponse struct {
	OK               bool   `json:"ok"`
	CalendarID       string `json:"calendarId,omitempty"`
	CalendarSummary  string `json:"calendarSummary,omitempty"`
	SampleEventCount int    `json:"sampleEventCount,omitempty"`
	Error            string `json:"error,omitempty"`
}

// handleEvents is the gatekeeper for the /events route.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	applyCORS(w, r, s.cfg.AllowedOrigins)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)

	case http.MethodGet:
		// Liveness probe for the frontend; no upstream call.
		writeJSON(w, http.StatusOK, routeStatus{OK: true, Route: eventsRoute, Version: eventsRouteVersion})

	case http.MethodPost:
		s.createEvent(w, r)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := instrumentation.StartHandlerSpan(r.Context(), eventsRoute)
	defer span.End()

	logger := logging.WithRoute(s.logger, eventsRoute)

	var req event.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Required fields are checked before any credential or upstream use.
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	normalized, err := event.Normalize(&req, s.cfg.TimeZone, s.cfg.Policy())
	if err != nil {
		instrumentation.SetSpanError(span, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	api, err := s.sc.Calendar(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.Error("calendar client unavailable", logging.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := api.InsertEvent(ctx, normalized)
	if err != nil {
		mapped := calendar.MapError(err)
		instrumentation.SetSpanError(span, err)
		logger.Error("event creation failed",
			logging.CalendarID(api.CalendarID()),
			logging.Status(logging.StatusError),
			logging.Err(err),
		)
		http.Error(w, mapped.Message, mapped.Status)
		return
	}

	instrumentation.SetSpanSuccess(span)
	logger.Info("event created",
		logging.CalendarID(api.CalendarID()),
		logging.EventID(result.ID),
		logging.Status(logging.StatusSuccess),
	)
	writeJSON(w, http.StatusOK, result)
}

// handleDiag answers the diagnostic health-check route. Unlike the event
// creation path it responds with a JSON envelope on failure.
func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	applyCORS(w, r, s.cfg.AllowedOrigins)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, span := instrumentation.StartHandlerSpan(r.Context(), diagRoute)
	defer span.End()

	logger := logging.WithRoute(s.logger, diagRoute)

	api, err := s.sc.Calendar(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.Error("calendar client unavailable", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, diagResponse{OK: false, Error: err.Error()})
		return
	}

	info, err := api.GetCalendar(ctx)
	if err != nil {
		diagError(w, span, logger, err)
		return
	}

	count, err := api.CountUpcomingEvents(ctx, diagSampleSize)
	if err != nil {
		diagError(w, span, logger, err)
		return
	}

	instrumentation.SetSpanSuccess(span)
	logger.Info("calendar probe succeeded",
		logging.CalendarID(api.CalendarID()),
		logging.Status(logging.StatusSuccess),
	)
	writeJSON(w, http.StatusOK, diagResponse{
		OK:               true,
		CalendarID:       api.CalendarID(),
		CalendarSummary:  info.Summary,
		SampleEventCount: count,
	})
}

func diagError(w http.ResponseWriter, span trace.Span, logger *slog.Logger, err error) {
	mapped := calendar.MapError(err)
	instrumentation.SetSpanError(span, err)
	logger.Error("calendar probe failed", logging.Status(logging.StatusError), logging.Err(err))
	writeJSON(w, mapped.Status, diagResponse{OK: false, Error: mapped.Message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
