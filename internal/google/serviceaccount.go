package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarService creates a Calendar service authenticated as the given
// service account. The private key must be PEM, with real newlines (callers
// un-escape environment-sourced keys first).
func NewCalendarService(ctx context.Context, email, privateKey string) (*calendar.Service, error) {
	if email == "" {
		return nil, fmt.Errorf("service account email cannot be empty")
	}
	if privateKey == "" {
		return nil, fmt.Errorf("service account private key cannot be empty")
	}

	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{calendar.CalendarScope},
		TokenURL:   google.JWTTokenURL,
	}

	return newServiceWithConfig(ctx, conf)
}

// NewCalendarServiceFromFile creates a Calendar service from a whole
// service-account JSON credentials file.
func NewCalendarServiceFromFile(ctx context.Context, path string) (*calendar.Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	return newServiceWithConfig(ctx, conf)
}

func newServiceWithConfig(ctx context.Context, conf *jwt.Config) (*calendar.Service, error) {
	client := conf.Client(ctx)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}
