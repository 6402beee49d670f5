// Package config holds the process-wide configuration for the events API.
//
// Configuration is loaded once at process start from environment variables
// and optionally overridden by serve command flags. All values are read-only
// afterwards, so concurrent request handlers can share a single Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tantle27/esap-events-api/internal/event"
)

// ErrMissing marks a required setting that is absent. Handlers surface it
// before any credential or network use.
var ErrMissing = errors.New("missing required configuration")

// Default values for optional settings.
const (
	DefaultHTTPAddr    = ":8080"
	DefaultMetricsAddr = ":9090"
)

// DefaultAllowedOrigins is the fixed cross-origin allow-list: the deployed
// frontend and its www alias. Overridable via serve flags for staging.
var DefaultAllowedOrigins = []string{
	"https://esapevents.org",
	"https://www.esapevents.org",
}

// Config is the process-wide configuration.
type Config struct {
	// ClientEmail is the service-account identity used for upstream calls.
	ClientEmail string

	// PrivateKey is the service-account private key in PEM form. When it
	// arrives through the environment the newlines are escaped as the two
	// characters `\n`; ResolvePrivateKey un-escapes them.
	PrivateKey string

	// PrivateKeyFile optionally names a file holding the private key,
	// taking precedence over PrivateKey when set.
	PrivateKeyFile string

	// CredentialsFile optionally names a whole service-account JSON file,
	// taking precedence over ClientEmail/PrivateKey when set.
	CredentialsFile string

	// CalendarID is the target calendar for all event operations.
	CalendarID string

	// TimeZone is the IANA zone paired with instant date inputs. Empty
	// falls back to event.DefaultTimeZone.
	TimeZone string

	// RecurrencePolicy is "lenient" (default) or "strict".
	RecurrencePolicy string

	// AllowedOrigins is the cross-origin allow-list.
	AllowedOrigins []string

	// HTTPAddr is the bind address for the API server.
	HTTPAddr string

	// MetricsEnabled controls the dedicated metrics server.
	MetricsEnabled bool

	// MetricsAddr is the bind address for the metrics server.
	MetricsAddr string
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything optional.
func FromEnv() *Config {
	cfg := &Config{
		ClientEmail:      os.Getenv("ESAP_CLIENT_EMAIL"),
		PrivateKey:       os.Getenv("ESAP_PRIVATE_KEY"),
		PrivateKeyFile:   os.Getenv("ESAP_PRIVATE_KEY_FILE"),
		CredentialsFile:  os.Getenv("ESAP_CREDENTIALS_FILE"),
		CalendarID:       os.Getenv("ESAP_CALENDAR_ID"),
		TimeZone:         os.Getenv("ESAP_TIMEZONE"),
		RecurrencePolicy: os.Getenv("ESAP_RECURRENCE_POLICY"),
		HTTPAddr:         os.Getenv("ESAP_HTTP_ADDR"),
		MetricsAddr:      os.Getenv("ESAP_METRICS_ADDR"),
		MetricsEnabled:   true,
	}

	if origins := os.Getenv("ESAP_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if v := os.Getenv("ESAP_METRICS_ENABLED"); v != "" {
		cfg.MetricsEnabled = v != "false" && v != "0"
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.TimeZone == "" {
		c.TimeZone = event.DefaultTimeZone
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
}

// Validate checks settings that can be judged without touching the
// credential material. It does not require the credential to be present:
// that check happens lazily per request via ValidateCredentials, so probe
// endpoints keep working on a misconfigured deployment.
func (c *Config) Validate() error {
	if _, err := event.ParsePolicy(c.RecurrencePolicy); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials checks that everything needed for an upstream call is
// present.
func (c *Config) ValidateCredentials() error {
	if c.CalendarID == "" {
		return fmt.Errorf("%w: calendar id", ErrMissing)
	}
	if c.CredentialsFile != "" {
		return nil
	}
	if c.ClientEmail == "" {
		return fmt.Errorf("%w: service account client email", ErrMissing)
	}
	if c.PrivateKey == "" && c.PrivateKeyFile == "" {
		return fmt.Errorf("%w: service account private key", ErrMissing)
	}
	return nil
}

// ResolvePrivateKey returns the PEM private key, reading the key file when
// configured and un-escaping `\n` sequences from environment-sourced keys.
func (c *Config) ResolvePrivateKey() (string, error) {
	if c.PrivateKeyFile != "" {
		data, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read private key file: %w", err)
		}
		return string(data), nil
	}
	if c.PrivateKey == "" {
		return "", fmt.Errorf("%w: service account private key", ErrMissing)
	}
	return strings.ReplaceAll(c.PrivateKey, `\n`, "\n"), nil
}

// Policy returns the parsed recurrence policy. Validate must have passed.
func (c *Config) Policy() event.Policy {
	p, _ := event.ParsePolicy(c.RecurrencePolicy)
	return p
}
