package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jrsteele09/go-analytics-bff/internal/errors"
)

// Settings is the process-wide configuration. It is loaded once at startup and
// handed to every component; nothing reads the environment after Load returns.
type Settings struct {
	BackendHost string `env:"BACKEND_HOST" envDefault:"0.0.0.0"`
	BackendPort int    `env:"BACKEND_PORT" envDefault:"8000"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	AppName     string `env:"APP_NAME" envDefault:"Analytics BFF"`
	LogLevel    string `env:"LOG_LEVEL"`
	APIPrefix   string `env:"API_PREFIX" envDefault:"/api"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	FrontendURL string   `env:"FRONTEND_URL"`

	AuthClientID     string `env:"AUTH_CLIENT_ID"`
	AuthClientSecret string `env:"AUTH_CLIENT_SECRET"`
	AuthRedirectURI  string `env:"AUTH_REDIRECT_URI"`
	GISAuthEndpoint  string `env:"GIS_AUTH_ENDPOINT"`
	OAuthState       bool   `env:"OAUTH_STATE_ENABLED" envDefault:"true"`

	GraphQLURL       string `env:"AIESEC_GRAPHQL_URL"`
	AnalyticsBaseURL string `env:"ANALYTICS_BASE_URL"`

	// UpstreamTimeout bounds the token endpoint and directory calls.
	// The analytics call carries its own timeouts.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`
}

// Load parses settings from the process environment and validates them.
func Load() (Settings, error) {
	return load(env.Options{})
}

// LoadFrom parses settings from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Settings, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	s.CORSOrigins = trimCSV(s.CORSOrigins)
	s.FrontendURL = strings.TrimRight(s.FrontendURL, "/")
	s.GISAuthEndpoint = strings.TrimRight(s.GISAuthEndpoint, "/")
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every missing or malformed field in one error.
func (s Settings) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"AUTH_CLIENT_ID", s.AuthClientID},
		{"AUTH_CLIENT_SECRET", s.AuthClientSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	urls := []struct {
		name  string
		value string
	}{
		{"FRONTEND_URL", s.FrontendURL},
		{"AUTH_REDIRECT_URI", s.AuthRedirectURI},
		{"GIS_AUTH_ENDPOINT", s.GISAuthEndpoint},
		{"AIESEC_GRAPHQL_URL", s.GraphQLURL},
		{"ANALYTICS_BASE_URL", s.AnalyticsBaseURL},
	}
	for _, u := range urls {
		if err := validateAbsoluteURL(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}

	if s.BackendPort < 1 || s.BackendPort > 65535 {
		errs = append(errs, fmt.Errorf("BACKEND_PORT %d out of range", s.BackendPort))
	}
	if s.APIPrefix != "" && !strings.HasPrefix(s.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("API_PREFIX %q must start with /", s.APIPrefix))
	}
	if s.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return errors.Wrapf(errors.Join(errs...), "invalid settings")
	}
	return nil
}

// Level returns the log level: LOG_LEVEL when set, otherwise debug or info following Debug.
// It is derived on each call so a Debug override from the command line is honoured.
func (s Settings) Level() string {
	switch {
	case s.LogLevel != "":
		return s.LogLevel
	case s.Debug:
		return "debug"
	default:
		return "info"
	}
}

// Addr returns the host:port the server binds to.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.BackendHost, strconv.Itoa(s.BackendPort))
}

// Prefix returns the API path prefix without a trailing slash.
func (s Settings) Prefix() string {
	return strings.TrimRight(s.APIPrefix, "/")
}

// AuthorizeURL is the authorization server's authorization endpoint.
func (s Settings) AuthorizeURL() string {
	return s.GISAuthEndpoint + "/oauth/authorize"
}

// TokenURL is the authorization server's token endpoint.
func (s Settings) TokenURL() string {
	return s.GISAuthEndpoint + "/oauth/token"
}

func validateAbsoluteURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	return nil
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
