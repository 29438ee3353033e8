package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"github.com/rs/zerolog"
)

const serviceName = "analytics"

// Timeouts for the analytics call. Aggregations over long ranges are slow, so these
// are far more generous than the other upstream calls.
type Timeouts struct {
	Connect     time.Duration
	Read        time.Duration
	Write       time.Duration
	PoolAcquire time.Duration
}

var DefaultTimeouts = Timeouts{
	Connect:     30 * time.Second,
	Read:        60 * time.Second,
	Write:       10 * time.Second,
	PoolAcquire: 30 * time.Second,
}

// Total is the overall deadline for one call. net/http has no separate write or
// pool-acquire timeout, so those phases share the client-wide budget.
func (t Timeouts) Total() time.Duration {
	return t.Connect + t.Write + t.Read
}

// NewTransport returns a transport honouring the connect and read timeouts.
func NewTransport(t Timeouts) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{Timeout: t.Connect, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = t.Connect
	tr.ResponseHeaderTimeout = t.Read
	tr.IdleConnTimeout = 90 * time.Second
	return tr
}

// Client forwards analytics queries to the analytics service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the analytics endpoint. transport may be nil.
func NewClient(baseURL string, transport http.RoundTripper, t Timeouts) *Client {
	if transport == nil {
		transport = NewTransport(t)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   t.Total(),
		},
	}
}

// Fetch runs the query with the caller's access token and returns the raw JSON body.
// A non-200 answer comes back as *errors.UpstreamError carrying status and body.
func (c *Client) Fetch(ctx context.Context, req Request, accessToken string) (json.RawMessage, error) {
	if accessToken == "" {
		return nil, errors.ErrMissingAccessToken
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInternal, "parse analytics url")
	}
	q := u.Query()
	for k, vs := range req.Query(accessToken) {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build analytics request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analytics request: %w: %w", errors.ErrUpstream, redactToken(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read analytics response: %w: %w", errors.ErrUpstream, err)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("office_id", req.OfficeID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Logger()

	if resp.StatusCode != http.StatusOK {
		logger.Debug().Msg("analytics upstream call")
		return nil, &errors.UpstreamError{Service: serviceName, Status: resp.StatusCode, Body: string(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Wrapf(errors.ErrUpstream, "analytics returned a non-object body")
	}
	// The body is forwarded as is; a payload that no longer matches Response is logged, not rejected.
	if decoded, err := Decode(trimmed); err != nil {
		logger.Warn().Err(err).Msg("analytics response does not match the known schema")
	} else {
		logger.Debug().Int("categories", len(decoded.Analytics)).Msg("analytics upstream call")
	}
	return json.RawMessage(trimmed), nil
}

// redactToken keeps the access token, which travels in the query string, out of
// transport errors that end up in logs.
func redactToken(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			q := u.Query()
			if q.Has("access_token") {
				q.Set("access_token", "REDACTED")
				u.RawQuery = q.Encode()
			}
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}
