package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const serviceName = "directory"

const autocompleteQuery = `query($query: String!) {
	committeeAutocomplete(q: $query) {
		id
		name
		full_name
	}
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Client searches offices through the GraphQL directory.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a directory client. A nil httpClient gets http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Search runs the autocomplete query and returns the operating offices that match.
// It returns errors.ErrNotFound when nothing is left after filtering, even if the
// directory itself returned entries.
func (c *Client) Search(ctx context.Context, query, accessToken string) ([]Office, error) {
	if accessToken == "" {
		return nil, errors.ErrMissingAccessToken
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "q is required")
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     autocompleteQuery,
		Variables: map[string]any{"query": query},
	})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	// The directory expects the bare token, without a Bearer prefix.
	req.Header.Set("Authorization", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w: %w", errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directory response: %w: %w", errors.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.UpstreamError{
			Service: serviceName,
			Status:  resp.StatusCode,
			Body:    "Failed to fetch offices: " + string(body),
		}
	}

	offices, err := parseOffices(body)
	if err != nil {
		return nil, err
	}

	active := FilterActive(offices)
	zerolog.Ctx(ctx).Debug().
		Str("q", query).
		Int("matched", len(offices)).
		Int("active", len(active)).
		Msg("directory search")

	if len(active) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "office search %q", query)
	}
	return active, nil
}

func parseOffices(body []byte) ([]Office, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.Wrapf(errors.ErrUpstream, "directory returned invalid JSON")
	}

	list := gjson.GetBytes(body, "data.committeeAutocomplete")
	if !list.IsArray() {
		if msg := gjson.GetBytes(body, "errors.0.message"); msg.Exists() {
			return nil, errors.Wrapf(errors.ErrUpstream, "directory: %s", msg.String())
		}
		if list.Type == gjson.Null {
			return []Office{}, nil
		}
		return nil, errors.Wrapf(errors.ErrUpstream, "directory response has no committeeAutocomplete list")
	}

	offices := make([]Office, 0, len(list.Array()))
	list.ForEach(func(_, entry gjson.Result) bool {
		offices = append(offices, Office{
			ID:   entry.Get("id").String(),
			Name: entry.Get("name").String(),
		})
		return true
	})
	return offices, nil
}
