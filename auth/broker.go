package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-analytics-bff/internal/config"
	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"golang.org/x/oauth2"
)

const serviceName = "authorization server"

// TokenSet is what the BFF keeps from a token endpoint response.
type TokenSet struct {
	AccessToken  string
	RefreshToken string // empty when the response carried none
	ExpiresIn    int    // seconds; 0 when the response carried none
}

// Broker talks to the authorization server on behalf of the browser. It holds no
// per-user state; every call is a single synchronous round trip.
type Broker struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewBroker builds a broker for the configured client. The client secret travels in
// the form body, which is what the authorization server expects.
func NewBroker(s config.Settings, httpClient *http.Client) *Broker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.UpstreamTimeout}
	}
	return &Broker{
		oauth: &oauth2.Config{
			ClientID:     s.AuthClientID,
			ClientSecret: s.AuthClientSecret,
			RedirectURL:  s.AuthRedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   s.AuthorizeURL(),
				TokenURL:  s.TokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the authorization endpoint URL for a code flow. An empty state
// is omitted from the query.
func (b *Broker) AuthCodeURL(state string) string {
	return b.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens (grant_type=authorization_code).
func (b *Broker) Exchange(ctx context.Context, code string) (TokenSet, error) {
	tok, err := b.oauth.Exchange(b.withClient(ctx), code)
	if err != nil {
		return TokenSet{}, upstreamError("exchange", err)
	}
	return tokenSet(tok), nil
}

// Refresh trades a refresh token for new tokens (grant_type=refresh_token).
func (b *Broker) Refresh(ctx context.Context, refreshToken string) (TokenSet, error) {
	if refreshToken == "" {
		return TokenSet{}, errors.ErrMissingRefreshToken
	}
	src := b.oauth.TokenSource(b.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return TokenSet{}, upstreamError("refresh", err)
	}
	return tokenSet(tok), nil
}

func (b *Broker) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
}

// tokenSet reads fields from the raw response rather than the oauth2.Token struct:
// the library copies the old refresh token forward when the response omits one,
// and the cookie must only rotate when the server actually issued a new one.
func tokenSet(tok *oauth2.Token) TokenSet {
	ts := TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: rawString(tok, "refresh_token"),
		ExpiresIn:    int(tok.ExpiresIn),
	}
	if ts.ExpiresIn == 0 {
		ts.ExpiresIn = rawInt(tok, "expires_in")
	}
	return ts
}

func rawString(tok *oauth2.Token, key string) string {
	switch v := tok.Extra(key).(type) {
	case string:
		return v
	default:
		return ""
	}
}

func rawInt(tok *oauth2.Token, key string) int {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func upstreamError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := http.StatusBadGateway
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &errors.UpstreamError{
			Service: serviceName,
			Status:  status,
			Body:    string(re.Body),
			Code:    re.ErrorCode,
		}
	}
	return fmt.Errorf("%s: %w: %w", op, errors.ErrUpstream, err)
}
