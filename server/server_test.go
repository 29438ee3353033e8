package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-analytics-bff/internal/config"
	"github.com/jrsteele09/go-analytics-bff/server"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testFrontendURL  = "http://localhost:5173"
	testRedirectURI  = "http://localhost:8000/api/auth/callback"
	testOrigin       = "http://localhost:5173"
)

// upstreams fakes the three downstream services and counts calls to each.
type upstreams struct {
	auth      *httptest.Server
	directory *httptest.Server
	analytics *httptest.Server

	tokenStatus   int
	tokenResponse string
	tokenForms    []url.Values

	directoryStatus int
	directoryBody   string
	directoryAuth   []string

	analyticsStatus int
	analyticsBody   string
	analyticsQuery  []url.Values
}

func newUpstreams(t *testing.T) *upstreams {
	u := &upstreams{
		tokenStatus:     http.StatusOK,
		tokenResponse:   `{"access_token":"at-1","refresh_token":"rt-1","expires_in":7200,"token_type":"bearer"}`,
		directoryStatus: http.StatusOK,
		directoryBody:   `{"data":{"committeeAutocomplete":[]}}`,
		analyticsStatus: http.StatusOK,
		analyticsBody:   `{"analytics":{}}`,
	}
	u.auth = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		u.tokenForms = append(u.tokenForms, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.tokenStatus)
		_, _ = w.Write([]byte(u.tokenResponse))
	}))
	u.directory = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.directoryAuth = append(u.directoryAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.directoryStatus)
		_, _ = w.Write([]byte(u.directoryBody))
	}))
	u.analytics = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.analyticsQuery = append(u.analyticsQuery, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.analyticsStatus)
		_, _ = w.Write([]byte(u.analyticsBody))
	}))
	t.Cleanup(func() {
		u.auth.Close()
		u.directory.Close()
		u.analytics.Close()
	})
	return u
}

func (u *upstreams) settings(debug bool) config.Settings {
	return config.Settings{
		BackendHost:      "127.0.0.1",
		BackendPort:      8000,
		Debug:            debug,
		APIPrefix:        "/api",
		CORSOrigins:      []string{testOrigin},
		FrontendURL:      testFrontendURL,
		AuthClientID:     testClientID,
		AuthClientSecret: testClientSecret,
		AuthRedirectURI:  testRedirectURI,
		GISAuthEndpoint:  u.auth.URL,
		OAuthState:       true,
		GraphQLURL:       u.directory.URL + "/graphql",
		AnalyticsBaseURL: u.analytics.URL + "/v2/applications/analyze.json",
		UpstreamTimeout:  5 * time.Second,
	}
}

func newTestServer(t *testing.T, debug bool) (*server.Server, *upstreams) {
	u := newUpstreams(t)
	return server.New(u.settings(debug), nil), u
}

func do(s http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// responseCookies indexes the Set-Cookie headers of a response by name.
func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGeneralRoutes(t *testing.T) {
	s, _ := newTestServer(t, false)

	t.Run("root", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"message":"Server hello"}`, rec.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/health")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "ok", body["status"])
		require.Equal(t, "Server is healthy", body["message"])
		require.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \S+$`, body["timestamp"])
	})

	t.Run("request id is echoed", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/health")
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Request-ID", "4f0c6bde-7c1d-4d5e-9d55-2a0ad8f5a6f1")
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Equal(t, "4f0c6bde-7c1d-4d5e-9d55-2a0ad8f5a6f1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("metrics", func(t *testing.T) {
		do(s, http.MethodGet, "/api/health")
		rec := do(s, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "bff_http_requests_total")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/nope")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown route under the prefix", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := do(s, method, "/api/nope")
			require.Equal(t, http.StatusNotFound, rec.Code, method)
			require.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
		}
	})

	t.Run("routes are registered under the prefix", func(t *testing.T) {
		require.Contains(t, s.Routes(), "GET /api/auth/login")
		require.Contains(t, s.Routes(), "POST /api/auth/refresh")
		require.Contains(t, s.Routes(), "GET /api/analytics")
	})
}

func TestCors(t *testing.T) {
	s, _ := newTestServer(t, false)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		req.Header.Set("Origin", testOrigin)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/refresh", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestCookiePolicy(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		p := server.NewCookiePolicy(false)
		require.True(t, p.Secure)
		require.Equal(t, http.SameSiteNoneMode, p.SameSite)
	})

	t.Run("debug", func(t *testing.T) {
		p := server.NewCookiePolicy(true)
		require.False(t, p.Secure)
		require.Equal(t, http.SameSiteStrictMode, p.SameSite)
	})

	t.Run("set and clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		p := server.NewCookiePolicy(false)
		p.Set(rec, "access_token", "abc", 3600)
		p.Clear(rec, "refresh_token")

		cookies := responseCookies(rec)
		at := cookies["access_token"]
		require.Equal(t, "abc", at.Value)
		require.Equal(t, 3600, at.MaxAge)
		require.Equal(t, "/", at.Path)
		require.True(t, at.HttpOnly)
		require.True(t, at.Secure)

		rt := cookies["refresh_token"]
		require.Empty(t, rt.Value)
		require.Equal(t, -1, rt.MaxAge)
	})

	t.Run("transient cookies are lax in debug", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.NewCookiePolicy(true).SetTransient(rec, "redirect_uri", testFrontendURL+"/")
		c := responseCookies(rec)["redirect_uri"]
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.Equal(t, 600, c.MaxAge)
	})
}

func TestRecoverAndLogging(t *testing.T) {
	s, _ := newTestServer(t, true)
	h := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, s.APIMiddleware()...)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
