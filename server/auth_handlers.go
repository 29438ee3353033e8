package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-analytics-bff/auth"
	"github.com/jrsteele09/go-analytics-bff/internal/errors"
	"github.com/rs/zerolog"
)

type StatusResponse struct {
	LoggedIn bool `json:"loggedIn"`
}

// LoginHandler starts the authorization-code flow (GET /auth/login?next=/path).
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := auth.ResolveNext(s.settings.FrontendURL, r.URL.Query().Get("next"))
		// Escaped so that bytes net/http drops from cookie values (; " \) survive.
		s.cookies.SetTransient(w, redirectURICookie, url.QueryEscape(target))

		var state string
		if s.settings.OAuthState {
			state = uuid.NewString()
			s.cookies.SetTransient(w, oauthStateCookie, state)
		}

		zerolog.Ctx(r.Context()).Info().Str("event", "login").Str("next", target).Msg("redirecting to authorization server")
		s.metrics.AuthEvent("login", "redirect")
		http.Redirect(w, r, s.broker.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler completes the flow. Failures the browser should see are reported
// with a redirect carrying an error fragment; only a missing code is a plain 400.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str("event", "callback").Logger()
		q := r.URL.Query()

		if errorParam := q.Get("error"); errorParam != "" {
			message := q.Get("error_description")
			if message == "" {
				message = errorParam
			}
			logger.Warn().Str("error", errorParam).Msg("authorization server reported an error")
			s.failCallback(w, r, "authorization_error", message)
			return
		}

		code := q.Get("code")
		if code == "" {
			s.metrics.AuthEvent("callback", "missing_code")
			writeError(w, r, errors.ErrMissingCode)
			return
		}

		if s.settings.OAuthState {
			expected := cookieValue(r, oauthStateCookie)
			if expected == "" || expected != q.Get("state") {
				logger.Warn().Err(errors.ErrInvalidState).Msg("state mismatch")
				s.failCallback(w, r, "invalid_state", "invalid_state")
				return
			}
		}

		tokens, err := s.broker.Exchange(r.Context(), code)
		if err != nil {
			message := "server_error"
			var upstream *errors.UpstreamError
			if errors.As(err, &upstream) && upstream.Code != "" {
				message = upstream.Code
			}
			logger.Error().Err(err).Msg("token exchange failed")
			s.failCallback(w, r, "exchange_failed", message)
			return
		}

		s.setSessionCookies(w, tokens)
		s.cookies.Clear(w, redirectURICookie)
		s.cookies.Clear(w, oauthStateCookie)

		logger.Info().Bool("refresh_token", tokens.RefreshToken != "").Int("expires_in", tokens.ExpiresIn).Msg("signed in")
		s.metrics.AuthEvent("callback", "success")
		http.Redirect(w, r, s.postLoginDestination(r), http.StatusFound)
	}
}

func (s *Server) failCallback(w http.ResponseWriter, r *http.Request, outcome, message string) {
	s.cookies.Clear(w, oauthStateCookie)
	s.metrics.AuthEvent("callback", outcome)
	http.Redirect(w, r, auth.ErrorRedirect(s.settings.FrontendURL, message), http.StatusFound)
}

// postLoginDestination returns the stored redirect target when it still points at the
// frontend, and the frontend root otherwise.
func (s *Server) postLoginDestination(r *http.Request) string {
	root := strings.TrimRight(s.settings.FrontendURL, "/") + "/"
	dest, err := url.QueryUnescape(cookieValue(r, redirectURICookie))
	if err == nil && strings.HasPrefix(dest, root) {
		return dest
	}
	return root
}

// setSessionCookies stores the tokens. access_token expires with the token; a missing
// expires_in leaves it a session cookie. refresh_token is only rotated when issued.
func (s *Server) setSessionCookies(w http.ResponseWriter, tokens auth.TokenSet) {
	if tokens.AccessToken != "" {
		s.cookies.Set(w, accessTokenCookie, tokens.AccessToken, tokens.ExpiresIn)
	}
	if tokens.RefreshToken != "" {
		s.cookies.Set(w, refreshTokenCookie, tokens.RefreshToken, 0)
	}
}

// RefreshHandler rotates the session tokens (POST /auth/refresh).
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str("event", "refresh").Logger()

		refreshToken := cookieValue(r, refreshTokenCookie)
		if refreshToken == "" {
			s.metrics.AuthEvent("refresh", "missing_token")
			writeError(w, r, errors.ErrMissingRefreshToken)
			return
		}

		tokens, err := s.broker.Refresh(r.Context(), refreshToken)
		if err != nil {
			var upstream *errors.UpstreamError
			if errors.As(err, &upstream) {
				logger.Warn().Int("upstream_status", upstream.Status).Str("code", upstream.Code).Msg("refresh rejected")
				s.metrics.AuthEvent("refresh", "rejected")
				if isJSON(upstream.Body) {
					writeRawJSON(w, http.StatusUnauthorized, []byte(upstream.Body))
				} else {
					writeJSON(w, http.StatusUnauthorized, map[string]string{
						"error":             "invalid_grant",
						"error_description": upstream.Body,
					})
				}
				return
			}
			s.metrics.AuthEvent("refresh", "error")
			writeError(w, r, err)
			return
		}

		s.setSessionCookies(w, tokens)
		logger.Info().Bool("rotated_refresh_token", tokens.RefreshToken != "").Msg("tokens refreshed")
		s.metrics.AuthEvent("refresh", "success")
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// LogoutHandler clears the session cookies. It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cookies.Clear(w, accessTokenCookie)
		s.cookies.Clear(w, refreshTokenCookie)
		s.metrics.AuthEvent("logout", "success")
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// StatusHandler reports whether an access_token cookie is present. It does not check
// that the token is still valid.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{LoggedIn: cookieValue(r, accessTokenCookie) != ""})
	}
}
