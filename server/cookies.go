package server

import (
	"net/http"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	// redirectURICookie holds the post-login destination between login and callback
	redirectURICookie = "redirect_uri"
	// oauthStateCookie holds the CSRF state between login and callback
	oauthStateCookie = "oauth_state"

	// transientCookieMaxAge is long enough for the user to finish signing in
	transientCookieMaxAge = 600
)

// CookiePolicy carries the security attributes shared by every cookie the BFF sets.
// It is derived once from the debug flag.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy returns the production policy (secure, cross-site) unless debug is set,
// in which case cookies work over plain http and stay same-site strict.
func NewCookiePolicy(debug bool) CookiePolicy {
	if debug {
		return CookiePolicy{Secure: false, SameSite: http.SameSiteStrictMode}
	}
	return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
}

// Set writes an HTTP-only cookie on path "/". maxAge 0 makes it a session cookie.
func (p CookiePolicy) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
		MaxAge:   maxAge,
	})
}

// SetTransient writes a short-lived cookie that must survive the redirect back from the
// authorization server, which is a cross-site top-level navigation. Lax is the
// strictest mode browsers still send on that request.
func (p CookiePolicy) SetTransient(w http.ResponseWriter, name, value string) {
	sameSite := p.SameSite
	if sameSite == http.SameSiteStrictMode {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: sameSite,
		MaxAge:   transientCookieMaxAge,
	})
}

// Clear expires a cookie immediately.
func (p CookiePolicy) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
		MaxAge:   -1,
	})
}

// cookieValue returns the named cookie's value, or "" when absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
