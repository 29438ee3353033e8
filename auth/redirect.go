package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveNext turns the caller's "next" path into an absolute URL under the frontend
// origin. Anything that is not a plain relative path becomes "/", so login can never
// bounce the browser to another host. The result is escaped for use in a Location header.
func ResolveNext(frontendURL, next string) string {
	root := strings.TrimRight(frontendURL, "/") + "/"
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return root
	}
	base, err := url.Parse(root)
	if err != nil {
		return root
	}
	u, err := url.Parse(root + strings.TrimLeft(next, "/"))
	if err != nil || u.Host != base.Host {
		return root
	}
	// String escapes path and fragment but writes the raw query as given.
	u.RawQuery = escapeQuery(u.RawQuery)
	return u.String()
}

// escapeQuery percent-encodes bytes that may not appear literally in a URL, keeping the
// query's own delimiters and existing escapes.
func escapeQuery(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("\"<>\\^`{|}", c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ErrorRedirect builds the frontend URL that reports a failed login in the fragment,
// e.g. https://app.example.com/#auth=error&message=access_denied.
func ErrorRedirect(frontendURL, message string) string {
	return strings.TrimRight(frontendURL, "/") + "/#auth=error&message=" + url.QueryEscape(message)
}
