package auth_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-analytics-bff/auth"
	"github.com/stretchr/testify/require"
)

func TestResolveNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", testFrontendURL + "/"},
		{"/", testFrontendURL + "/"},
		{"/dashboard", testFrontendURL + "/dashboard"},
		{"/kpis?office=1585", testFrontendURL + "/kpis?office=1585"},
		{"https://evil.example.com", testFrontendURL + "/"},
		{"//evil.example.com/path", testFrontendURL + "/"},
		{`/\evil.example.com`, testFrontendURL + "/"},
		{"dashboard", testFrontendURL + "/"},
		{"javascript:alert(1)", testFrontendURL + "/"},
		{"/a b", testFrontendURL + "/a%20b"},
		{"/dash;x=y", testFrontendURL + "/dash;x=y"},
		{"/kpis?office=a b#top", testFrontendURL + "/kpis?office=a%20b#top"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			got := auth.ResolveNext(testFrontendURL+"/", tt.next)
			require.Equal(t, tt.want, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			require.Equal(t, "localhost:5173", u.Host)
			require.True(t, strings.HasPrefix(got, testFrontendURL+"/"))
		})
	}
}

func TestErrorRedirect(t *testing.T) {
	got := auth.ErrorRedirect(testFrontendURL, "access denied")
	require.Equal(t, testFrontendURL+"/#auth=error&message=access+denied", got)
}
