package config

import (
	"sort"
	"strings"
)

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// AllowedOrigins returns the CORS origin set. "*" acts as a wildcard.
func (s Settings) AllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range s.CORSOrigins {
		origins[strings.TrimRight(o, "/")] = nullValue{}
	}
	return origins
}

func (Settings) AllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Settings) AllowedHeaders() string {
	return "Content-Type, Authorization"
}
