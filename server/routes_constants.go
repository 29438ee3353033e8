package server

// Route path constants, relative to the API prefix
const (
	RouteRoot   = "/{$}"
	RouteHealth = "/health"

	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthStatus   = "/auth/status"

	// Proxy Routes
	RouteOffice    = "/office"
	RouteAnalytics = "/analytics"

	// Served outside the API prefix
	RouteMetrics = "/metrics"
)
