package server

func (s *Server) initRoutes() {
	p := s.prefix

	s.RegisterRouteHandler("GET "+p+RouteRoot, ChainMiddleware(s.RootHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+p+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("GET "+p+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+p+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+p+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+p+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+p+RouteAuthStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))

	// PROXIES
	s.RegisterRouteHandler("GET "+p+RouteOffice, ChainMiddleware(s.OfficeSearchHandler(), s.APIMiddleware(s.RequireAccessToken())...))
	s.RegisterRouteHandler("GET "+p+RouteAnalytics, ChainMiddleware(s.AnalyticsHandler(), s.APIMiddleware(s.RequireAccessToken())...))

	// CORS preflight for anything under the prefix; CorsMiddleware answers it
	s.RegisterRouteHandler("OPTIONS "+p+"/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	// Anything else under the prefix, so unknown paths are 404 rather than 405
	s.RegisterRouteHandler(p+"/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
