package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI page (HTML template)
	mux.HandleFunc("/", s.handleRoot)

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Market data
	mux.HandleFunc("/api/market", s.app.MarketHandler.GetMarketHandler)
	mux.HandleFunc("/api/market/chart", s.app.MarketHandler.GetChartHandler)
	mux.HandleFunc("/api/market/refresh", s.app.MarketHandler.RefreshHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}

// handleRoot serves the index page and a JSON 404 for anything else,
// since ServeMux treats "/" as a catch-all
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}
	s.app.PageHandler.ServePage("index.html", "home")(w, r)
}
