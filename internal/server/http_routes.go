package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimitHandler := s.createRateLimitMiddleware()
	requestLimitHandler := s.requestSizeLimitMiddleware()
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(s.authMiddleware(requestLimitHandler(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /resume/parse", protected(s.createResumeParseHandler()))
	mux.HandleFunc("GET /resume/{userId}", protected(s.getResumeHandler))

	mux.HandleFunc("POST /skills/analyze", protected(s.createSkillAnalyzeHandler()))

	mux.HandleFunc("POST /roadmap/generate", protected(s.createRoadmapGenerateHandler()))
	mux.HandleFunc("GET /roadmap/{userId}", protected(s.listRoadmapsHandler))
	mux.HandleFunc("GET /roadmap/{userId}/export.xlsx", protected(s.exportRoadmapHandler))

	mux.HandleFunc("POST /interview/generate", protected(s.createInterviewGenerateHandler()))
	mux.HandleFunc("POST /interview/evaluate", protected(s.createInterviewEvaluateHandler()))
	mux.HandleFunc("POST /interview/{sessionId}/submit", protected(s.createInterviewSubmitHandler()))
	mux.HandleFunc("GET /interview/{sessionId}", protected(s.getSessionHandler))
	mux.HandleFunc("GET /interview/{userId}/history", protected(s.sessionHistoryHandler))

	mux.HandleFunc("POST /chat", protected(s.createChatHandler()))
	mux.HandleFunc("GET /chat/{userId}/history", protected(s.chatHistoryHandler))
	mux.HandleFunc("DELETE /chat/{userId}/history", protected(s.clearChatHandler))

	mux.HandleFunc("GET /dashboard/{userId}", protected(s.dashboardHandler))

	return mux
}

// Handler returns the routed handler wrapped in HTTP instrumentation
func (s *Server) Handler() http.Handler {
	return s.om.HTTPMiddleware()(s.setupRoutes())
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if s.APIKeys.Len() == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys.Has(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
