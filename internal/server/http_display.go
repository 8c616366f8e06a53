package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health                         - Health check")
	fmt.Println("  GET    /stats                          - Server statistics")
	fmt.Println("  POST   /resume/parse                   - Extract and store a resume")
	fmt.Println("  GET    /resume/{userId}                - Latest stored resume")
	fmt.Println("  POST   /skills/analyze                 - Skill gap analysis")
	fmt.Println("  POST   /roadmap/generate               - Generate a learning roadmap")
	fmt.Println("  GET    /roadmap/{userId}               - List roadmaps")
	fmt.Println("  GET    /roadmap/{userId}/export.xlsx   - Export a roadmap as a spreadsheet")
	fmt.Println("  POST   /interview/generate             - Start a practice session")
	fmt.Println("  POST   /interview/evaluate             - Evaluate a single answer")
	fmt.Println("  POST   /interview/{sessionId}/submit   - Submit session answers")
	fmt.Println("  GET    /interview/{sessionId}          - Session details")
	fmt.Println("  GET    /interview/{userId}/history     - Recent sessions")
	fmt.Println("  POST   /chat                           - Ask the study assistant")
	fmt.Println("  GET    /chat/{userId}/history          - Chat history")
	fmt.Println("  DELETE /chat/{userId}/history          - Clear chat history")
	fmt.Println("  GET    /dashboard/{userId}             - Resume, analysis and active roadmap")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if n := s.APIKeys.Len(); n > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to every endpoint except /health and /stats")
		if s.vaultWatcher != nil {
			fmt.Println("  - Keys rotate from Vault")
		}
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter != nil {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
