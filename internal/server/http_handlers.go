package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const serviceName = "careernav"

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.Timeout; t > 0 {
		return t
	}
	return 5 * time.Second
}

// healthHandler reports model, breaker, pool and store health.
// Unavailable models only degrade the status since every task has a
// static fallback; a failing store makes the service unhealthy.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
	defer cancel()

	var models map[string]any
	storeOK, storeErr := true, ""
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		models = s.checkAIModelsHealth(gctx)
		return nil
	})
	g.Go(func() error {
		if err := s.store.Ping(gctx); err != nil {
			storeOK = false
			storeErr = err.Error()
		}
		return nil
	})
	_ = g.Wait()

	response := map[string]any{
		"status":           "healthy",
		"service":          serviceName,
		"version":          s.Version,
		"ai_models":        models,
		"circuit_breakers": s.checkCircuitBreakerHealth(),
		"store":            map[string]any{"healthy": storeOK, "error": storeErr},
	}
	if s.pool != nil {
		response["worker_pool"] = s.pool.Stats()
	}
	if s.vaultWatcher != nil {
		response["vault_watcher"] = s.vaultWatcher.Status()
	}

	status := http.StatusOK
	for _, info := range models {
		if modelInfo, ok := info.(*ai.ModelInfo); ok && modelInfo != nil && !modelInfo.Available {
			response["status"] = "degraded"
		}
	}
	if !storeOK {
		response["status"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// checkAIModelsHealth asks each provider tier to describe its model
func (s *Server) checkAIModelsHealth(ctx context.Context) map[string]any {
	timeout := s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	status := make(map[string]any)
	for tier, provider := range s.providers() {
		if reporter, ok := provider.(ai.ModelReporter); ok {
			status[tier] = reporter.ModelInfo(ctx)
			continue
		}
		status[tier] = &ai.ModelInfo{Name: provider.Name(), Provider: provider.Name(), Available: true}
	}
	return status
}

// checkCircuitBreakerHealth collects breaker counters for each provider tier
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	status := make(map[string]any)
	for tier, provider := range s.providers() {
		if reporter, ok := provider.(ai.BreakerReporter); ok {
			status[tier] = reporter.BreakerStats()
			continue
		}
		status[tier] = map[string]any{"available": false, "message": "provider has no circuit breaker"}
	}
	return status
}

func (s *Server) providers() map[string]ai.Provider {
	providers := make(map[string]ai.Provider)
	if s.service == nil || s.service.Pipeline() == nil {
		return providers
	}
	p := s.service.Pipeline()
	if primary := p.Primary(); primary != nil {
		providers["primary"] = primary
	}
	if secondary := p.Secondary(); secondary != nil {
		providers["secondary"] = secondary
	}
	return providers
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": serviceName,
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys":               s.APIKeys.Len(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.pool != nil {
		response["worker_pool"] = s.pool.Stats()
	}

	if stats, err := s.store.Stats(r.Context()); err == nil {
		response["store"] = stats
	} else {
		s.Logger.LogError(err, "Failed to collect store stats")
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes a JSON body into v and validates its struct tags
func (s *Server) parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "content-type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return apperrors.NewIOError(apperrors.ErrCodeInvalidRequest, "failed to read request body", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close request body")
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}

	if err := s.validate.Struct(v); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, validationMessage(err), err)
	}
	return nil
}

// validationMessage flattens validator errors into one line
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// queryLimit reads a positive ?limit= value, falling back to def
func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

// writeAppError maps an application error onto an HTTP status.
// Provider and shape failures never reach here since the pipeline absorbs them.
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	title := "Internal error"
	switch {
	case appErr.Code == apperrors.ErrCodeNotFound:
		status, title = http.StatusNotFound, "Not found"
	case appErr.Type == apperrors.ErrorTypeInputRejected:
		status, title = http.StatusBadRequest, "Input rejected"
	case appErr.Type == apperrors.ErrorTypeValidation:
		status, title = http.StatusBadRequest, "Invalid request"
	case appErr.Type == apperrors.ErrorTypeStore:
		title = "Storage failure"
	}

	writeJSON(w, status, ErrorResponse{Error: title, Code: appErr.Code, Message: appErr.Message})
}
