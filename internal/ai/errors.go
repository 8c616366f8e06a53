package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
)

// httpCoder matches gax apierror.APIError without importing it
type httpCoder interface {
	HTTPCode() int
}

// IsRetryable determines if a provider failure is worth another attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Breaker rejections clear only after the breaker timeout
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Network errors (timeouts, connection issues). context.DeadlineExceeded is one too.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var coder httpCoder
	if errors.As(err, &coder) {
		return retryableStatus(coder.HTTPCode())
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// toProviderError wraps any adapter failure into the uniform provider error
func toProviderError(provider, operation string, err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.ErrorTypeProvider {
		return appErr
	}

	code := apperrors.ErrCodeProviderFailed
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = apperrors.ErrCodeProviderTimeout
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		code = apperrors.ErrCodeProviderUnavailable
	}

	return apperrors.NewProviderError(provider, code,
		fmt.Sprintf("%s call failed for %s", provider, operation), err).
		WithContext("operation", operation)
}

// emptyResponseError reports a call that returned no usable text
func emptyResponseError(provider, operation string) *apperrors.AppError {
	return apperrors.NewProviderError(provider, apperrors.ErrCodeEmptyResponse,
		fmt.Sprintf("%s returned an empty response for %s", provider, operation), nil).
		WithContext("operation", operation)
}
