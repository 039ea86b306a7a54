package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorConfigMissing    = "GATEWAYS_CONFIG_MISSING"
	GatewayErrorRefreshFailed    = "GATEWAYS_REFRESH_FAILED"
	GatewayErrorProviderNotFound = "GATEWAYS_PROVIDER_NOT_FOUND"
	GatewayErrorBadInput         = "GATEWAYS_BAD_INPUT"
	GatewayErrorInternal         = "GATEWAYS_INTERNAL_ERROR"
)

// NewConfigurationError reports missing secret or credential material.
// Configuration errors are never retried; they surface to the caller at
// construction or first use.
func NewConfigurationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(GatewayErrorConfigMissing)
}

// NewRefreshError reports a failed token exchange. The credential state
// before the attempt is guaranteed intact, so callers may retry under their
// own policy.
func NewRefreshError(message string, cause error) *goerrors.Error {
	if cause != nil {
		return goerrors.Wrap(cause, goerrors.CategoryAuth, message).
			WithCode(http.StatusUnauthorized).
			WithTextCode(GatewayErrorRefreshFailed)
	}
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(GatewayErrorRefreshFailed)
}

// IsConfigurationError reports whether err carries the configuration text
// code anywhere in its chain.
func IsConfigurationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rich.TextCode), GatewayErrorConfigMissing)
}

// IsRefreshError reports whether err represents a failed token exchange.
func IsRefreshError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rich.TextCode), GatewayErrorRefreshFailed)
}

func gatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not registered"), strings.Contains(msg, "no verifier"):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorProviderNotFound)
	case strings.Contains(msg, "refresh"), strings.Contains(msg, "token exchange"):
		return newGatewayError(err.Error(), goerrors.CategoryAuth, GatewayErrorRefreshFailed)
	case strings.Contains(msg, "secret"), strings.Contains(msg, "passphrase"), strings.Contains(msg, "is required"):
		return newGatewayError(err.Error(), goerrors.CategoryValidation, GatewayErrorConfigMissing)
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return GatewayErrorBadInput
	case goerrors.CategoryValidation:
		return GatewayErrorConfigMissing
	case goerrors.CategoryNotFound:
		return GatewayErrorProviderNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return GatewayErrorRefreshFailed
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
