package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/middleware"
)

// statusForError maps the error taxonomy onto HTTP statuses. Unknown errors
// become 500 without leaking their message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrTenantMismatch):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrUnknownAccount),
		errors.Is(err, apperrors.ErrUnknownPair),
		errors.Is(err, apperrors.ErrMissingAccount):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrDuplicateCode),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrNotPending),
		errors.Is(err, apperrors.ErrBaseCurrencyLocked):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnbalanced),
		errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrRateVariance),
		errors.Is(err, apperrors.ErrStaleRate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrUnknownCurrency),
		errors.Is(err, apperrors.ErrParentMismatch):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrSerialization), errors.Is(err, apperrors.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status with the error message, logging server
// faults at error level and client faults at warn.
func respondError(c *gin.Context, err error, context string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(context, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": context})
		return
	}
	logger.Warn(context, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError reports a malformed request body or query string.
func respondBindError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}

// callerOrAbort pulls the resolved caller from the context. The auth
// middleware guarantees it for /api/v1 routes; missing means a wiring bug.
func callerOrAbort(c *gin.Context) (caller domain.CallContext, ok bool) {
	caller, ok = middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return caller, ok
}

// idempotencyKey reads the Idempotency-Key header, preferring it over any key
// embedded in the body.
func idempotencyKey(c *gin.Context, bodyKey *string) *string {
	if header := c.GetHeader("Idempotency-Key"); header != "" {
		return &header
	}
	return bodyKey
}
