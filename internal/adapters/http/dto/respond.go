package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
)

// MapDomainError maps a domain error to a status and error envelope.
// Unknown errors become a generic 500.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		return http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			err.Error(),
			fieldDetails(err),
		)

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		// Relay details stay in the logs.
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			domain.GenericSubmitError,
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// fieldDetails collects per-field messages from a single or multi-field
// validation error.
func fieldDetails(err error) map[string]string {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		details := make(map[string]string, len(fields))
		for _, fe := range fields {
			details[fe.Field] = fe.Message
		}

		return details
	}

	var single *domain.ValidationError
	if errors.As(err, &single) && single.Field != "" {
		return map[string]string{single.Field: single.Message}
	}

	return nil
}

func traceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// HandleError writes the envelope for err, with the trace id when one
// is active.
func HandleError(c *gin.Context, err error) {
	status, errResp := MapDomainError(err)
	errResp.TraceID = traceID(c)

	logError(c, status, err, errResp.TraceID)

	c.JSON(status, errResp)
}

// HandleErrorWithBody writes the error status with a body other than the
// envelope. The quiz submit endpoint uses it to return the view.
func HandleErrorWithBody(c *gin.Context, err error, body any) {
	status, _ := MapDomainError(err)

	logError(c, status, err, traceID(c))

	c.JSON(status, body)
}

// RespondWithErrorCode writes an adapter-level error.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := NewErrorResponse(code, message).WithTraceID(traceID(c))
	c.JSON(HTTPStatusFromCode(code), errResp)
}

// HandleBindError writes a 400 for a request that failed to decode or
// validate.
func HandleBindError(c *gin.Context, err error) {
	if IsValidationError(err) {
		RespondWithValidationErrors(c, ValidationErrors(err))
		return
	}

	RespondWithErrorCode(c, ErrorCodeBadRequest, "malformed request")
}

// RespondWithValidationErrors writes a 400 with field messages.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	errResp := NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	).WithTraceID(traceID(c))

	c.JSON(http.StatusBadRequest, errResp)
}

// AbortWithError aborts the chain with the envelope for err.
func AbortWithError(c *gin.Context, err error) {
	status, errResp := MapDomainError(err)
	errResp.TraceID = traceID(c)

	c.AbortWithStatusJSON(status, errResp)
}

func logError(c *gin.Context, status int, err error, traceID string) {
	ctx := c.Request.Context()

	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		logging.FromContext(ctx).ErrorContext(ctx, "internal error",
			slog.Any("error", err),
			slog.String("trace_id", traceID),
		)
	case status == http.StatusServiceUnavailable:
		logging.FromContext(ctx).WarnContext(ctx, "dependency unavailable",
			slog.Any("error", err),
			slog.String("trace_id", traceID),
		)
	}
}
