package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://osdesk.app/errors/validation"
	ErrorTypeNotFound     = "https://osdesk.app/errors/not-found"
	ErrorTypeUnauthorized = "https://osdesk.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://osdesk.app/errors/forbidden"
	ErrorTypeConflict     = "https://osdesk.app/errors/conflict"
	ErrorTypeInternal     = "https://osdesk.app/errors/internal"

	ErrorTypeInconsistentState  = "https://osdesk.app/errors/inconsistent-state"
	ErrorTypeServiceUnavailable = "https://osdesk.app/errors/service-unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInconsistentStateError creates a 422 response listing every violation
func NewInconsistentStateError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, ProblemDetails{
		Type:     ErrorTypeInconsistentState,
		Title:    "Inconsistent Desktop State",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// writeStateError renders a rejected desktop state. It reports false when
// err is not a state validation failure.
func writeStateError(c echo.Context, err error) (bool, error) {
	var shapeErr *domain.ShapeError
	if errors.As(err, &shapeErr) {
		details := make([]ValidationError, 0, len(shapeErr.Issues))
		for _, issue := range shapeErr.Issues {
			field := "state"
			if issue.Path != "" {
				field = "state." + issue.Path
			}
			details = append(details, ValidationError{Field: field, Message: issue.Message})
		}
		return true, NewValidationError(c, "Desktop state is malformed", details)
	}

	var consistencyErr *domain.ConsistencyError
	if errors.As(err, &consistencyErr) {
		violations := consistencyErr.Violations()
		details := make([]ValidationError, 0, len(violations))
		for _, v := range violations {
			details = append(details, ValidationError{Field: v.Category, Message: v.Subject})
		}
		return true, NewInconsistentStateError(c, "Desktop state is inconsistent", details)
	}

	return false, nil
}
