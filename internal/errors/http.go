package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by the HTTP layer.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// statusFor maps error types to HTTP status codes. Fetch failures are 502
// because the upstream object store, not this service, rejected the request.
func statusFor(t ErrorType) int {
	switch t {
	case ErrTypeInvalidLocator, ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeMissingColumn, ErrTypeUnreadable:
		return http.StatusUnprocessableEntity
	case ErrTypeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToAPIError converts any error into a renderable APIError. AppErrors keep
// their type code and message; everything else becomes a generic 500.
func ToAPIError(err error) *APIError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		api := &APIError{
			StatusCode: statusFor(appErr.Type),
			ErrorCode:  string(appErr.Type),
			Message:    appErr.Message,
		}
		if appErr.Cause != nil {
			api.Detail = appErr.Cause.Error()
		}
		return api
	}
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  "INTERNAL",
		Message:    "internal server error",
	}
}
