package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes carried on every failed operation.
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeNotVisible            = "NOT_VISIBLE"
	CodeNotAuthorized         = "NOT_AUTHORIZED"
	CodeInvalidParent         = "INVALID_PARENT"
	CodeVisibilityUnavailable = "VISIBILITY_UNAVAILABLE"
	CodeConsistencyViolation  = "CONSISTENCY_VIOLATION"
	// CodeUnauthenticated is the HTTP surface's own: requests without a valid
	// identity never reach the engine's operations.
	CodeUnauthenticated = "UNAUTHENTICATED"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewNotVisibleError hides a post the viewer may not read. Indistinguishable
// from NOT_FOUND on the wire by design of the status mapping (both 404).
func NewNotVisibleError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotVisible,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewNotAuthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeNotAuthorized,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

func NewInvalidParentError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParent,
		Message: message,
	}
}

func NewVisibilityUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeVisibilityUnavailable,
		Message: "visibility backend unavailable",
		Err:     err,
	}
}

func NewConsistencyViolationError(detail string) *AppError {
	return &AppError{
		Code:    CodeConsistencyViolation,
		Message: detail,
	}
}

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case CodeValidation, CodeInvalidParent:
		return fiber.StatusBadRequest
	case CodeNotFound, CodeNotVisible:
		return fiber.StatusNotFound
	case CodeNotAuthorized:
		return fiber.StatusForbidden
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeVisibilityUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response. Consistency
// violations render as a generic internal error so counter internals never
// leak to clients.
func RespondWithError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*AppError); ok {
		status := StatusForCode(appErr.Code)
		response := ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Code == CodeConsistencyViolation {
			response.Error = "internal error"
		} else if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
		return c.Status(status).JSON(response)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal error",
	})
}
