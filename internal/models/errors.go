package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Application error codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidRelationship = "INVALID_RELATIONSHIP"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Fields maps form field names to their error messages.
	Fields map[string]string
	Err    error
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

func codedError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewNotFoundError reports a missing resource looked up by id, slug or username.
func NewNotFoundError(resource string, key any) *AppError {
	return codedError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, key))
}

func NewValidationError(message string) *AppError {
	return codedError(CodeValidation, message)
}

// NewFieldValidationError reports a validation failure bound to a single form field.
func NewFieldValidationError(field, message string) *AppError {
	return NewFormValidationError(map[string]string{field: message})
}

// NewFormValidationError reports several field failures at once.
func NewFormValidationError(fields map[string]string) *AppError {
	e := codedError(CodeValidation, "form contains errors")
	e.Fields = fields
	return e
}

func NewPermissionError(message string) *AppError {
	return codedError(CodeForbidden, message)
}

func NewInvalidRelationshipError(message string) *AppError {
	return codedError(CodeInvalidRelationship, message)
}

func NewUnauthorizedError(message string) *AppError {
	return codedError(CodeUnauthorized, message)
}

// NewConflictError reports a uniqueness clash on field.
func NewConflictError(field, message string) *AppError {
	e := codedError(CodeConflict, message)
	e.Fields = map[string]string{field: message}
	return e
}

func NewInternalError(err error) *AppError {
	e := codedError(CodeInternal, "Internal server error")
	e.Err = err
	return e
}

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError unwraps err into an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to its response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Fields: appErr.Fields,
		}
		// Internal causes stay in the logs.
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
