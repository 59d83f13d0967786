package serverutils

import "github.com/gofiber/fiber/v2"

// ApiError carries an HTTP status alongside a user-safe message.
// Services return these when the failure should reach the client as-is.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusNotFound, Message: message}
}

func NewConflictError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusConflict, Message: message}
}

func NewInternalError(message string) *ApiError {
	return &ApiError{StatusCode: fiber.StatusInternalServerError, Message: message}
}
