package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError is an error with the HTTP status it should be reported with.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(err error) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: err.Error(), Err: err}
}

func NewNotFoundError(err error) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: err.Error(), Err: err}
}

func NewConflictError(err error) *AppError {
	return &AppError{Code: fiber.StatusConflict, Message: err.Error(), Err: err}
}

// ErrorHandlerMiddleware renders errors returned by later handlers as a BaseResponse.
// Unclassified errors become 500 without leaking their text.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := fiber.StatusInternalServerError, "Internal server error"

		var appErr *AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code, message = appErr.Code, appErr.Message
		case errors.As(err, &fiberErr):
			code, message = fiberErr.Code, fiberErr.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
