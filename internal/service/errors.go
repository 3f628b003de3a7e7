package service

import (
	"errors"

	"econote-be/internal/navigator"
	"econote-be/internal/pkg/serverutils"
	"econote-be/internal/session"
	"econote-be/pkg/calibration"
	"econote-be/pkg/canvas"
	"econote-be/pkg/ocr"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrLastNotebook = errors.New("at least one notebook must remain")
	ErrInvalidImage = errors.New("image_data must be a base64 encoded PNG or JPEG")
)

// toAppError classifies domain errors for the HTTP layer; unknown errors pass through as 500s.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *serverutils.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, navigator.ErrNotebookNotFound),
		errors.Is(err, navigator.ErrPageNotFound),
		errors.Is(err, navigator.ErrPageNotInNotebook),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionClosed):
		return serverutils.NewNotFoundError(err)

	case errors.Is(err, navigator.ErrLastPage),
		errors.Is(err, ErrLastNotebook),
		errors.Is(err, navigator.ErrNotOpen),
		errors.Is(err, session.ErrNoCalibration),
		errors.Is(err, calibration.ErrComplete):
		return serverutils.NewConflictError(err)

	case errors.Is(err, session.ErrUnknownEvent),
		errors.Is(err, session.ErrUnknownDirection),
		errors.Is(err, canvas.ErrUnknownTool),
		errors.Is(err, canvas.ErrInvalidColor),
		errors.Is(err, canvas.ErrInvalidWidth),
		errors.Is(err, calibration.ErrTooFewTargets),
		errors.Is(err, ErrInvalidImage):
		return serverutils.NewBadRequestError(err)

	case errors.Is(err, ocr.ErrNotConfigured):
		return &serverutils.AppError{Code: fiber.StatusServiceUnavailable, Message: err.Error(), Err: err}
	}
	return err
}
