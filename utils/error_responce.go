package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AppError is a failure with a client-facing status and message. Anything
// that is not an AppError is reported as a generic 500.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func Unauthenticated(message string) *AppError {
	if message == "" {
		message = "No autenticado"
	}
	return NewError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "No tiene permisos para realizar esta acción"
	}
	return NewError(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return NewError(http.StatusNotFound, message)
}

func Validation(message string) *AppError {
	return NewError(http.StatusBadRequest, message)
}

const internalMessage = "Error interno del servidor"

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return http.StatusInternalServerError
}

// Respond writes err using the standard error envelope. Unexpected failures
// are logged with request context and never detailed to the client.
func Respond(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr.Message})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).WithError(err).Error("Unexpected error handling request")
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: internalMessage})
}

// ErrorHandler is installed as fiber's top-level error handler.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return Respond(c, log, err)
	}
}
