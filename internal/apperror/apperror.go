package apperror

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/logger"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
	Conflict
	TooManyRequests
)

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return fiber.StatusBadRequest
	case Unauthorized:
		return fiber.StatusUnauthorized
	case Forbidden:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	case Conflict:
		return fiber.StatusConflict
	case TooManyRequests:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// Error is an error with a kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by identity, and bare errors of the same kind and
// message so freshly built errors compare equal to package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (t.Err == nil && e.Kind == t.Kind && e.Message == t.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewBadRequest(message string) *Error   { return New(BadRequest, message) }
func NewUnauthorized(message string) *Error { return New(Unauthorized, message) }
func NewForbidden(message string) *Error    { return New(Forbidden, message) }
func NewNotFound(message string) *Error     { return New(NotFound, message) }
func NewConflict(message string) *Error     { return New(Conflict, message) }

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

const internalMessage = "An unexpected error occurred"

// Write renders err as {"error", "message"} with the mapped status. Internal
// errors are logged and replaced with a generic message.
func Write(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := internalMessage

	var appErr *Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr) && appErr.Kind != Internal:
		status = appErr.Kind.Status()
		message = appErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		logger.FromCtx(c, nil).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// Handler is a fiber.ErrorHandler backed by Write.
func Handler(c *fiber.Ctx, err error) error {
	return Write(c, err)
}
