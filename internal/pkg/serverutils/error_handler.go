// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"

	"ai-studypartner-be/pkg/agent/engine"
	"ai-studypartner-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the handlers into the
// standard response envelope. Turn failures map to 502 since the session
// state is untouched and the client can simply retry; extraction failures
// are the client's document, so 422.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		case errors.Is(err, engine.ErrGeneration):
			code = fiber.StatusBadGateway
		case errors.Is(err, extract.ErrExtraction):
			code = fiber.StatusUnprocessableEntity
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
