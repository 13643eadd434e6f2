package serverutils

import (
	"errors"

	"vault-copilot-be/internal/service"
	"vault-copilot-be/pkg/agent"
	"vault-copilot-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service and agent errors onto HTTP statuses so
// controllers can simply return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError

		var validationErr *ValidationError
		var chatErr *service.ChatError

		switch {
		case errors.As(err, &validationErr):
			status = fiber.StatusBadRequest
		case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrNoteNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, agent.ErrNoResults):
			status = fiber.StatusNotFound
		case errors.Is(err, agent.ErrNoVault), errors.Is(err, agent.ErrNoOpenNote):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, retrieval.ErrAllSourcesFailed):
			status = fiber.StatusBadGateway
		case errors.As(err, &chatErr):
			status = fiber.StatusBadGateway
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		return ctx.Status(status).JSON(ErrorResponse(err.Error()))
	}
}
