package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/middlewares"
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindPreconditionFailed:
		return fiber.StatusPreconditionFailed
	case apperr.KindInvalidState, apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the standard error envelope. Unclassified errors
// are logged and hidden behind a generic message.
func respondError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
		message = "Internal server error"
	}

	return ctx.Status(status).JSON(fiber.Map{
		"status":  "error",
		"kind":    string(kind),
		"message": message,
	})
}

func badRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// currentUser returns the authenticated user id or writes a 401
func currentUser(ctx *fiber.Ctx) (string, bool) {
	userID, err := middlewares.GetUserIDFromContext(ctx)
	if err != nil {
		_ = ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthenticated",
		})
		return "", false
	}
	return userID, true
}
