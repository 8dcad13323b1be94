package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"matchcore/app/apperr"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:           fiber.StatusNotFound,
		apperr.KindForbidden:          fiber.StatusForbidden,
		apperr.KindPreconditionFailed: fiber.StatusPreconditionFailed,
		apperr.KindInvalidState:       fiber.StatusConflict,
		apperr.KindConflict:           fiber.StatusConflict,
		apperr.KindInvalid:            fiber.StatusBadRequest,
		apperr.KindUnknown:            fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), "kind %q", kind)
	}
}
