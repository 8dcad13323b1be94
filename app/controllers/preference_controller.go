package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/models"
	"matchcore/app/services"
)

// PreferenceController handles discovery settings
type PreferenceController struct {
	preferences *services.PreferenceService
	log         *zap.Logger
}

// NewPreferenceController creates a new preference controller instance
func NewPreferenceController(preferences *services.PreferenceService, log *zap.Logger) *PreferenceController {
	return &PreferenceController{preferences: preferences, log: log.Named("preference_controller")}
}

// LocationRequest represents a location update
type LocationRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

// ActiveRequest represents a visibility toggle
type ActiveRequest struct {
	Active *bool `json:"active"`
}

// Get returns the caller's preferences, creating defaults on first use
func (c *PreferenceController) Get(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	prefs, err := c.preferences.Get(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":      "success",
		"preferences": prefs,
	})
}

// Update applies a partial preferences update
func (c *PreferenceController) Update(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}

	var patch models.PreferencesPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	prefs, err := c.preferences.Update(ctx.UserContext(), userID, patch)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":      "success",
		"message":     "Preferences updated",
		"preferences": prefs,
	})
}

// UpdateLocation stores the caller's position
func (c *PreferenceController) UpdateLocation(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}

	var req LocationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	// Validate required fields
	if req.Lon == nil || req.Lat == nil {
		return badRequest(ctx, "Missing required fields: lon, lat")
	}

	loc := models.Point{Lon: *req.Lon, Lat: *req.Lat}
	if err := c.preferences.UpdateLocation(ctx.UserContext(), userID, loc); err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":   "success",
		"message":  "Location updated",
		"location": loc,
	})
}

// SetActive toggles discovery visibility
func (c *PreferenceController) SetActive(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}

	var req ActiveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if req.Active == nil {
		return badRequest(ctx, "Missing required field: active")
	}

	if err := c.preferences.SetActive(ctx.UserContext(), userID, *req.Active); err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"active": *req.Active,
	})
}
