package routes

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/controllers"
	"matchcore/config"
)

// HealthCheck probes one backing service
type HealthCheck func(ctx context.Context) error

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Auth        fiber.Handler
	Matches     *controllers.MatchController
	Preferences *controllers.PreferenceController
	Blocks      *controllers.BlockController
	Health      map[string]HealthCheck
}

// NewApp builds the fiber app. Route params outlive the request as store keys
// so the app runs Immutable.
func NewApp(log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}
	return fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		Immutable:     true,
		AppName:       config.AppName,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("unhandled error", zap.String("path", ctx.Path()), zap.Error(err))
			}
			return ctx.Status(code).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		},
	})
}

func SetupRoutes(app *fiber.App, h Handlers) {
	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(h.Health))
		for name := range h.Health {
			names = append(names, name)
		}
		sort.Strings(names)

		status := "ok"
		services := map[string]string{}
		for _, name := range names {
			if err := h.Health[name](ctx); err != nil {
				services[name] = "error: " + err.Error()
				status = "degraded"
				continue
			}
			services[name] = "ok"
		}

		return c.JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  services,
		})
	})

	// API version endpoint
	app.Get("/api/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":   config.AppVersion,
			"name":      config.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api", h.Auth)

	matches := api.Group("/matches")
	matches.Get("", h.Matches.ListMatches)
	matches.Get("/stats", h.Matches.Stats)
	matches.Get("/likes", h.Matches.IncomingLikes)
	matches.Get("/discover", h.Matches.Discover)
	matches.Get("/record/:userId", h.Matches.GetRecord)
	matches.Get("/score/:userId", h.Matches.Score)
	matches.Post("/like/:userId", h.Matches.Like)
	matches.Post("/superlike/:userId", h.Matches.Superlike)
	matches.Post("/dislike/:userId", h.Matches.Dislike)

	matches.Get("/preferences", h.Preferences.Get)
	matches.Patch("/preferences", h.Preferences.Update)
	matches.Post("/location", h.Preferences.UpdateLocation)
	matches.Patch("/active", h.Preferences.SetActive)

	blocks := api.Group("/blocks")
	blocks.Get("", h.Blocks.List)
	blocks.Get("/check/:userId", h.Blocks.Check)
	blocks.Post("/:userId", h.Blocks.Block)
	blocks.Delete("/:userId", h.Blocks.Unblock)
}
