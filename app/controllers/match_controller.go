package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/models"
	"matchcore/app/services"
)

// MatchController handles likes, matches and discovery
type MatchController struct {
	engine *services.MatchEngine
	filter *services.CandidateFilter
	log    *zap.Logger
}

// NewMatchController creates a new match controller instance
func NewMatchController(engine *services.MatchEngine, filter *services.CandidateFilter, log *zap.Logger) *MatchController {
	return &MatchController{engine: engine, filter: filter, log: log.Named("match_controller")}
}

// Like records a like toward :userId
func (c *MatchController) Like(ctx *fiber.Ctx) error {
	return c.like(ctx, models.LikeKindLike)
}

// Superlike records a super-like toward :userId
func (c *MatchController) Superlike(ctx *fiber.Ctx) error {
	return c.like(ctx, models.LikeKindSuperlike)
}

func (c *MatchController) like(ctx *fiber.Ctx, kind models.LikeKind) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}

	record := c.engine.Like
	if kind == models.LikeKindSuperlike {
		record = c.engine.Superlike
	}
	res, err := record(ctx.UserContext(), userID, ctx.Params("userId"))
	if err != nil {
		return respondError(ctx, c.log, err)
	}

	message := "Like recorded"
	if res.IsNewMatch {
		message = "It's a match!"
	}
	return ctx.JSON(fiber.Map{
		"status":       "success",
		"message":      message,
		"is_new_match": res.IsNewMatch,
		"record":       res.Record,
	})
}

// Dislike rejects the pair with :userId
func (c *MatchController) Dislike(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	if err := c.engine.Dislike(ctx.UserContext(), userID, ctx.Params("userId")); err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":  "success",
		"message": "Dislike recorded",
	})
}

// GetRecord returns the record shared with :userId
func (c *MatchController) GetRecord(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	rec, found, err := c.engine.GetRecord(ctx.UserContext(), userID, ctx.Params("userId"))
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	if !found {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "No match record for this pair",
		})
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"record": rec,
	})
}

// ListMatches returns the caller's matches
func (c *MatchController) ListMatches(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	matches, err := c.engine.ListMatches(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":  "success",
		"count":   len(matches),
		"matches": matches,
	})
}

// Stats returns the caller's record counts by status
func (c *MatchController) Stats(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	stats, err := c.engine.Stats(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"stats":  stats,
	})
}

// IncomingLikes returns likes waiting for the caller's answer
func (c *MatchController) IncomingLikes(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	likes, err := c.engine.IncomingLikes(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	if likes == nil {
		likes = []models.IncomingLike{}
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"count":  len(likes),
		"likes":  likes,
	})
}

// Discover returns one ranked page of candidates (?page=&limit=)
func (c *MatchController) Discover(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	page, err := c.filter.Discover(ctx.UserContext(), userID,
		ctx.QueryInt("page", 1), ctx.QueryInt("limit", services.DefaultPageLimit))
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":     "success",
		"candidates": page.Candidates,
		"page":       page.Page,
		"limit":      page.Limit,
		"has_more":   page.HasMore,
	})
}

// Score returns the caller's compatibility with :userId
func (c *MatchController) Score(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	score, err := c.filter.Score(ctx.UserContext(), userID, ctx.Params("userId"))
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":    "success",
		"score":     score.Total,
		"breakdown": score,
	})
}
