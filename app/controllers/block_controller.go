package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/services"
)

// BlockController handles the caller's block list
type BlockController struct {
	blocks *services.BlockService
	log    *zap.Logger
}

// NewBlockController creates a new block controller instance
func NewBlockController(blocks *services.BlockService, log *zap.Logger) *BlockController {
	return &BlockController{blocks: blocks, log: log.Named("block_controller")}
}

// BlockRequest represents an optional block body
type BlockRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Block blocks :userId
func (c *BlockController) Block(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}

	var req BlockRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return badRequest(ctx, "Invalid request body")
		}
	}

	target := ctx.Params("userId")
	if err := c.blocks.Block(ctx.UserContext(), userID, target, req.Reason, req.Description); err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":     "success",
		"message":    "User blocked",
		"blocked_id": target,
	})
}

// Unblock removes the caller's block on :userId
func (c *BlockController) Unblock(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	if err := c.blocks.Unblock(ctx.UserContext(), userID, ctx.Params("userId")); err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":  "success",
		"message": "User unblocked",
	})
}

// List returns the caller's blocks
func (c *BlockController) List(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	blocks, err := c.blocks.List(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"count":  len(blocks),
		"blocks": blocks,
	})
}

// Check reports whether the caller and :userId block each other in either direction
func (c *BlockController) Check(ctx *fiber.Ctx) error {
	userID, ok := currentUser(ctx)
	if !ok {
		return nil
	}
	blocked, err := c.blocks.Check(ctx.UserContext(), userID, ctx.Params("userId"))
	if err != nil {
		return respondError(ctx, c.log, err)
	}
	return ctx.JSON(fiber.Map{
		"status":     "success",
		"is_blocked": blocked,
	})
}
