package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type HealthController struct {
	store string
	redis *redis.Client
}

func NewHealthController(store string, rdb *redis.Client) *HealthController {
	return &HealthController{store: store, redis: rdb}
}

// HealthResponse reports the process and its optional dependencies.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"mongo"`
	Redis  string `json:"redis" example:"disabled"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (ctl *HealthController) Health(c *fiber.Ctx) error {
	res := HealthResponse{Status: "ok", Store: ctl.store, Redis: "disabled"}
	if ctl.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ctl.redis.Ping(ctx).Err(); err != nil {
			res.Status, res.Redis = "degraded", "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(res)
		}
		res.Redis = "up"
	}
	return c.JSON(res)
}
