package handlers

import (
	"github.com/gofiber/fiber/v2"

	"finwell-go-be/health"
)

// GetHealthScore computes the composite score and its five metrics from a
// fresh snapshot. Synchronous and pure; nothing is persisted.
func GetHealthScore(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}

	snap := agg.Load(userID)
	report := health.Compute(snap, tunables)

	return c.JSON(report)
}
