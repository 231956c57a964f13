package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"finwell-go-be/generation"
	"finwell-go-be/models"
)

// GetInsights returns the user's current insight batch, generating a new
// one through the fallback chain when the staleness schedule says so.
func GetInsights(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}

	snap := agg.Load(userID)
	art := svc.Artifacts(c.Context(), snap)
	insights := visibleInsights(art, time.Now())

	return c.JSON(fiber.Map{
		"count":    len(insights),
		"insights": insights,
	})
}

// GetSmartWins returns the current smart-win batch through the same
// staleness-gated chain.
func GetSmartWins(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}

	snap := agg.Load(userID)
	art := svc.Artifacts(c.Context(), snap)

	wins := art.SmartWins
	if wins == nil {
		wins = []models.SmartWin{}
	}
	return c.JSON(fiber.Map{
		"count":      len(wins),
		"smart_wins": wins,
	})
}

// DismissInsight soft-deletes one insight. The local state update holds
// even when persistence is down.
func DismissInsight(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}
	insightID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid insight ID"})
	}

	svc.DismissInsight(userID, insightID)
	return c.JSON(fiber.Map{"message": "Insight dismissed"})
}

func visibleInsights(art *generation.Artifacts, now time.Time) []models.Insight {
	out := []models.Insight{}
	for _, in := range art.Insights {
		if in.Dismissed {
			continue
		}
		if in.ExpiresAt != nil && in.ExpiresAt.Before(now) {
			continue
		}
		out = append(out, in)
	}
	return out
}
