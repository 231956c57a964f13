package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"finwell-go-be/config"
	"finwell-go-be/generation"
	"finwell-go-be/snapshot"
)

// Package-level collaborators, wired once at startup.
var (
	db       *gorm.DB
	agg      *snapshot.Aggregator
	tunables config.Tunables
	svc      *generation.Service
	store    *generation.Store
	newID    generation.IDFunc
)

// Setup injects the engine's collaborators into the handler package.
func Setup(database *gorm.DB, aggregator *snapshot.Aggregator, cfg config.Tunables,
	service *generation.Service, artifactStore *generation.Store, idFunc generation.IDFunc) {
	db = database
	agg = aggregator
	tunables = cfg
	svc = service
	store = artifactStore
	newID = idFunc
}

// userFrom pulls the user identity off the request.
// TODO: replace with auth middleware once the auth service lands.
func userFrom(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Get("X-User-ID"))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"error": "User ID required in X-User-ID header"})
}
