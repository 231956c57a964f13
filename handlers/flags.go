package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"finwell-go-be/models"
	"finwell-go-be/rules"
)

// GetFlags evaluates the rule catalog against a fresh snapshot, persists
// the lifecycle changes when storage is up, and returns the active flags.
func GetFlags(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}

	snap := agg.Load(userID)

	catalog := rules.DefaultCatalog()
	var existing []models.HealthFlag
	if store.Available() {
		if loaded, err := store.Rules(catalog); err == nil {
			catalog = loaded
		} else {
			log.Printf("flags: loading catalog: %v", err)
		}
		if loaded, err := store.Flags(userID); err == nil {
			existing = loaded
		} else {
			log.Printf("flags: loading existing flags: %v", err)
		}
	} else if cached, ok := svc.Session().Flags(userID); ok {
		// Flag IDs stay stable across calls while storage is down.
		existing = cached
	}

	evaluated := rules.Evaluate(snap, catalog, existing, tunables, time.Now(), newID)
	if store.Available() {
		if err := store.SaveFlags(evaluated); err != nil {
			// Evaluation still stands; flags just aren't durable this call.
			log.Printf("flags: persisting for %s: %v", userID, err)
		}
	}
	svc.Session().PutFlags(userID, evaluated)

	active := []models.HealthFlag{}
	for _, f := range rules.Active(evaluated) {
		if svc.Session().RuleResolved(userID, f.RuleID) {
			continue
		}
		active = append(active, f)
	}

	return c.JSON(fiber.Map{
		"count": len(active),
		"flags": active,
	})
}

// ResolveFlag transitions one flag to resolved, locally first and in
// storage best-effort.
func ResolveFlag(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}
	flagID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid flag ID"})
	}

	svc.ResolveFlag(userID, flagID)
	return c.JSON(fiber.Map{"message": "Flag resolved"})
}
