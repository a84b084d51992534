package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	// ActorHeader carries the caller id set by the upstream gateway.
	ActorHeader = "X-Actor-ID"
	ActorIDKey  = "actorID" // Key for storing the actor id in fiber.Ctx locals
)

// RequireActor rejects requests without a positive integer X-Actor-ID header.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(ActorHeader)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "X-Actor-ID header is missing")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "X-Actor-ID header is invalid")
		}
		c.Locals(ActorIDKey, id)
		return c.Next()
	}
}

// ActorID returns the id stored by RequireActor, or 0.
func ActorID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(ActorIDKey).(int64)
	return id
}
