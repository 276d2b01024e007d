package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/session"
)

// NewSessionGuard gates protected routes on the live session projection,
// not just the token. A valid JWT whose principal has signed out (no
// projection) is denied immediately.
func NewSessionGuard(registry *memory.SessionRegistry) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := BearerUserID(ctx)
		if err != nil {
			return denySignedOut(ctx)
		}

		sync, found := registry.Get(userID)
		if !found {
			return denySignedOut(ctx)
		}

		switch session.Decide(sync.Snapshot()) {
		case session.Wait:
			ctx.Set("Retry-After", "1")
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"code":    "SESSION_SETTLING",
				"message": "Session state is still resolving, retry shortly",
			})
		case session.Deny:
			return denySignedOut(ctx)
		}

		ctx.Locals("user_id", userID)
		return ctx.Next()
	}
}

func denySignedOut(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success":  false,
		"code":     "NOT_SIGNED_IN",
		"message":  "Sign in to access this resource",
		"redirect": "/auth",
	})
}
