package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware catches whatever escapes the controllers and
// renders the standard response envelope. Panics become 500s instead of
// dropped connections.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"code":    "INTERNAL_ERROR",
					"message": "Something went wrong",
				})
			}
		}()

		err = ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"code":    "HTTP_ERROR",
				"message": fiberErr.Message,
			})
		}

		log.Printf("unhandled error: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    "INTERNAL_ERROR",
			"message": "Something went wrong",
		})
	}
}
