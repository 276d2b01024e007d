// FILE: internal/controller/application_controller.go
package controller

import (
	"errors"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/pkg/serverutils"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IApplicationController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Dashboard(ctx *fiber.Ctx) error
}

type applicationController struct {
	service  service.IApplicationService
	registry *memory.SessionRegistry
}

func NewApplicationController(service service.IApplicationService, registry *memory.SessionRegistry) IApplicationController {
	return &applicationController{service: service, registry: registry}
}

func (c *applicationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/applications")
	h.Use(serverutils.NewSessionGuard(c.registry))
	h.Post("/", c.Submit)

	d := r.Group("/dashboard")
	d.Use(serverutils.NewSessionGuard(c.registry))
	d.Get("/", c.Dashboard)
}

func (c *applicationController) Submit(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitApplicationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.service.Submit(ctx.Context(), userId, &req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": "Validation failed",
				"errors":  vErr.Fields,
			})
		}
		// A failed feed write leaves the stored record in place; a client
		// retry creates a second record.
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Application submitted", res))
}

func (c *applicationController) Dashboard(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.Dashboard(ctx.Context(), userId)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "User not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard", res))
}
