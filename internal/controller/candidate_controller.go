// FILE: internal/controller/candidate_controller.go
package controller

import (
	"jobportal-be/internal/pkg/serverutils"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICandidateController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type candidateController struct {
	service  service.IProfileService
	registry *memory.SessionRegistry
}

func NewCandidateController(service service.IProfileService, registry *memory.SessionRegistry) ICandidateController {
	return &candidateController{service: service, registry: registry}
}

func (c *candidateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/candidates")
	h.Use(serverutils.NewSessionGuard(c.registry))
	h.Get("/", c.List)
	h.Delete("/:id", c.Delete)
}

// List returns the sanitized candidate directory, optionally filtered by
// a case-insensitive substring match over name, email and id.
func (c *candidateController) List(ctx *fiber.Ctx) error {
	search := ctx.Query("search")

	res, err := c.service.ListCandidates(ctx.Context(), search)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Candidates", res))
}

func (c *candidateController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Candidate ID is required"))
	}

	if err := c.service.DeleteCandidate(ctx.Context(), id); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Candidate removed", nil))
}
