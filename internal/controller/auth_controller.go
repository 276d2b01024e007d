// FILE: internal/controller/auth_controller.go
package controller

import (
	"errors"

	"jobportal-be/internal/dto"
	"jobportal-be/internal/pkg/serverutils"
	"jobportal-be/internal/pkg/validation"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type authController struct {
	service  service.IAuthService
	registry *memory.SessionRegistry
}

func NewAuthController(service service.IAuthService, registry *memory.SessionRegistry) IAuthController {
	return &authController{service: service, registry: registry}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
	h.Post("/refresh", c.Refresh)
	h.Get("/state", c.State)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if fieldErrs := validation.Validate(req); len(fieldErrs) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrDuplicateAccount) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(serverutils.ErrorResponse(status, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if fieldErrs := validation.Validate(req); len(fieldErrs) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	ipAddress := ctx.IP()
	userAgent := ctx.Get("User-Agent")

	res, err := c.service.Login(ctx.Context(), &req, ipAddress, userAgent)
	if err != nil {
		status := fiber.StatusUnauthorized
		if errors.Is(err, service.ErrAccountBlocked) {
			status = fiber.StatusForbidden
		}
		return ctx.Status(status).JSON(serverutils.ErrorResponse(status, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		// Stateless logout still succeeds from the client's point of view.
		return ctx.JSON(serverutils.SuccessResponse("Logged out successfully", nil))
	}

	userID, err := serverutils.BearerUserID(ctx)
	if err == nil {
		// Revocation failures are logged by the service; the client
		// always sees a successful logout.
		_ = c.service.Logout(ctx.Context(), userID, req.RefreshToken)
	}

	return ctx.JSON(serverutils.SuccessResponse("Logged out successfully", nil))
}

// State reports the caller's session projection. It answers 200 for
// every caller: an anonymous or unknown principal is a settled
// signed-out state, not an authorization failure, because the auth
// view itself polls this endpoint.
func (c *authController) State(ctx *fiber.Ctx) error {
	signedOut := dto.SessionStateResponse{SignedIn: false, Loading: false}

	userID, err := serverutils.BearerUserID(ctx)
	if err != nil {
		return ctx.JSON(serverutils.SuccessResponse("Session state", signedOut))
	}

	sync, ok := c.registry.Get(userID)
	if !ok {
		return ctx.JSON(serverutils.SuccessResponse("Session state", signedOut))
	}

	snap := sync.Snapshot()
	res := dto.SessionStateResponse{
		SignedIn: snap.Identity != nil,
		Loading:  snap.Loading,
	}
	if snap.Identity != nil {
		res.User = &dto.UserDTO{
			Id:        snap.Identity.ID,
			Email:     snap.Identity.Email,
			FullName:  snap.Identity.DisplayName,
			AvatarURL: snap.Identity.AvatarRef,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Session state", res))
}

func (c *authController) Refresh(ctx *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.Refresh(ctx.Context(), req.RefreshToken)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Token refreshed", res))
}
