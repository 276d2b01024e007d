// FILE: internal/controller/oauth_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"

	"jobportal-be/internal/config"
	"jobportal-be/internal/dto"
	"jobportal-be/internal/pkg/serverutils"
	"jobportal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Config(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	CallbackExchange(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
}

func NewOAuthController(service service.IOAuthService, cfg config.AppConfig) IOAuthController {
	return &oauthController{service: service, clientURL: cfg.ClientURL}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/oauth")
	h.Get("/:provider/config", c.Config)
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
	h.Post("/:provider/callback", c.CallbackExchange)
}

// Config exposes the federation flow the server is configured for. Clients
// read it once at startup instead of deciding per screen.
func (c *oauthController) Config(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	res, err := c.service.GetLoginConfig(provider)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", res))
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	log.Printf("[OAuth] Login initiated for provider: %s", provider)

	res, err := c.service.GetLoginConfig(provider)
	if err != nil {
		log.Printf("[OAuth] ERROR - Failed to get login URL: %v", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	// Redirect user to the provider's consent screen
	return ctx.Redirect(res.AuthURL)
}

// Callback handles the redirect flow: the provider sends the browser here
// with a code, we exchange it and bounce the user back to the client with
// a token in the URL.
func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")

	log.Printf("[OAuth] Callback received for provider: %s", provider)

	if code == "" {
		log.Printf("[OAuth] ERROR - Missing authorization code")
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.service.HandleCallback(ctx.Context(), provider, code)
	if err != nil {
		if errors.Is(err, service.ErrAccountConflict) {
			redirectURL := fmt.Sprintf("%s/auth?error=account_conflict", c.clientURL)
			return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
		}
		log.Printf("[OAuth] ERROR - HandleCallback failed: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	log.Printf("[OAuth] User %s authenticated via %s", res.User.Email, provider)

	redirectURL := fmt.Sprintf("%s/app?token=%s", c.clientURL, res.AccessToken)
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

// CallbackExchange handles the popup flow: the client posts the code it
// captured and receives the session payload as JSON.
func (c *oauthController) CallbackExchange(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	var req dto.OAuthCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.Code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.service.HandleCallback(ctx.Context(), provider, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrAccountConflict) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}
