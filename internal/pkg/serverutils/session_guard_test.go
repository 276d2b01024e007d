package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, userID string) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return signed
}

func guardedApp(registry *memory.SessionRegistry) *fiber.App {
	app := fiber.New()
	app.Get("/protected", NewSessionGuard(registry), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSessionGuardAllowsSettledSignedIn(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)
	userID := uuid.New().String()

	sync := session.NewSynchronizer(nil, 0)
	sync.Notify(&session.Identity{ID: uuid.MustParse(userID), Email: "a@b.com", DisplayName: "A"})
	registry.Save(userID, sync)

	resp := doRequest(t, guardedApp(registry), signTestToken(t, userID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionGuardHoldsWhileLoading(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)
	userID := uuid.New().String()

	// Projection exists but has not settled.
	registry.Save(userID, session.NewSynchronizer(nil, 0))

	resp := doRequest(t, guardedApp(registry), signTestToken(t, userID))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestSessionGuardDeniesSettledSignedOut(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)
	userID := uuid.New().String()

	sync := session.NewSynchronizer(nil, 0)
	sync.Notify(nil)
	registry.Save(userID, sync)

	resp := doRequest(t, guardedApp(registry), signTestToken(t, userID))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuardDeniesValidTokenWithoutProjection(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)

	// The token verifies fine, but the principal signed out and the
	// projection is gone. The guard must not trust the token alone.
	resp := doRequest(t, guardedApp(registry), signTestToken(t, uuid.New().String()))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuardDeniesMissingToken(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)

	resp := doRequest(t, guardedApp(registry), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuardDeniesGarbageToken(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)

	resp := doRequest(t, guardedApp(registry), "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuardDenyAfterRemove(t *testing.T) {
	registry := memory.NewSessionRegistry(time.Minute)
	userID := uuid.New().String()

	sync := session.NewSynchronizer(nil, 0)
	sync.Notify(&session.Identity{ID: uuid.MustParse(userID), Email: "a@b.com", DisplayName: "A"})
	registry.Save(userID, sync)

	app := guardedApp(registry)
	token := signTestToken(t, userID)

	resp := doRequest(t, app, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Sign-out removes the projection; the same token is now useless.
	registry.Remove(userID)

	resp = doRequest(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
